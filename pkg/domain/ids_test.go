package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "modelkit/pkg/domain-errors"
)

// TestParseIdentifier_Invariants validates the parsing invariant:
// identifiers must be valid, non-empty, non-nil UUIDs.
func TestParseIdentifier_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseIdentifier("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseIdentifier("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseIdentifier(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseIdentifier(valid.String())
		require.NoError(t, err)
		assert.Equal(t, Identifier(valid), id)
	})
}

func TestParseAllIDs_SharedInvariant(t *testing.T) {
	valid := uuid.New().String()

	t.Run("correlation id", func(t *testing.T) {
		id, err := ParseCorrelationID(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, id.String())

		_, err = ParseCorrelationID("nope")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("causation id", func(t *testing.T) {
		id, err := ParseCausationID(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, id.String())

		_, err = ParseCausationID("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("event id", func(t *testing.T) {
		id, err := ParseEventID(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, id.String())

		_, err = ParseEventID(uuid.Nil.String())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("user id", func(t *testing.T) {
		id, err := ParseUserID(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, id.String())
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	identifier := Identifier(uuid.New())
	correlation := CorrelationID(uuid.New())

	// These would fail to compile if the types were interchangeable:
	// var _ Identifier = correlation   // compile error
	// var _ CorrelationID = identifier // compile error

	assert.NotEqual(t, uuid.UUID(identifier), uuid.UUID(correlation))
}

func TestNewIdentifiersAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewIdentifier()
		require.False(t, id.IsNil())
		require.False(t, seen[id.String()], "identifier collision")
		seen[id.String()] = true
	}
}

func TestIsNilZeroValues(t *testing.T) {
	assert.True(t, Identifier{}.IsNil())
	assert.True(t, CorrelationID{}.IsNil())
	assert.True(t, CausationID{}.IsNil())
	assert.True(t, EventID{}.IsNil())
	assert.False(t, NewCorrelationID().IsNil())
}

package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeNotFound, "order missing")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("find order: %w", New(CodeNotFound, "order missing"))
		assert.True(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches inner code through Wrap chain", func(t *testing.T) {
		inner := New(CodeNotFound, "row missing")
		outer := Wrap(CodeOperationFailed, "load aggregate", inner)
		assert.True(t, HasCode(outer, CodeOperationFailed))
		assert.True(t, HasCode(outer, CodeNotFound))
	})

	t.Run("plain error carries no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeNotFound))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeConflict, CodeOf(New(CodeConflict, "duplicate id")))
	assert.Equal(t, Code(""), CodeOf(errors.New("boom")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestSchemaDecodeCarriesEveryIssue(t *testing.T) {
	issues := []FieldIssue{
		{Path: "Email", Message: "must be a valid email"},
		{Path: "Age", Message: "must be 18 or greater"},
	}
	err := NewSchemaDecode(issues)

	require.True(t, HasCode(err, CodeSchemaDecode))
	assert.Equal(t, issues, IssuesOf(err))
	assert.Contains(t, err.Error(), "Email: must be a valid email")
	assert.Contains(t, err.Error(), "Age: must be 18 or greater")
}

func TestInvariantViolationDefaultAndCustomCode(t *testing.T) {
	def := NewInvariantViolation("total must be positive")
	assert.Equal(t, CodeInvariantViolation, def.Code)

	custom := NewInvariantViolation("order already shipped", Code("ORDER_SHIPPED"))
	assert.Equal(t, Code("ORDER_SHIPPED"), custom.Code)
	assert.True(t, HasCode(custom, Code("ORDER_SHIPPED")))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(NewSchemaDecode(nil)))
	assert.True(t, IsValidation(NewInvariantViolation("nope")))
	assert.True(t, IsValidation(New(CodeInvalidInput, "bad id")))
	assert.False(t, IsValidation(New(CodeOperationFailed, "db down")))
	assert.False(t, IsValidation(New(CodeNotFound, "missing")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeOperationFailed, "publish event", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "publish event")
	assert.Contains(t, err.Error(), "connection reset")
}

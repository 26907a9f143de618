package events_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "modelkit/pkg/domain"
	dErrors "modelkit/pkg/domain-errors"
	"modelkit/pkg/event"
	"modelkit/pkg/events"
)

type stubAggregate struct {
	id  id.Identifier
	tag string
}

func (s stubAggregate) Identity() id.Identifier { return s.id }
func (s stubAggregate) GetTag() string          { return s.tag }

func TestCodec_RoundTrip(t *testing.T) {
	causation := id.NewCausationID()
	userID := id.NewUserID()
	evt := event.New(event.NewParams{
		Name:        "OrderConfirmed",
		Payload:     map[string]any{"total": 42.5},
		CausationID: &causation,
		UserID:      &userID,
		Aggregate:   stubAggregate{id: id.NewIdentifier(), tag: "Order"},
	})

	raw, err := events.Encode(evt)
	require.NoError(t, err)

	decoded, err := events.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, evt.ID, decoded.ID)
	assert.Equal(t, evt.Name, decoded.Name)
	assert.Equal(t, evt.Metadata.CorrelationID, decoded.Metadata.CorrelationID)
	assert.True(t, evt.Metadata.Timestamp.Equal(decoded.Metadata.Timestamp))
	require.NotNil(t, decoded.Metadata.CausationID)
	assert.Equal(t, causation, *decoded.Metadata.CausationID)
	require.NotNil(t, decoded.Metadata.UserID)
	assert.Equal(t, userID, *decoded.Metadata.UserID)
	require.NotNil(t, decoded.AggregateID)
	assert.Equal(t, *evt.AggregateID, *decoded.AggregateID)
	assert.Equal(t, "Order", decoded.AggregateType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(decoded.Payload.(json.RawMessage), &payload))
	assert.Equal(t, 42.5, payload["total"])
}

func TestCodec_MinimalEvent(t *testing.T) {
	evt := event.New(event.NewParams{Name: "Pinged"})

	raw, err := events.Encode(evt)
	require.NoError(t, err)

	decoded, err := events.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "Pinged", decoded.Name)
	assert.Nil(t, decoded.Payload)
	assert.Nil(t, decoded.AggregateID)
	assert.Nil(t, decoded.Metadata.CausationID)
	assert.Nil(t, decoded.Metadata.UserID)
	assert.Empty(t, decoded.AggregateType)
}

func TestCodec_IdentifiersAreEncodedAsUUIDStrings(t *testing.T) {
	evt := event.New(event.NewParams{Name: "Pinged"})

	raw, err := events.Encode(evt)
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, evt.ID.String(), env["id"])
	assert.Equal(t, evt.Metadata.CorrelationID.String(), env["correlationId"])
}

func TestCodec_DecodeRejectsGarbage(t *testing.T) {
	_, err := events.Decode([]byte("not json"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = events.Decode([]byte(`{"id":"nope","name":"X","timestamp":"2026-01-01T00:00:00Z","correlationId":"nope"}`))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

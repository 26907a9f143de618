package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "modelkit/pkg/domain"
)

type fakeAggregate struct {
	id  id.Identifier
	tag string
}

func (f fakeAggregate) Identity() id.Identifier { return f.id }
func (f fakeAggregate) GetTag() string          { return f.tag }

func TestNew_MintsCorrelationIDWhenAbsent(t *testing.T) {
	evt := New(NewParams{Name: "OrderConfirmed"})

	assert.False(t, evt.Metadata.CorrelationID.IsNil())
	assert.False(t, evt.ID.IsNil())
}

func TestNew_PreservesSuppliedCorrelationID(t *testing.T) {
	correlation := id.NewCorrelationID()
	evt := New(NewParams{Name: "OrderConfirmed", CorrelationID: correlation})

	assert.Equal(t, correlation, evt.Metadata.CorrelationID)
}

func TestNew_TimestampIsEmissionTime(t *testing.T) {
	before := time.Now().UTC()
	evt := New(NewParams{Name: "OrderConfirmed"})
	after := time.Now().UTC()

	assert.False(t, evt.Metadata.Timestamp.Before(before))
	assert.False(t, evt.Metadata.Timestamp.After(after))
}

func TestNew_DerivesAggregateOrigin(t *testing.T) {
	aggID := id.NewIdentifier()
	evt := New(NewParams{
		Name:      "OrderItemAdded",
		Payload:   map[string]any{"sku": "A-1"},
		Aggregate: fakeAggregate{id: aggID, tag: "Order"},
	})

	require.NotNil(t, evt.AggregateID)
	assert.Equal(t, aggID, *evt.AggregateID)
	assert.Equal(t, "Order", evt.AggregateType)
}

func TestNew_NoAggregateLeavesOriginAbsent(t *testing.T) {
	evt := New(NewParams{Name: "UserSignedUp"})

	assert.Nil(t, evt.AggregateID)
	assert.Empty(t, evt.AggregateType)
}

func TestNew_CarriesCausationAndUser(t *testing.T) {
	causation := id.NewCausationID()
	user, err := id.ParseUserID(id.NewIdentifier().String())
	require.NoError(t, err)

	evt := New(NewParams{
		Name:        "OrderConfirmed",
		CausationID: &causation,
		UserID:      &user,
	})

	require.NotNil(t, evt.Metadata.CausationID)
	assert.Equal(t, causation, *evt.Metadata.CausationID)
	require.NotNil(t, evt.Metadata.UserID)
	assert.Equal(t, user, *evt.Metadata.UserID)
}

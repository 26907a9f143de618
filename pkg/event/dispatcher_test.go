package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversInOrder(t *testing.T) {
	d := NewDispatcher(nil)

	var seen []string
	d.Register("OrderItemAdded", func(_ context.Context, evt DomainEvent) error {
		seen = append(seen, evt.Payload.(string))
		return nil
	})

	events := []DomainEvent{
		New(NewParams{Name: "OrderItemAdded", Payload: "first"}),
		New(NewParams{Name: "OrderItemAdded", Payload: "second"}),
	}

	require.NoError(t, d.Dispatch(context.Background(), events))
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestDispatcher_UnhandledEventIsNotAnError(t *testing.T) {
	d := NewDispatcher(nil)
	err := d.Dispatch(context.Background(), []DomainEvent{
		New(NewParams{Name: "NobodyListens"}),
	})
	assert.NoError(t, err)
}

func TestDispatcher_HandlerFailureDoesNotStopDelivery(t *testing.T) {
	d := NewDispatcher(nil)

	boom := errors.New("projection down")
	var delivered int
	d.Register("OrderConfirmed", func(context.Context, DomainEvent) error {
		return boom
	})
	d.Register("OrderShipped", func(context.Context, DomainEvent) error {
		delivered++
		return nil
	})

	err := d.Dispatch(context.Background(), []DomainEvent{
		New(NewParams{Name: "OrderConfirmed"}),
		New(NewParams{Name: "OrderShipped"}),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, delivered)
}

func TestDispatcher_RegisterAll(t *testing.T) {
	d := NewDispatcher(nil)

	var called string
	d.RegisterAll(map[string]Handler{
		"OrderConfirmed": func(_ context.Context, evt DomainEvent) error {
			called = evt.Name
			return nil
		},
	})

	require.NoError(t, d.Dispatch(context.Background(), []DomainEvent{
		New(NewParams{Name: "OrderConfirmed"}),
	}))
	assert.Equal(t, "OrderConfirmed", called)
}

package model_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelkit/pkg/model"
	"modelkit/pkg/testutil"
)

// Full aggregate lifecycle: construct, mutate through commands, persist the
// snapshot, rehydrate, continue mutating.
func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	trait := orderTrait()
	add := model.AsAggregateCommand(addItem)
	confirm := model.AsAggregateCommand(confirmOrder)

	testutil.Given(t, "a freshly created draft order", func(t *testing.T) {
		order, err := trait.New(ctx, orderProps{Status: "draft"})
		require.NoError(t, err)

		testutil.When(t, "an item is added and the order is marked pending", func(t *testing.T) {
			withItem, err := add.Execute(ctx, order, addItemInput{SKU: "SKU-9", Price: 4, Quantity: 2})
			require.NoError(t, err)

			props := withItem.Unpack()
			props.Status = "pending"

			// A durable store would persist the snapshot here; pending
			// events are drained by the publisher, not persisted.
			rehydrated, err := trait.Parse(ctx, model.Snapshot{
				ID:        withItem.ID,
				Props:     props,
				CreatedAt: withItem.CreatedAt,
				UpdatedAt: withItem.UpdatedAt,
			})
			require.NoError(t, err)

			testutil.Then(t, "the rehydrated order can be confirmed", func(t *testing.T) {
				confirmed, err := confirm.Execute(ctx, rehydrated, struct{}{})
				require.NoError(t, err)

				assert.Equal(t, "confirmed", confirmed.Unpack().Status)
				assert.Equal(t, order.ID, confirmed.ID)
				assert.Equal(t, order.CreatedAt, confirmed.CreatedAt)
				assert.Equal(t, 8.0, confirmed.Unpack().Total)

				events := confirmed.DomainEvents()
				require.Len(t, events, 1, "events raised before persistence are gone; only the new one remains")
				assert.Equal(t, "OrderConfirmed", events[0].Name)
			})
		})
	})
}

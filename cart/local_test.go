package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupLocalStore creates a miniredis-backed LocalStore for one session.
func setupLocalStore(t *testing.T, session string) (*LocalStore, *redis.Client, *Notifier) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	notifier := NewNotifier()
	return NewLocalStore(client, notifier, session), client, notifier
}

func hammer(qty int) AddInput {
	return AddInput{
		ProductID:   1,
		ProductName: "Martillo carpintero",
		UnitPrice:   10000,
		Quantity:    qty,
	}
}

func TestLocalStore_AddAndList(t *testing.T) {
	store, _, _ := setupLocalStore(t, "sess-1")
	ctx := context.Background()

	item, err := store.Add(ctx, hammer(2))
	require.NoError(t, err)
	assert.Equal(t, uint(1), item.ID)
	assert.Equal(t, 2, item.Quantity)

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Martillo carpintero", items[0].ProductName)
}

func TestLocalStore_AddSameProductMergesQuantity(t *testing.T) {
	store, _, _ := setupLocalStore(t, "sess-1")
	ctx := context.Background()

	_, err := store.Add(ctx, hammer(2))
	require.NoError(t, err)
	_, err = store.Add(ctx, hammer(3))
	require.NoError(t, err)

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1, "same product merges instead of duplicating")
	assert.Equal(t, 5, items[0].Quantity)
}

func TestLocalStore_InsertionOrderPreserved(t *testing.T) {
	store, _, _ := setupLocalStore(t, "sess-1")
	ctx := context.Background()

	for i, name := range []string{"Martillo", "Taladro", "Sierra"} {
		_, err := store.Add(ctx, AddInput{
			ProductID:   uint(i + 1),
			ProductName: name,
			UnitPrice:   int64(1000 * (i + 1)),
			Quantity:    1,
		})
		require.NoError(t, err)
	}

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Martillo", items[0].ProductName)
	assert.Equal(t, "Taladro", items[1].ProductName)
	assert.Equal(t, "Sierra", items[2].ProductName)
}

// Scenario: page reload. A fresh store over the same session key sees the
// same lines, same order, same quantities.
func TestLocalStore_PersistsAcrossReinstantiation(t *testing.T) {
	store, client, notifier := setupLocalStore(t, "sess-reload")
	ctx := context.Background()

	_, err := store.Add(ctx, hammer(2))
	require.NoError(t, err)
	_, err = store.Add(ctx, AddInput{ProductID: 2, ProductName: "Taladro", UnitPrice: 49990, Quantity: 1})
	require.NoError(t, err)

	reloaded := NewLocalStore(client, notifier, "sess-reload")
	items, err := reloaded.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint(1), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, uint(2), items[1].ProductID)
}

func TestLocalStore_UpdateQuantity(t *testing.T) {
	store, _, _ := setupLocalStore(t, "sess-1")
	ctx := context.Background()

	item, err := store.Add(ctx, hammer(2))
	require.NoError(t, err)

	require.NoError(t, store.UpdateQuantity(ctx, item.ID, 7))

	items, _ := store.List(ctx)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestLocalStore_UpdateQuantityRejectsBelowOne(t *testing.T) {
	store, _, _ := setupLocalStore(t, "sess-1")
	ctx := context.Background()

	item, err := store.Add(ctx, hammer(2))
	require.NoError(t, err)

	err = store.UpdateQuantity(ctx, item.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// Failed mutation leaves the stored cart untouched.
	items, _ := store.List(ctx)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestLocalStore_RemoveAndClear(t *testing.T) {
	store, _, _ := setupLocalStore(t, "sess-1")
	ctx := context.Background()

	item, _ := store.Add(ctx, hammer(1))
	_, err := store.Add(ctx, AddInput{ProductID: 2, ProductName: "Taladro", UnitPrice: 49990, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, item.ID))
	items, _ := store.List(ctx)
	require.Len(t, items, 1)

	require.NoError(t, store.Clear(ctx))
	items, _ = store.List(ctx)
	assert.Empty(t, items)
}

func TestLocalStore_RemoveUnknownLine(t *testing.T) {
	store, _, _ := setupLocalStore(t, "sess-1")
	err := store.Remove(context.Background(), 99)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestLocalStore_MutationBroadcasts(t *testing.T) {
	store, _, notifier := setupLocalStore(t, "sess-ws")
	ctx := context.Background()

	events, cancel := notifier.Subscribe()
	defer cancel()

	_, err := store.Add(ctx, hammer(1))
	require.NoError(t, err)

	select {
	case session := <-events:
		assert.Equal(t, "sess-ws", session)
	case <-time.After(time.Second):
		t.Fatal("expected a cart changed broadcast")
	}
}

func TestLocalStore_Summary(t *testing.T) {
	store, _, _ := setupLocalStore(t, "sess-1")
	ctx := context.Background()

	_, err := store.Add(ctx, hammer(2))
	require.NoError(t, err)

	sum, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), sum.Subtotal)
	assert.Equal(t, 2, sum.ItemCount)
}

func TestNotifier_CancelStopsDelivery(t *testing.T) {
	n := NewNotifier()
	events, cancel := n.Subscribe()
	cancel()

	n.Broadcast("sess-x")
	select {
	case <-events:
		t.Fatal("cancelled subscriber must not receive events")
	case <-time.After(50 * time.Millisecond):
	}
}

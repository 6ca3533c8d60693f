package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snailmailtreasures/marketplace/pkg/storeapi"
)

func item(id string, price float64) storeapi.Item {
	return storeapi.Item{ID: id, Name: "item " + id, Price: price}
}

func TestAdd_MergesByItemID(t *testing.T) {
	t.Parallel()

	s := NewStore(NewMemStorage())

	s.Add(item("a", 10), 2)
	entries := s.Add(item("a", 10), 3)

	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].Quantity)
}

func TestAdd_CoercesQuantityBelowOne(t *testing.T) {
	t.Parallel()

	s := NewStore(NewMemStorage())

	entries := s.Add(item("a", 10), 0)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Quantity)
}

func TestRemove_AbsentIsNoOp(t *testing.T) {
	t.Parallel()

	s := NewStore(NewMemStorage())
	s.Add(item("a", 10), 1)

	entries := s.Remove("missing")
	assert.Len(t, entries, 1)
}

func TestSetQuantity(t *testing.T) {
	t.Parallel()

	s := NewStore(NewMemStorage())
	s.Add(item("a", 10), 2)

	entries := s.SetQuantity("a", 7)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].Quantity)

	entries = s.SetQuantity("a", 0)
	assert.Empty(t, entries)

	s.Add(item("b", 5), 1)
	entries = s.SetQuantity("b", -3)
	assert.Empty(t, entries)
}

// No sequence of operations may leave an entry with quantity <= 0 at rest.
func TestNoEntryBelowOneAtRest(t *testing.T) {
	t.Parallel()

	s := NewStore(NewMemStorage())

	s.Add(item("a", 10), 2)
	s.Add(item("b", 3), -5)
	s.SetQuantity("a", -1)
	s.Add(item("c", 1), 1)
	s.SetQuantity("c", 0)
	s.Add(item("a", 10), 4)

	for _, e := range s.Items() {
		assert.GreaterOrEqual(t, e.Quantity, 1, "entry %s", e.Item.ID)
	}
}

func TestTotal_UsesSnapshotPrice(t *testing.T) {
	t.Parallel()

	s := NewStore(NewMemStorage())

	snapshot := item("a", 10)
	s.Add(snapshot, 2)

	// A later backend price change must not affect the cart.
	snapshot.Price = 99
	assert.Equal(t, 20.0, s.Total())
}

func TestTotalAndItemCount_Scenario(t *testing.T) {
	t.Parallel()

	s := NewStore(NewMemStorage())

	s.Add(item("a", 40.00), 2)
	s.Add(item("b", 10.50), 1)

	assert.Equal(t, 90.50, s.Total())
	assert.Equal(t, 3, s.ItemCount())

	s.Remove("b")
	assert.Equal(t, 80.00, s.Total())
	assert.Equal(t, 2, s.ItemCount())
}

func TestClear(t *testing.T) {
	t.Parallel()

	s := NewStore(NewMemStorage())
	s.Add(item("a", 10), 2)

	s.Clear()
	assert.Empty(t, s.Items())
	assert.Equal(t, 0.0, s.Total())
	assert.Equal(t, 0, s.ItemCount())
}

func TestPersistsAcrossStoreInstances(t *testing.T) {
	t.Parallel()

	storage := NewMemStorage()

	NewStore(storage).Add(item("a", 10), 2)

	reloaded := NewStore(storage)
	require.Len(t, reloaded.Items(), 1)
	assert.Equal(t, 2, reloaded.Items()[0].Quantity)
}

func TestCorruptStateDegradesToEmptyCart(t *testing.T) {
	t.Parallel()

	storage := NewMemStorage()
	storage.Set(StorageKey, "{not json")

	s := NewStore(storage)
	assert.Empty(t, s.Items())

	// The cart stays usable.
	entries := s.Add(item("a", 10), 1)
	assert.Len(t, entries, 1)
}

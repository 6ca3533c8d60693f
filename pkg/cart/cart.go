// Package cart is the client-side shopping cart: a persisted mapping from
// item id to an item snapshot plus quantity. All operations are synchronous
// over the injected storage; no network calls, no live price refresh — the
// unit price is the snapshot captured at add time.
package cart

import (
	"encoding/json"

	"github.com/snailmailtreasures/marketplace/pkg/storeapi"
)

const StorageKey = "snailmail_cart"

// Entry is an item snapshot with a quantity. Quantity is always >= 1 at
// rest; updates that would take it to zero or below remove the entry.
type Entry struct {
	Item     storeapi.Item `json:"item"`
	Quantity int           `json:"quantity"`
}

type Store struct {
	storage Storage
	key     string
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage, key: StorageKey}
}

// Items returns the current entries. Corrupt persisted state degrades to an
// empty cart rather than an error.
func (s *Store) Items() []Entry {
	raw, ok := s.storage.Get(s.key)
	if !ok || raw == "" {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

func (s *Store) save(entries []Entry) {
	if len(entries) == 0 {
		s.storage.Remove(s.key)
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	s.storage.Set(s.key, string(data))
}

// Add merges by item id: an existing entry's quantity is incremented,
// otherwise a new entry is appended. Quantities below 1 are coerced to 1.
func (s *Store) Add(item storeapi.Item, quantity int) []Entry {
	if quantity < 1 {
		quantity = 1
	}

	entries := s.Items()
	for i := range entries {
		if entries[i].Item.ID == item.ID {
			entries[i].Quantity += quantity
			s.save(entries)
			return entries
		}
	}

	entries = append(entries, Entry{Item: item, Quantity: quantity})
	s.save(entries)
	return entries
}

// Remove deletes the entry for the id; absent ids are a no-op.
func (s *Store) Remove(itemID string) []Entry {
	entries := s.Items()
	out := entries[:0]
	for _, e := range entries {
		if e.Item.ID != itemID {
			out = append(out, e)
		}
	}
	s.save(out)
	return out
}

// SetQuantity sets the quantity exactly; quantity <= 0 removes the entry.
func (s *Store) SetQuantity(itemID string, quantity int) []Entry {
	if quantity <= 0 {
		return s.Remove(itemID)
	}

	entries := s.Items()
	for i := range entries {
		if entries[i].Item.ID == itemID {
			entries[i].Quantity = quantity
			s.save(entries)
			break
		}
	}
	return entries
}

func (s *Store) Clear() {
	s.storage.Remove(s.key)
}

// Total sums snapshot unit price times quantity. Backend price changes
// after add time are deliberately not reflected.
func (s *Store) Total() float64 {
	var total float64
	for _, e := range s.Items() {
		total += e.Item.Price * float64(e.Quantity)
	}
	return total
}

func (s *Store) ItemCount() int {
	var count int
	for _, e := range s.Items() {
		count += e.Quantity
	}
	return count
}

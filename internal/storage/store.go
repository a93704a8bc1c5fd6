package storage

import (
	"sort"
)

// Item is an optional string value. Present is false when the key, index or
// origin does not exist.
type Item struct {
	Value   string
	Present bool
}

// Some wraps a value that exists.
func Some(v string) Item {
	return Item{Value: v, Present: true}
}

// None is the absent Item.
var None = Item{}

// OriginStore is the sorted item map of a single origin.
// It's not safe for concurrent use; the storage service is its only owner.
type OriginStore struct {
	keys   []string          // sorted ascending
	values map[string]string // key -> value
}

// NewOriginStore creates an empty origin store.
func NewOriginStore() *OriginStore {
	return &OriginStore{
		values: make(map[string]string),
	}
}

// Len returns the number of items.
func (s *OriginStore) Len() int {
	return len(s.keys)
}

// Key returns the key at the given position of the sorted key order.
func (s *OriginStore) Key(index int) (string, bool) {
	if index < 0 || index >= len(s.keys) {
		return "", false
	}
	return s.keys[index], true
}

// Get retrieves a value by key.
func (s *OriginStore) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value. Overwriting an existing key keeps its position.
func (s *OriginStore) Set(key, value string) {
	if _, exists := s.values[key]; !exists {
		i := s.search(key)
		s.keys = append(s.keys, "")
		copy(s.keys[i+1:], s.keys[i:])
		s.keys[i] = key
	}
	s.values[key] = value
}

// Remove deletes a key and reports whether it existed.
func (s *OriginStore) Remove(key string) bool {
	if _, exists := s.values[key]; !exists {
		return false
	}
	delete(s.values, key)

	i := s.search(key)
	s.keys = append(s.keys[:i], s.keys[i+1:]...)
	return true
}

// Clear removes every item.
func (s *OriginStore) Clear() {
	s.keys = nil
	s.values = make(map[string]string)
}

// search returns the position of key in s.keys, or where it would be inserted.
func (s *OriginStore) search(key string) int {
	return sort.SearchStrings(s.keys, key)
}

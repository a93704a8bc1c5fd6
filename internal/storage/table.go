package storage

// Table maps origin keys to their stores.
// Stores are created by the first SetItem for an origin and dropped by Clear;
// reads never create one.
type Table struct {
	origins map[string]*OriginStore
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		origins: make(map[string]*OriginStore),
	}
}

// Length returns the number of items stored for origin.
func (t *Table) Length(origin string) uint32 {
	store, exists := t.origins[origin]
	if !exists {
		return 0
	}
	return uint32(store.Len())
}

// Key returns the key at the sorted position index for origin.
func (t *Table) Key(origin string, index uint32) Item {
	store, exists := t.origins[origin]
	if !exists || uint64(index) >= uint64(store.Len()) {
		return None
	}
	key, _ := store.Key(int(index))
	return Some(key)
}

// GetItem returns the value stored under name for origin.
func (t *Table) GetItem(origin, name string) Item {
	store, exists := t.origins[origin]
	if !exists {
		return None
	}
	if v, ok := store.Get(name); ok {
		return Some(v)
	}
	return None
}

// SetItem stores value under name, creating the origin store if needed.
func (t *Table) SetItem(origin, name, value string) {
	store, exists := t.origins[origin]
	if !exists {
		store = NewOriginStore()
		t.origins[origin] = store
	}
	store.Set(name, value)
}

// RemoveItem deletes name from origin. It reports whether anything was removed.
func (t *Table) RemoveItem(origin, name string) bool {
	store, exists := t.origins[origin]
	if !exists {
		return false
	}
	return store.Remove(name)
}

// Clear drops every item of origin. It reports whether the origin had a store.
func (t *Table) Clear(origin string) bool {
	store, exists := t.origins[origin]
	if !exists {
		return false
	}
	store.Clear()
	delete(t.origins, origin)
	return true
}

// Origins returns the number of origins holding a store.
func (t *Table) Origins() int {
	return len(t.origins)
}

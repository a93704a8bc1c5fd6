package webstorage

import (
	"context"
	"log"
	"net/url"

	"github.com/google/uuid"

	"localstore/internal/origin"
	"localstore/internal/service"
	"localstore/internal/storage"
)

// Page is the browsing context a Storage belongs to.
type Page interface {
	CurrentURL() *url.URL
}

// PageFunc adapts a function to Page.
type PageFunc func() *url.URL

// CurrentURL calls f.
func (f PageFunc) CurrentURL() *url.URL { return f() }

// Storage is the per-page handle exposed to scripts. Reads block until the
// service replies; writes return once the request is queued.
//
// If the service has stopped, reads return zero values and writes are dropped.
type Storage struct {
	id      string
	page    Page
	service service.Handle
}

// New creates a Storage for page backed by the given service.
func New(page Page, svc service.Handle) *Storage {
	return &Storage{
		id:      uuid.NewString(),
		page:    page,
		service: svc,
	}
}

// ID identifies this Storage in logs.
func (s *Storage) ID() string {
	return s.id
}

// origin recomputes the origin key; the page may have navigated since the
// last call.
func (s *Storage) origin() string {
	return origin.Key(s.page.CurrentURL())
}

// Length returns the number of items for the page's origin.
func (s *Storage) Length() uint32 {
	n, err := s.service.Length(context.Background(), s.origin())
	if err != nil {
		s.unreachable("Length", err)
	}
	return n
}

// Key returns the name of the index-th key in ascending key order.
func (s *Storage) Key(index uint32) (string, bool) {
	item, err := s.service.Key(context.Background(), s.origin(), index)
	if err != nil {
		s.unreachable("Key", err)
	}
	return item.Value, item.Present
}

// GetItem returns the value stored under name.
func (s *Storage) GetItem(name string) (string, bool) {
	item, err := s.getItem(name)
	if err != nil {
		s.unreachable("GetItem", err)
	}
	return item.Value, item.Present
}

// SetItem stores value under name unless it is already stored there.
func (s *Storage) SetItem(name, value string) {
	// The check and the write are separate requests; a concurrent writer
	// may interleave between them. The origin is recomputed for the write, so
	// a navigation in between checks one origin and writes another.
	item, err := s.getItem(name)
	if err != nil {
		s.unreachable("SetItem", err)
		return
	}
	if item.Present && item.Value == value {
		return
	}
	if err := s.service.SetItem(s.origin(), name, value); err != nil {
		s.unreachable("SetItem", err)
	}
}

// RemoveItem deletes name if it exists.
func (s *Storage) RemoveItem(name string) {
	// As in SetItem, the check and the removal may see different origins.
	item, err := s.getItem(name)
	if err != nil {
		s.unreachable("RemoveItem", err)
		return
	}
	if !item.Present {
		return
	}
	if err := s.service.RemoveItem(s.origin(), name); err != nil {
		s.unreachable("RemoveItem", err)
	}
}

// Clear deletes every item for the page's origin.
func (s *Storage) Clear() {
	if err := s.service.Clear(s.origin()); err != nil {
		s.unreachable("Clear", err)
	}
}

// NamedGetter reads name as a property. found reports whether it exists.
func (s *Storage) NamedGetter(name string) (value string, found bool) {
	return s.GetItem(name)
}

// NamedSetter assigns name as a property.
func (s *Storage) NamedSetter(name, value string) {
	s.SetItem(name, value)
}

// NamedCreator defines name as a new property.
func (s *Storage) NamedCreator(name, value string) {
	s.SetItem(name, value)
}

// NamedDeleter deletes name as a property.
func (s *Storage) NamedDeleter(name string) {
	s.RemoveItem(name)
}

func (s *Storage) getItem(name string) (storage.Item, error) {
	return s.service.GetItem(context.Background(), s.origin(), name)
}

func (s *Storage) unreachable(op string, err error) {
	log.Printf("[webstorage %s] %s: %v", s.id, op, err)
}

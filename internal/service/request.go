package service

import (
	"localstore/internal/storage"
)

// Request is a message understood by the storage service.
type Request interface {
	request()
}

// LengthRequest asks for the number of items stored for Origin.
type LengthRequest struct {
	Origin string
	Reply  chan<- uint32
}

// KeyRequest asks for the key at position Index of Origin's sorted keys.
type KeyRequest struct {
	Origin string
	Index  uint32
	Reply  chan<- storage.Item
}

// GetItemRequest asks for the value stored under Name.
type GetItemRequest struct {
	Origin string
	Name   string
	Reply  chan<- storage.Item
}

// SetItemRequest stores Value under Name.
type SetItemRequest struct {
	Origin string
	Name   string
	Value  string
}

// RemoveItemRequest deletes Name.
type RemoveItemRequest struct {
	Origin string
	Name   string
}

// ClearRequest deletes every item of Origin.
type ClearRequest struct {
	Origin string
}

// StatsRequest asks for service counters.
type StatsRequest struct {
	Reply chan<- Stats
}

// ExitRequest stops the service loop.
type ExitRequest struct{}

func (LengthRequest) request()     {}
func (KeyRequest) request()        {}
func (GetItemRequest) request()    {}
func (SetItemRequest) request()    {}
func (RemoveItemRequest) request() {}
func (ClearRequest) request()      {}
func (StatsRequest) request()      {}
func (ExitRequest) request()       {}

// Stats holds counters maintained by the service loop.
type Stats struct {
	Requests       uint64 // requests handled, Exit excluded
	Writes         uint64 // SetItem, RemoveItem and Clear requests that changed the table
	DroppedReplies uint64 // replies nobody was waiting for
	Origins        int    // origins currently holding a store
}

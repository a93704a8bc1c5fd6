package service

import (
	"context"

	"localstore/internal/storage"
)

// Handle is the multi-producer endpoint of a Service. The zero Handle is not
// usable; obtain one from Service.Handle or Service.Start.
type Handle struct {
	requests chan<- Request
	done     <-chan struct{}
}

// Send enqueues req. It returns false if the service has stopped.
func (h Handle) Send(req Request) bool {
	// A stopped service must win even when the queue still has room.
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.requests <- req:
		return true
	case <-h.done:
		return false
	}
}

// Done is closed once the service has stopped.
func (h Handle) Done() <-chan struct{} {
	return h.done
}

// Stop asks the service to exit after the requests already queued.
func (h Handle) Stop() {
	h.Send(ExitRequest{})
}

// Call sends the request produced by build and waits for its single reply.
// build receives a fresh reply channel with room for one value, so the
// service never blocks on it even if the caller gives up.
func Call[T any](ctx context.Context, h Handle, build func(reply chan<- T) Request) (T, error) {
	var zero T
	replyCh := make(chan T, 1)

	if !h.Send(build(replyCh)) {
		return zero, ErrStopped
	}

	select {
	case v := <-replyCh:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.done:
		// The reply may have been sent just before the loop returned.
		select {
		case v := <-replyCh:
			return v, nil
		default:
			return zero, ErrStopped
		}
	}
}

// Length returns the number of items stored for origin.
func (h Handle) Length(ctx context.Context, origin string) (uint32, error) {
	return Call(ctx, h, func(reply chan<- uint32) Request {
		return LengthRequest{Origin: origin, Reply: reply}
	})
}

// Key returns the key at the sorted position index of origin.
func (h Handle) Key(ctx context.Context, origin string, index uint32) (storage.Item, error) {
	return Call(ctx, h, func(reply chan<- storage.Item) Request {
		return KeyRequest{Origin: origin, Index: index, Reply: reply}
	})
}

// GetItem returns the value stored under name for origin.
func (h Handle) GetItem(ctx context.Context, origin, name string) (storage.Item, error) {
	return Call(ctx, h, func(reply chan<- storage.Item) Request {
		return GetItemRequest{Origin: origin, Name: name, Reply: reply}
	})
}

// SetItem enqueues a write of value under name.
func (h Handle) SetItem(origin, name, value string) error {
	if !h.Send(SetItemRequest{Origin: origin, Name: name, Value: value}) {
		return ErrStopped
	}
	return nil
}

// RemoveItem enqueues the removal of name.
func (h Handle) RemoveItem(origin, name string) error {
	if !h.Send(RemoveItemRequest{Origin: origin, Name: name}) {
		return ErrStopped
	}
	return nil
}

// Clear enqueues the removal of every item of origin.
func (h Handle) Clear(origin string) error {
	if !h.Send(ClearRequest{Origin: origin}) {
		return ErrStopped
	}
	return nil
}

// Stats returns the service counters.
func (h Handle) Stats(ctx context.Context) (Stats, error) {
	return Call(ctx, h, func(reply chan<- Stats) Request {
		return StatsRequest{Reply: reply}
	})
}

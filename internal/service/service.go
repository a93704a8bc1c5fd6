package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"localstore/internal/storage"
)

// DefaultQueueSize is the request buffer used when Options.QueueSize is unset.
const DefaultQueueSize = 64

// ErrStopped is returned when a request is sent to a service that has exited.
var ErrStopped = errors.New("storage service stopped")

// Options configures a Service.
type Options struct {
	// Name prefixes log lines. Defaults to "storage".
	Name string
	// QueueSize is the capacity of the request channel.
	QueueSize int
	// Verbose logs every dropped reply.
	Verbose bool
}

// Service owns the storage table. Only the goroutine running Run touches it.
type Service struct {
	name     string
	verbose  bool
	requests chan Request
	done     chan struct{}
	table    *storage.Table
	stats    Stats
	runOnce  sync.Once
}

// New creates a service. It does not serve requests until Run or Start.
func New(opts Options) *Service {
	if opts.Name == "" {
		opts.Name = "storage"
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	return &Service{
		name:     opts.Name,
		verbose:  opts.Verbose,
		requests: make(chan Request, opts.QueueSize),
		done:     make(chan struct{}),
		table:    storage.NewTable(),
	}
}

// Handle returns the sending endpoint shared by all callers.
func (s *Service) Handle() Handle {
	return Handle{requests: s.requests, done: s.done}
}

// Done is closed once the loop has returned.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Start runs the loop on a new goroutine and returns the service handle.
func (s *Service) Start(ctx context.Context) Handle {
	go s.Run(ctx)
	return s.Handle()
}

// Run serves requests until an ExitRequest arrives or ctx is cancelled.
// Only the first call serves; later calls return immediately.
func (s *Service) Run(ctx context.Context) {
	first := false
	s.runOnce.Do(func() { first = true })
	if !first {
		return
	}
	defer close(s.done)

	log.Printf("[%s] Storage service started", s.name)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] Storage service stopping: %v", s.name, ctx.Err())
			return
		case req := <-s.requests:
			if _, exit := req.(ExitRequest); exit {
				log.Printf("[%s] Storage service exiting after %d requests", s.name, s.stats.Requests)
				return
			}
			s.handle(req)
		}
	}
}

// handle dispatches one request.
func (s *Service) handle(req Request) {
	s.stats.Requests++

	switch r := req.(type) {
	case LengthRequest:
		deliver(s, r.Reply, s.table.Length(r.Origin))
	case KeyRequest:
		deliver(s, r.Reply, s.table.Key(r.Origin, r.Index))
	case GetItemRequest:
		deliver(s, r.Reply, s.table.GetItem(r.Origin, r.Name))
	case SetItemRequest:
		s.table.SetItem(r.Origin, r.Name, r.Value)
		s.stats.Writes++
	case RemoveItemRequest:
		if s.table.RemoveItem(r.Origin, r.Name) {
			s.stats.Writes++
		}
	case ClearRequest:
		if s.table.Clear(r.Origin) {
			s.stats.Writes++
		}
	case StatsRequest:
		stats := s.stats
		stats.Origins = s.table.Origins()
		deliver(s, r.Reply, stats)
	default:
		log.Printf("[%s] Ignoring unknown request %T", s.name, req)
	}
}

// deliver sends v without blocking. A caller that stopped waiting, or never
// provided room for the reply, loses it.
func deliver[T any](s *Service, ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
		s.stats.DroppedReplies++
		if s.verbose {
			log.Printf("[%s] Dropped reply %T: no receiver", s.name, v)
		}
	}
}

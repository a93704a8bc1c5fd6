package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"localstore/internal/storage"
)

const testOrigin = "https://example.com:443/"

func startService(t *testing.T) (*Service, Handle) {
	t.Helper()
	svc := New(Options{Name: t.Name()})
	h := svc.Start(context.Background())
	t.Cleanup(func() {
		h.Stop()
		<-svc.Done()
	})
	return svc, h
}

func mustLength(t *testing.T, h Handle, origin string) uint32 {
	t.Helper()
	n, err := h.Length(context.Background(), origin)
	if err != nil {
		t.Fatalf("Length(%s): %v", origin, err)
	}
	return n
}

func mustGet(t *testing.T, h Handle, origin, name string) storage.Item {
	t.Helper()
	item, err := h.GetItem(context.Background(), origin, name)
	if err != nil {
		t.Fatalf("GetItem(%s, %s): %v", origin, name, err)
	}
	return item
}

func mustKey(t *testing.T, h Handle, origin string, index uint32) storage.Item {
	t.Helper()
	item, err := h.Key(context.Background(), origin, index)
	if err != nil {
		t.Fatalf("Key(%s, %d): %v", origin, index, err)
	}
	return item
}

func TestService_Scenario(t *testing.T) {
	_, h := startService(t)

	if err := h.SetItem(testOrigin, "a", "1"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if err := h.SetItem(testOrigin, "b", "2"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}

	if n := mustLength(t, h, testOrigin); n != 2 {
		t.Errorf("Expected length 2, got %d", n)
	}
	if k := mustKey(t, h, testOrigin, 0); k != storage.Some("a") {
		t.Errorf("Expected key 0 = a, got %+v", k)
	}
	if k := mustKey(t, h, testOrigin, 1); k != storage.Some("b") {
		t.Errorf("Expected key 1 = b, got %+v", k)
	}

	if err := h.SetItem(testOrigin, "a", "3"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if n := mustLength(t, h, testOrigin); n != 2 {
		t.Errorf("Expected length 2 after overwrite, got %d", n)
	}
	if v := mustGet(t, h, testOrigin, "a"); v != storage.Some("3") {
		t.Errorf("Expected a = 3, got %+v", v)
	}

	if err := h.RemoveItem(testOrigin, "b"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if n := mustLength(t, h, testOrigin); n != 1 {
		t.Errorf("Expected length 1 after remove, got %d", n)
	}

	if err := h.Clear(testOrigin); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n := mustLength(t, h, testOrigin); n != 0 {
		t.Errorf("Expected length 0 after clear, got %d", n)
	}
	if k := mustKey(t, h, testOrigin, 0); k.Present {
		t.Errorf("Expected no key after clear, got %q", k.Value)
	}
}

func TestService_UnwrittenOrigin(t *testing.T) {
	_, h := startService(t)

	if n := mustLength(t, h, "http://never/"); n != 0 {
		t.Errorf("Expected length 0, got %d", n)
	}
	if item := mustGet(t, h, "http://never/", "k"); item.Present {
		t.Errorf("Expected absent item, got %+v", item)
	}
	if item := mustKey(t, h, "http://never/", 0); item.Present {
		t.Errorf("Expected absent key, got %+v", item)
	}

	stats, err := h.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Origins != 0 {
		t.Errorf("Reads must not create origin stores, got %d", stats.Origins)
	}
}

func TestService_WritesVisibleToLaterRequests(t *testing.T) {
	_, h := startService(t)

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("k%03d", i)
		if err := h.SetItem(testOrigin, key, key); err != nil {
			t.Fatalf("SetItem(%s): %v", key, err)
		}
		if item := mustGet(t, h, testOrigin, key); item != storage.Some(key) {
			t.Fatalf("GetItem(%s) = %+v right after SetItem", key, item)
		}
	}
}

func TestService_ConcurrentOrigins(t *testing.T) {
	_, h := startService(t)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			origin := fmt.Sprintf("http://host%d/", w)
			for i := 0; i < 50; i++ {
				_ = h.SetItem(origin, fmt.Sprintf("k%02d", i), origin)
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < 8; w++ {
		origin := fmt.Sprintf("http://host%d/", w)
		if n := mustLength(t, h, origin); n != 50 {
			t.Errorf("%s: expected 50 items, got %d", origin, n)
		}
		if item := mustGet(t, h, origin, "k07"); item != storage.Some(origin) {
			t.Errorf("%s observed another origin's write: %+v", origin, item)
		}
	}
}

func TestService_AbandonedReply(t *testing.T) {
	_, h := startService(t)
	ctx := context.Background()

	// Unbuffered and never read: the service must skip the reply.
	abandoned := make(chan uint32)
	if !h.Send(LengthRequest{Origin: testOrigin, Reply: abandoned}) {
		t.Fatal("Send failed on a running service")
	}
	if !h.Send(GetItemRequest{Origin: testOrigin, Name: "a"}) {
		t.Fatal("Send failed on a running service")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = h.Length(ctx, testOrigin)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("service stalled on an abandoned reply")
	}

	stats, err := h.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.DroppedReplies != 2 {
		t.Errorf("Expected 2 dropped replies, got %d", stats.DroppedReplies)
	}
}

func TestService_ExitIsTerminal(t *testing.T) {
	svc := New(Options{Name: t.Name(), QueueSize: 1})
	h := svc.Start(context.Background())

	if err := h.SetItem(testOrigin, "a", "1"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	h.Stop()

	select {
	case <-svc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("service did not exit")
	}

	if h.Send(ClearRequest{Origin: testOrigin}) {
		t.Error("Expected Send to fail after exit")
	}
	if err := h.SetItem(testOrigin, "b", "2"); !errors.Is(err, ErrStopped) {
		t.Errorf("SetItem error = %v, want ErrStopped", err)
	}
	if _, err := h.Length(context.Background(), testOrigin); !errors.Is(err, ErrStopped) {
		t.Errorf("Length error = %v, want ErrStopped", err)
	}
}

func TestService_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := New(Options{Name: t.Name()})
	h := svc.Start(ctx)

	cancel()
	select {
	case <-svc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop on context cancellation")
	}

	if _, err := h.GetItem(context.Background(), testOrigin, "a"); !errors.Is(err, ErrStopped) {
		t.Errorf("GetItem error = %v, want ErrStopped", err)
	}
}

func TestCall_ContextDeadline(t *testing.T) {
	// A service that never runs leaves the caller waiting on its context.
	svc := New(Options{Name: t.Name()})
	h := svc.Handle()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := h.Length(ctx, testOrigin); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Length error = %v, want DeadlineExceeded", err)
	}
}

func TestService_RunOnlyOnce(t *testing.T) {
	svc, h := startService(t)

	returned := make(chan struct{})
	go func() {
		svc.Run(context.Background())
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("second Run should return immediately")
	}

	mustLength(t, h, testOrigin)
}

func TestService_StatsCountWrites(t *testing.T) {
	_, h := startService(t)

	_ = h.SetItem(testOrigin, "a", "1")
	_ = h.RemoveItem(testOrigin, "missing")
	_ = h.RemoveItem(testOrigin, "a")
	_ = h.Clear("http://absent/")

	stats, err := h.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Writes != 2 {
		t.Errorf("Expected 2 writes, got %d", stats.Writes)
	}
	// The stats request counts itself.
	if stats.Requests != 5 {
		t.Errorf("Expected 5 requests, got %d", stats.Requests)
	}
	if stats.Origins != 1 {
		t.Errorf("Expected 1 origin, got %d", stats.Origins)
	}
}

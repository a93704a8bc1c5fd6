package it

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"localstore/internal/config"
	"localstore/internal/node"
	"localstore/internal/origin"
	"localstore/internal/rpc"
	"localstore/internal/webstorage"
)

// Harness runs one node in-process together with the clients tests use.
type Harness struct {
	node    *node.Node
	addr    string
	client  *rpc.Client
	serveCh chan error
}

// Page is an in-process page that can navigate.
type Page struct {
	mu  sync.Mutex
	url *url.URL
}

// CurrentURL implements webstorage.Page.
func (p *Page) CurrentURL() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// Origin returns the origin key of the current URL, as remote clients
// address it.
func (p *Page) Origin() string {
	return origin.Key(p.CurrentURL())
}

// Navigate changes the page URL.
func (p *Page) Navigate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", rawURL, err)
	}
	p.mu.Lock()
	p.url = u
	p.mu.Unlock()
	return nil
}

// Start starts a node on a random local port and dials it.
func Start(ctx context.Context, nodeID string) (*Harness, error) {
	cfg := &config.Config{
		NodeID:          nodeID,
		ListenAddr:      "127.0.0.1:0",
		QueueSize:       128,
		ShutdownTimeout: 5 * time.Second,
		Verbose:         true,
	}

	n, err := node.NewNode(cfg)
	if err != nil {
		return nil, err
	}
	addr, err := n.Listen()
	if err != nil {
		n.Stop()
		return nil, err
	}

	h := &Harness{
		node:    n,
		addr:    addr.String(),
		serveCh: make(chan error, 1),
	}
	go func() { h.serveCh <- n.Start() }()

	client, err := rpc.Dial(ctx, h.addr)
	if err != nil {
		n.Stop()
		return nil, fmt.Errorf("failed to dial node %s: %w", nodeID, err)
	}
	h.client = client

	return h, nil
}

// Addr returns the node's gRPC address.
func (h *Harness) Addr() string {
	return h.addr
}

// Client returns the remote client.
func (h *Harness) Client() *rpc.Client {
	return h.client
}

// Node returns the node under test.
func (h *Harness) Node() *node.Node {
	return h.node
}

// OpenPage creates a page at rawURL and its Storage object.
func (h *Harness) OpenPage(rawURL string) (*Page, *webstorage.Storage, error) {
	p := &Page{}
	if err := p.Navigate(rawURL); err != nil {
		return nil, nil, err
	}

	return p, webstorage.New(p, h.node.Handle()), nil
}

// Stop closes the client and stops the node. It returns the serve error, if any.
func (h *Harness) Stop() error {
	if h.client != nil {
		_ = h.client.Close()
	}
	h.node.Stop()

	select {
	case err := <-h.serveCh:
		return err
	case <-time.After(10 * time.Second):
		return fmt.Errorf("node did not stop serving")
	}
}

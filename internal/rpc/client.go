package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/dynamicpb"

	"localstore/internal/storage"
)

const dialTimeout = 5 * time.Second

// Client calls localstore.v1.Storage on a remote node.
type Client struct {
	conn     *grpc.ClientConn
	clientID string
	owned    bool
}

// Dial connects to the node at addr.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithBlock(),
	}, opts...)

	conn, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	c := NewClient(conn)
	c.owned = true
	return c, nil
}

// NewClient wraps an existing connection. Close does not close conn.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{
		conn:     conn,
		clientID: uuid.NewString(),
	}
}

// Conn returns the underlying connection.
func (c *Client) Conn() *grpc.ClientConn {
	return c.conn
}

// ClientID identifies this client in server logs.
func (c *Client) ClientID() string {
	return c.clientID
}

// Close closes the connection if Dial opened it.
func (c *Client) Close() error {
	if !c.owned {
		return nil
	}
	return c.conn.Close()
}

// Length returns the number of items stored for origin.
func (c *Client) Length(ctx context.Context, origin string) (uint32, error) {
	resp := new(LengthResponse)
	req := &OriginRequest{Origin: origin, ClientID: c.clientID, RequestID: uuid.NewString()}
	if err := c.invoke(ctx, "Length", req, resp); err != nil {
		return 0, err
	}
	return resp.Length, nil
}

// Key returns the key at the sorted position index of origin.
func (c *Client) Key(ctx context.Context, origin string, index uint32) (storage.Item, error) {
	resp := new(ItemResponse)
	req := &KeyRequest{Origin: origin, Index: index, ClientID: c.clientID, RequestID: uuid.NewString()}
	if err := c.invoke(ctx, "Key", req, resp); err != nil {
		return storage.None, err
	}
	return storage.Item{Value: resp.Value, Present: resp.Found}, nil
}

// GetItem returns the value stored under name for origin.
func (c *Client) GetItem(ctx context.Context, origin, name string) (storage.Item, error) {
	resp := new(ItemResponse)
	if err := c.invoke(ctx, "GetItem", c.itemRequest(origin, name, ""), resp); err != nil {
		return storage.None, err
	}
	return storage.Item{Value: resp.Value, Present: resp.Found}, nil
}

// SetItem queues a write of value under name. It returns once the node has
// queued the write.
func (c *Client) SetItem(ctx context.Context, origin, name, value string) error {
	return c.invoke(ctx, "SetItem", c.itemRequest(origin, name, value), new(Empty))
}

// RemoveItem queues the removal of name.
func (c *Client) RemoveItem(ctx context.Context, origin, name string) error {
	return c.invoke(ctx, "RemoveItem", c.itemRequest(origin, name, ""), new(Empty))
}

// Clear queues the removal of every item of origin.
func (c *Client) Clear(ctx context.Context, origin string) error {
	req := &OriginRequest{Origin: origin, ClientID: c.clientID, RequestID: uuid.NewString()}
	return c.invoke(ctx, "Clear", req, new(Empty))
}

func (c *Client) itemRequest(origin, name, value string) *ItemRequest {
	return &ItemRequest{
		Origin:    origin,
		Name:      name,
		Value:     value,
		ClientID:  c.clientID,
		RequestID: uuid.NewString(),
	}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp Message) error {
	out := dynamicpb.NewMessage(resp.descriptor())
	if err := c.conn.Invoke(ctx, fullMethod(method), req.toProto(), out); err != nil {
		return err
	}
	resp.fromProto(out)
	return nil
}

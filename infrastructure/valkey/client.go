package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

const (
	// DefaultConnectTimeout is the maximum time to wait for initial connection
	DefaultConnectTimeout = 5 * time.Second

	// SignalChannel is the pub/sub channel used to wake the scheduler loop
	// when a post is scheduled inside the current poll window.
	SignalChannel = "scheduler:signal"
)

// Config holds the configuration for creating a Valkey client
type Config struct {
	Address        string
	Password       string
	DB             int
	KeyPrefix      string
	ConnectTimeout time.Duration // Optional, defaults to DefaultConnectTimeout
}

// Client wraps the valkey-go client with application-specific functionality.
// This struct should be created via NewClient and passed as a dependency.
// A nil *Client is a valid "Valkey disabled" value; lock helpers degrade to
// always-granted and signals become no-ops.
type Client struct {
	inner     valkeylib.Client
	keyPrefix string
}

// NewClient creates a new Valkey client instance.
// The caller is responsible for calling Close() when done.
// Returns an error if the connection cannot be established within the timeout.
func NewClient(cfg Config) (*Client, error) {
	opts := valkeylib.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	inner, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = DefaultConnectTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := inner.Do(ctx, inner.B().Ping().Build()).Error(); err != nil {
		inner.Close()
		return nil, fmt.Errorf("failed to ping valkey (timeout: %v): %w", timeout, err)
	}

	prefix := cfg.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}

	return &Client{
		inner:     inner,
		keyPrefix: prefix,
	}, nil
}

// Inner returns the underlying valkey-go client.
func (c *Client) Inner() valkeylib.Client {
	return c.inner
}

// Close closes the Valkey connection.
func (c *Client) Close() {
	if c != nil && c.inner != nil {
		c.inner.Close()
	}
}

// Key constructs a prefixed key from the given parts.
// Example: Key("lock", "publish", "p1") -> "azpress:lock:publish:p1"
func (c *Client) Key(parts ...string) string {
	if len(parts) == 0 {
		return strings.TrimSuffix(c.keyPrefix, ":")
	}
	key := c.keyPrefix
	for i, p := range parts {
		key += p
		if i < len(parts)-1 {
			key += ":"
		}
	}
	return key
}

// AcquireLock takes a short TTL lease on the given key (SET NX EX). It returns
// true when the caller owns the lease. A nil client always grants the lock so
// single-instance deployments without Valkey keep working on the state guard
// alone.
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) bool {
	if c == nil {
		return true
	}
	res := c.inner.Do(ctx, c.inner.B().Set().Key(c.Key(key)).Value("1").Nx().Ex(ttl).Build())
	if err := res.Error(); err != nil {
		return false
	}
	return true
}

// ReleaseLock drops a lease taken with AcquireLock.
func (c *Client) ReleaseLock(ctx context.Context, key string) {
	if c == nil {
		return
	}
	_ = c.inner.Do(ctx, c.inner.B().Del().Key(c.Key(key)).Build()).Error()
}

// PublishSignal wakes any scheduler loop subscribed to the signal channel.
func (c *Client) PublishSignal(ctx context.Context) {
	if c == nil {
		return
	}
	_ = c.inner.Do(ctx, c.inner.B().Publish().Channel(c.Key(SignalChannel)).Message("wake").Build()).Error()
}

// SubscribeSignal blocks receiving wake signals until ctx is cancelled,
// invoking onSignal for each message.
func (c *Client) SubscribeSignal(ctx context.Context, onSignal func()) error {
	if c == nil {
		<-ctx.Done()
		return nil
	}
	return c.inner.Receive(ctx, c.inner.B().Subscribe().Channel(c.Key(SignalChannel)).Build(), func(msg valkeylib.PubSubMessage) {
		onSignal()
	})
}

// Ping tests the connection to Valkey with a context for timeout control.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("valkey disabled")
	}
	return c.inner.Do(ctx, c.inner.B().Ping().Build()).Error()
}

// IsConnected tests if the connection is healthy (uses a short timeout).
func (c *Client) IsConnected() bool {
	if c == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return c.Ping(ctx) == nil
}

// IsNil checks if an error returned by the client represents a Valkey NIL response.
func IsNil(err error) bool {
	return valkeylib.IsValkeyNil(err)
}

package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

// Channel is spec §4.6's "unbounded FIFO with async send... and receive
// (suspends until a value is available)." It satisfies value.HostObject
// so it can be passed around and stored like any other SLIP value, even
// though its real surface is the send/receive methods exposed via
// Method.
type Channel struct {
	mu     sync.Mutex
	buf    []value.Value
	notify chan struct{}
	done   <-chan struct{}
}

// NewChannel builds a channel that observes done for cancellation,
// normally the owning Scheduler's Done() signal.
func NewChannel(done <-chan struct{}) *Channel {
	return &Channel{notify: make(chan struct{}, 1), done: done}
}

func (*Channel) Kind() value.Kind     { return value.KindHostObject }
func (c *Channel) Pformat() string    { return "channel" }
func (c *Channel) IsZeroArity() bool  { return false }

func (c *Channel) Get(string) (value.Value, bool) { return nil, false }
func (c *Channel) Set(key string, value.Value) error {
	return fmt.Errorf("channel has no field %q", key)
}
func (c *Channel) Delete(key string) error {
	return fmt.Errorf("channel has no field %q", key)
}

// Method exposes `send` and `receive` as callables (spec §4.6).
func (c *Channel) Method(name string) (value.Callable, bool) {
	switch name {
	case "send":
		return value.NewNative("send", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			if len(args) != 1 {
				return nil, slerr.TypeErrorf(token.NoPos, "send expects 1 argument, got %d", len(args))
			}
			c.Send(args[0])
			return value.None, nil
		}), true
	case "receive":
		return value.NewNative("receive", 0, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			// context.Background(): a NativeFunction's Call signature
			// carries no caller ctx, but Receive still observes
			// cancellation via c.done, the scheduler's own signal.
			return c.Receive(context.Background())
		}), true
	}
	return nil, false
}

// Send appends v and wakes one pending Receive (non-blocking, spec §4.6).
func (c *Channel) Send(v value.Value) {
	c.mu.Lock()
	c.buf = append(c.buf, v)
	c.mu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Receive suspends until a value is available or ctx/the scheduler's
// cancellation fires (spec §4.6's `receive` suspension point).
func (c *Channel) Receive(ctx context.Context) (value.Value, error) {
	for {
		c.mu.Lock()
		if len(c.buf) > 0 {
			v := c.buf[0]
			c.buf = c.buf[1:]
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		select {
		case <-c.notify:
		case <-ctx.Done():
			return nil, slerr.Cancelled(token.NoPos, "")
		case <-c.done:
			return nil, slerr.Cancelled(token.NoPos, "")
		}
	}
}

package proto

import (
	"context"
	"sync"

	"github.com/gatelink/sync-bridge/errors"
)

// Sender is the output side of a connection channel. Implementations
// must preserve send order and return an error matching
// errors.ChannelClosed once the peer is gone.
type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// Receiver is the input side of a connection channel. After the channel
// closes and drains, Receive returns an error matching
// errors.ChannelClosed.
type Receiver interface {
	Receive(ctx context.Context) (Event, error)
}

// Pipe is an in-memory, single-producer single-consumer channel pair
// half. Two of them form a full connection: one for input events, one
// for output events.
type Pipe struct {
	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewPipe creates a pipe buffering up to buffer events. A zero or
// negative buffer means unbuffered.
func NewPipe(buffer int) *Pipe {
	if buffer < 0 {
		buffer = 0
	}
	return &Pipe{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

// Send enqueues ev. It fails with a channel-closed error after Close and
// with ctx.Err() on cancellation.
func (p *Pipe) Send(ctx context.Context, ev Event) error {
	select {
	case <-p.done:
		return errors.ChannelClosed("send on closed pipe")
	default:
	}
	select {
	case p.ch <- ev:
		return nil
	case <-p.done:
		return errors.ChannelClosed("send on closed pipe")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive dequeues the next event. Events buffered before Close are
// still delivered; once drained, Receive reports channel closed.
func (p *Pipe) Receive(ctx context.Context) (Event, error) {
	select {
	case ev := <-p.ch:
		return ev, nil
	default:
	}
	select {
	case ev := <-p.ch:
		return ev, nil
	case <-p.done:
		// Drain anything that raced with Close.
		select {
		case ev := <-p.ch:
			return ev, nil
		default:
		}
		return nil, errors.ChannelClosed("receive on closed pipe")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close marks the pipe closed. Idempotent.
func (p *Pipe) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

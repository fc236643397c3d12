package bridgetest

import (
	"context"
	"time"

	syncbridge "github.com/gatelink/sync-bridge"
	"github.com/gatelink/sync-bridge/bridge"
	"github.com/gatelink/sync-bridge/errors"
	"github.com/gatelink/sync-bridge/proto"
)

// Communicator drives one application instance with scripted input
// events and exposes its output events for assertions. It mirrors how a
// real runtime talks to the bridge, minus the transport.
type Communicator struct {
	in     *proto.Pipe
	out    *proto.Pipe
	cancel context.CancelFunc
	done   chan error
}

// Config tweaks the bridge under test. The zero value is fine.
type Config struct {
	Pool *bridge.Pool
}

// New starts serving scope through app immediately. Call Close when
// done.
func New(app syncbridge.Application, scope *proto.Scope, cfg Config) *Communicator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Communicator{
		in:     proto.NewPipe(16),
		out:    proto.NewPipe(16),
		cancel: cancel,
		done:   make(chan error, 1),
	}
	b := bridge.New(app, bridge.Config{Pool: cfg.Pool})
	go func() {
		c.done <- b.Serve(ctx, scope, c.in, c.out)
	}()
	return c
}

// SendInput delivers one scripted input event to the bridge.
func (c *Communicator) SendInput(ev proto.Event) error {
	return c.in.Send(context.Background(), ev)
}

// ReceiveOutput returns the next output event, waiting up to timeout.
func (c *Communicator) ReceiveOutput(timeout time.Duration) (proto.Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.out.Receive(ctx)
}

// Wait blocks until Serve returns and reports its error, or times out.
func (c *Communicator) Wait(timeout time.Duration) error {
	select {
	case err := <-c.done:
		return err
	case <-time.After(timeout):
		return errors.ChannelClosed("wait for serve timed out")
	}
}

// CloseOutput closes the output channel, simulating a peer disconnect.
func (c *Communicator) CloseOutput() {
	c.out.Close()
}

// Close tears the instance down: cancels the serve context and closes
// both pipes. Safe to call more than once.
func (c *Communicator) Close() {
	c.cancel()
	c.in.Close()
	c.out.Close()
}

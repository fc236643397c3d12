package bridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	syncbridge "github.com/gatelink/sync-bridge"
	"github.com/gatelink/sync-bridge/errors"
	"github.com/gatelink/sync-bridge/metrics"
	"github.com/gatelink/sync-bridge/proto"
	"github.com/gatelink/sync-bridge/translate"
)

// Config holds configuration for bridge creation.
type Config struct {
	// Pool is the shared worker pool for blocking application calls.
	// Nil creates a private pool with defaults.
	Pool *Pool

	// Metrics receives request instrumentation. Nil disables it.
	Metrics *metrics.Recorder

	// ErrorOutput is the application's error sink (the environ's error
	// stream). Nil discards.
	ErrorOutput io.Writer
}

// Bridge serves one synchronous application over message channel pairs.
// A single Bridge is shared across requests; all per-request state lives
// in Serve.
type Bridge struct {
	app    syncbridge.Application
	pool   *Pool
	rec    *metrics.Recorder
	errOut io.Writer
}

// New wraps app for serving under a message-protocol runtime.
func New(app syncbridge.Application, cfg Config) *Bridge {
	pool := cfg.Pool
	if pool == nil {
		pool = NewPool(PoolConfig{})
	}
	errOut := cfg.ErrorOutput
	if errOut == nil {
		errOut = io.Discard
	}
	return &Bridge{app: app, pool: pool, rec: cfg.Metrics, errOut: errOut}
}

// Serve handles one request: it builds the environ from scope, runs the
// application on a worker, and emits the ordered output events on tx.
// It returns nil on a completed response and on the benign
// channel-closed condition; taxonomy errors otherwise. Serve never
// panics on application misbehavior.
func (b *Bridge) Serve(ctx context.Context, scope *proto.Scope, rx proto.Receiver, tx proto.Sender) error {
	started := time.Now()
	b.rec.RequestStarted()

	err := b.serve(ctx, scope, rx, tx)
	outcome := classify(err)
	b.rec.RequestFinished(outcome, time.Since(started))

	if err == nil {
		return nil
	}

	log := Logger()
	if outcome == metrics.OutcomeChannelClosed {
		// Normal disconnect race; the peer is gone, nobody to tell.
		log.Debug("output channel closed mid-response",
			zap.String("method", scopeMethod(scope)),
			zap.String("path", scopePath(scope)))
		return nil
	}

	log.Error("request failed",
		zap.String("method", scopeMethod(scope)),
		zap.String("path", scopePath(scope)),
		zap.String("outcome", outcome),
		zap.Error(err))
	return err
}

func (b *Bridge) serve(ctx context.Context, scope *proto.Scope, rx proto.Receiver, tx proto.Sender) error {
	env, err := translate.BuildEnviron(scope, newBodyReader(ctx, rx), b.errOut)
	if err != nil {
		return err
	}
	resp := translate.NewResponse()

	var runErr error
	err = b.pool.Run(ctx, func() {
		runErr = b.run(ctx, env, resp, tx)
	})
	if err != nil {
		// Cancellation while waiting for admission means the connection
		// is already being torn down.
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return errors.ChannelClosed("request cancelled before execution: " + err.Error())
		}
		return err
	}
	return runErr
}

// run executes the application call and streams its output. It runs on
// a worker goroutine and may block freely.
func (b *Bridge) run(ctx context.Context, env syncbridge.Environ, resp *translate.Response, tx proto.Sender) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.ApplicationFailed(fmt.Errorf("panic: %v", rec))
		}
	}()

	start := func(status string, headers []syncbridge.Header, exc error) error {
		return resp.Start(status, headers, exc)
	}

	body, appErr := b.app.Serve(env, start)
	if appErr != nil {
		var be *errors.Error
		if stderrors.As(appErr, &be) {
			return be
		}
		return errors.ApplicationFailed(appErr)
	}

	// One chunk of lookahead: a chunk is only sent once the next pull
	// tells us whether it is the last, so the terminal event carries
	// MoreBody false and K chunks produce exactly K body events. The
	// held chunk is copied because the application may reuse its buffer
	// on the next Next call.
	var held []byte
	holding := false
	for body != nil {
		chunk, nerr := body.Next()
		if nerr == io.EOF {
			break
		}
		if nerr != nil {
			return errors.ApplicationFailed(nerr)
		}
		if holding {
			if err := b.sendBody(ctx, resp, tx, held, false); err != nil {
				return err
			}
		}
		held, holding = append([]byte(nil), chunk...), true
	}

	if !resp.Announced() {
		return errors.ProtocolViolation("application finished without announcing the response")
	}
	if holding {
		return b.sendBody(ctx, resp, tx, held, true)
	}
	// Zero chunks: the response still terminates with exactly one
	// empty-body event.
	return b.sendBody(ctx, resp, tx, nil, true)
}

// sendBody flushes the pending start event if any, then one body event.
func (b *Bridge) sendBody(ctx context.Context, resp *translate.Response, tx proto.Sender, chunk []byte, last bool) error {
	if startEv, ok := resp.TakeStart(); ok {
		if err := tx.Send(ctx, startEv); err != nil {
			return asChannelErr(err)
		}
	}
	ev, err := resp.BodyMessage(chunk, last)
	if err != nil {
		return err
	}
	if err := tx.Send(ctx, ev); err != nil {
		return asChannelErr(err)
	}
	b.rec.ChunkSent()
	return nil
}

// asChannelErr folds send failures into the channel-closed condition.
// Cancellation mid-send means the connection is being torn down, which
// the adapter treats the same way.
func asChannelErr(err error) error {
	if stderrors.Is(err, errors.ChannelClosed("")) {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ChannelClosed("send interrupted: " + err.Error())
	}
	return errors.Wrap(errors.PhaseChannel, errors.KindChannelClosed, err, "send failed")
}

func classify(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case stderrors.Is(err, errors.UnsupportedProtocol("")):
		return metrics.OutcomeUnsupportedProtocol
	case stderrors.Is(err, errors.ProtocolViolation("")):
		return metrics.OutcomeProtocolViolation
	case stderrors.Is(err, errors.ChannelClosed("")):
		return metrics.OutcomeChannelClosed
	default:
		return metrics.OutcomeApplicationError
	}
}

func scopeMethod(s *proto.Scope) string {
	if s == nil {
		return ""
	}
	return s.Method
}

func scopePath(s *proto.Scope) string {
	if s == nil {
		return ""
	}
	return s.Path
}

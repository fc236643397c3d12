package translate

import (
	"sync"

	syncbridge "github.com/gatelink/sync-bridge"
	"github.com/gatelink/sync-bridge/errors"
	"github.com/gatelink/sync-bridge/proto"
)

type state int

const (
	awaitingStart state = iota
	headersSent
	completed
)

// Response tracks one request's output contract. It is owned by a single
// request; the mutex only guards against an application announcing from
// a goroutine of its own.
type Response struct {
	mu      sync.Mutex
	state   state
	flushed bool // start event handed out for sending
	pending *proto.ResponseStart
}

// NewResponse returns a Response in the AwaitingStart state.
func NewResponse() *Response {
	return &Response{}
}

// Start records the application's status/header announcement and moves
// the state to HeadersSent. Calling it twice is a protocol violation
// unless exc is non-nil and the start event has not been flushed yet, in
// which case the replacement announcement wins. Once output has started,
// a call with exc returns exc itself: sent headers cannot be retracted.
func (r *Response) Start(status string, headers []syncbridge.Header, exc error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if exc != nil {
		if r.flushed {
			return exc
		}
	} else if r.state != awaitingStart {
		return errors.ProtocolViolation("response already started")
	}
	if r.state == completed {
		return errors.ProtocolViolation("response already completed")
	}

	code, err := ParseStatus(status)
	if err != nil {
		return err
	}

	// Headers pass through as byte pairs, copied so the application may
	// reuse its slices.
	hs := make([]syncbridge.Header, len(headers))
	copy(hs, headers)

	r.pending = &proto.ResponseStart{Status: code, Headers: hs}
	r.state = headersSent
	return nil
}

// TakeStart returns the pending start event exactly once and marks it
// flushed. ok is false when nothing is pending, either because Start was
// never called or because the event was already taken.
func (r *Response) TakeStart() (proto.ResponseStart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return proto.ResponseStart{}, false
	}
	ev := *r.pending
	r.pending = nil
	r.flushed = true
	return ev, true
}

// BodyMessage synthesizes one body event. last marks the terminal event;
// its MoreBody flag is the negation of last. Body content before Start,
// or after completion, is a protocol violation.
func (r *Response) BodyMessage(chunk []byte, last bool) (proto.ResponseBody, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case awaitingStart:
		return proto.ResponseBody{}, errors.ProtocolViolation("body content before response start")
	case completed:
		return proto.ResponseBody{}, errors.ProtocolViolation("body content after response completed")
	}
	if last {
		r.state = completed
	}
	return proto.ResponseBody{Body: chunk, MoreBody: !last}, nil
}

// Announced reports whether Start has been called.
func (r *Response) Announced() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state != awaitingStart
}

// Completed reports whether the terminal body event was synthesized.
func (r *Response) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == completed
}

// ParseStatus extracts the numeric code from a status line like
// "200 OK". Only the leading digits are read; the reason phrase is
// ignored.
func ParseStatus(status string) (int, error) {
	code := 0
	i := 0
	for ; i < len(status) && status[i] >= '0' && status[i] <= '9'; i++ {
		code = code*10 + int(status[i]-'0')
	}
	if i == 0 {
		return 0, errors.InvalidStatus(status)
	}
	return code, nil
}

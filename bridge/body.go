package bridge

import (
	"bytes"
	"context"
	"io"

	"github.com/gatelink/sync-bridge/proto"
)

// bodyReader feeds the request body to the application lazily: the
// first Read blocks on the worker goroutine until the input channel
// delivers the next body event. A closed channel or cancelled context
// reads as end-of-input, never as an application-visible error.
type bodyReader struct {
	ctx context.Context
	rx  proto.Receiver
	buf bytes.Buffer
	eof bool
}

func newBodyReader(ctx context.Context, rx proto.Receiver) *bodyReader {
	return &bodyReader{ctx: ctx, rx: rx}
}

func (r *bodyReader) Read(p []byte) (int, error) {
	for r.buf.Len() == 0 && !r.eof {
		ev, err := r.rx.Receive(r.ctx)
		if err != nil {
			r.eof = true
			break
		}
		body, ok := ev.(proto.RequestBody)
		if !ok {
			// Non-body input events are not ours to handle.
			continue
		}
		r.buf.Write(body.Body)
		if !body.MoreBody {
			r.eof = true
		}
	}
	if r.buf.Len() == 0 {
		return 0, io.EOF
	}
	return r.buf.Read(p)
}

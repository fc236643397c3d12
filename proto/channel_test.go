package proto

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/gatelink/sync-bridge/errors"
)

func TestPipe_SendReceiveOrder(t *testing.T) {
	ctx := context.Background()
	p := NewPipe(4)

	events := []Event{
		ResponseStart{Status: 200},
		ResponseBody{Body: []byte("a"), MoreBody: true},
		ResponseBody{Body: []byte("b")},
	}
	for _, ev := range events {
		if err := p.Send(ctx, ev); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	for i, want := range events {
		got, err := p.Receive(ctx)
		if err != nil {
			t.Fatalf("receive %d: %v", i, err)
		}
		if got.EventType() != want.EventType() {
			t.Errorf("event %d: got type %q, want %q", i, got.EventType(), want.EventType())
		}
	}
}

func TestPipe_SendAfterClose(t *testing.T) {
	p := NewPipe(1)
	p.Close()
	err := p.Send(context.Background(), RequestBody{})
	if !stderrors.Is(err, errors.ChannelClosed("")) {
		t.Fatalf("send after close: got %v, want channel closed", err)
	}
}

func TestPipe_ReceiveDrainsAfterClose(t *testing.T) {
	ctx := context.Background()
	p := NewPipe(2)
	if err := p.Send(ctx, RequestBody{Body: []byte("tail")}); err != nil {
		t.Fatalf("send: %v", err)
	}
	p.Close()

	ev, err := p.Receive(ctx)
	if err != nil {
		t.Fatalf("receive buffered event after close: %v", err)
	}
	if rb, ok := ev.(RequestBody); !ok || string(rb.Body) != "tail" {
		t.Fatalf("got %#v, want buffered request body", ev)
	}

	if _, err := p.Receive(ctx); !stderrors.Is(err, errors.ChannelClosed("")) {
		t.Fatalf("receive on drained closed pipe: got %v, want channel closed", err)
	}
}

func TestPipe_ReceiveHonorsContext(t *testing.T) {
	p := NewPipe(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Receive(ctx)
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("receive on empty pipe: got %v, want deadline exceeded", err)
	}
}

func TestPipe_CloseIdempotent(t *testing.T) {
	p := NewPipe(0)
	p.Close()
	p.Close() // must not panic
}

func TestScope_Validate(t *testing.T) {
	tests := []struct {
		name    string
		scope   *Scope
		wantErr bool
	}{
		{"valid", &Scope{Protocol: ScopeTypeHTTP, Method: "GET", Path: "/"}, false},
		{"nil", nil, true},
		{"no method", &Scope{Protocol: ScopeTypeHTTP, Path: "/"}, true},
		{"no path", &Scope{Protocol: ScopeTypeHTTP, Method: "GET"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scope.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

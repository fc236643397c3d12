package translate

import (
	stderrors "errors"
	"testing"

	syncbridge "github.com/gatelink/sync-bridge"
	"github.com/gatelink/sync-bridge/errors"
)

func TestResponse_StartOnce(t *testing.T) {
	r := NewResponse()
	headers := []syncbridge.Header{{Name: []byte("X-Colour"), Value: []byte("Blue")}}

	if err := r.Start("200 OK", headers, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	ev, ok := r.TakeStart()
	if !ok {
		t.Fatalf("no pending start event")
	}
	if ev.Status != 200 {
		t.Errorf("status = %d, want 200", ev.Status)
	}
	if len(ev.Headers) != 1 || string(ev.Headers[0].Name) != "X-Colour" || string(ev.Headers[0].Value) != "Blue" {
		t.Errorf("headers = %v", ev.Headers)
	}
	if _, ok := r.TakeStart(); ok {
		t.Errorf("start event handed out twice")
	}
}

func TestResponse_DoubleStartViolation(t *testing.T) {
	r := NewResponse()
	if err := r.Start("200 OK", nil, nil); err != nil {
		t.Fatalf("first start: %v", err)
	}
	err := r.Start("500 Server Error", nil, nil)
	if !stderrors.Is(err, errors.ProtocolViolation("")) {
		t.Fatalf("second start: got %v, want protocol violation", err)
	}
}

func TestResponse_ErrorOverrideBeforeFlush(t *testing.T) {
	r := NewResponse()
	if err := r.Start("200 OK", nil, nil); err != nil {
		t.Fatalf("first start: %v", err)
	}

	exc := stderrors.New("handler blew up")
	if err := r.Start("500 Server Error", nil, exc); err != nil {
		t.Fatalf("override before flush should be accepted: %v", err)
	}

	ev, ok := r.TakeStart()
	if !ok || ev.Status != 500 {
		t.Fatalf("replacement announcement lost: %v ok=%v", ev, ok)
	}
}

func TestResponse_ErrorOverrideAfterFlush(t *testing.T) {
	r := NewResponse()
	if err := r.Start("200 OK", nil, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.TakeStart() // headers now on the wire

	exc := stderrors.New("too late")
	if err := r.Start("500 Server Error", nil, exc); err != exc {
		t.Fatalf("override after flush: got %v, want the override error back", err)
	}
}

func TestResponse_BodyBeforeStart(t *testing.T) {
	r := NewResponse()
	_, err := r.BodyMessage([]byte("early"), false)
	if !stderrors.Is(err, errors.ProtocolViolation("")) {
		t.Fatalf("got %v, want protocol violation", err)
	}
}

func TestResponse_BodyFlags(t *testing.T) {
	r := NewResponse()
	if err := r.Start("200 OK", nil, nil); err != nil {
		t.Fatalf("start: %v", err)
	}

	mid, err := r.BodyMessage([]byte("chunk"), false)
	if err != nil {
		t.Fatalf("mid body: %v", err)
	}
	if !mid.MoreBody {
		t.Errorf("non-terminal event must have MoreBody true")
	}

	last, err := r.BodyMessage(nil, true)
	if err != nil {
		t.Fatalf("terminal body: %v", err)
	}
	if last.MoreBody {
		t.Errorf("terminal event must have MoreBody false")
	}
	if !r.Completed() {
		t.Errorf("state must be completed after terminal event")
	}

	if _, err := r.BodyMessage([]byte("extra"), false); !stderrors.Is(err, errors.ProtocolViolation("")) {
		t.Errorf("body after completion: got %v, want protocol violation", err)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		status  string
		want    int
		wantErr bool
	}{
		{"200 OK", 200, false},
		{"404 Not Found", 404, false},
		{"204", 204, false},
		{"200OK", 200, false},
		{"OK 200", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got, err := ParseStatus(tt.status)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.status, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %d, want %d", tt.status, got, tt.want)
			}
		})
	}
}

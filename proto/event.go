package proto

import syncbridge "github.com/gatelink/sync-bridge"

// Event type tags as they appear on the wire.
const (
	EventRequestBody   = "http.request"
	EventResponseStart = "http.response.start"
	EventResponseBody  = "http.response.body"
)

// Event is one tagged message on a connection channel.
type Event interface {
	// EventType returns the wire tag of the variant.
	EventType() string
}

// RequestBody carries one chunk of the request body. MoreBody false
// marks the final chunk; a request with no body is a single RequestBody
// with empty Body and MoreBody false.
type RequestBody struct {
	Body     []byte
	MoreBody bool
}

func (RequestBody) EventType() string { return EventRequestBody }

// ResponseStart announces status and headers. Sent exactly once per
// request, before any ResponseBody.
type ResponseStart struct {
	Status  int
	Headers []syncbridge.Header
}

func (ResponseStart) EventType() string { return EventResponseStart }

// ResponseBody carries one chunk of the response body. The final event
// of every response is a ResponseBody with MoreBody false; an empty
// response is a single such event with empty Body.
type ResponseBody struct {
	Body     []byte
	MoreBody bool
}

func (ResponseBody) EventType() string { return EventResponseBody }

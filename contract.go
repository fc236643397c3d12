package syncbridge

import "io"

// Header is one name/value pair. Names and values are raw bytes; the
// bridge never reinterprets them in another charset, so they round-trip
// byte-identical between the wire and the application.
type Header struct {
	Name  []byte
	Value []byte
}

// Environ is the per-request environment mapping handed to the
// application. Keys follow the CGI convention (REQUEST_METHOD,
// PATH_INFO, HTTP_*); bridge metadata lives under the "bridge." keys.
// Exactly one Environ is built per request and never reused.
type Environ map[string]any

// Well-known Environ keys.
const (
	EnvRequestMethod  = "REQUEST_METHOD"
	EnvScriptName     = "SCRIPT_NAME"
	EnvPathInfo       = "PATH_INFO"
	EnvQueryString    = "QUERY_STRING"
	EnvServerProtocol = "SERVER_PROTOCOL"
	EnvServerName     = "SERVER_NAME"
	EnvServerPort     = "SERVER_PORT"
	EnvRemoteAddr     = "REMOTE_ADDR"
	EnvRemotePort     = "REMOTE_PORT"
	EnvContentType    = "CONTENT_TYPE"
	EnvContentLength  = "CONTENT_LENGTH"

	EnvBridgeVersion      = "bridge.version"
	EnvBridgeURLScheme    = "bridge.url_scheme"
	EnvBridgeInput        = "bridge.input"
	EnvBridgeErrors       = "bridge.errors"
	EnvBridgeMultithread  = "bridge.multithread"
	EnvBridgeMultiprocess = "bridge.multiprocess"
	EnvBridgeRunOnce      = "bridge.run_once"
)

// Input returns the request body reader from the environ, or nil if the
// environ was not built by the translator.
func (e Environ) Input() io.Reader {
	r, _ := e[EnvBridgeInput].(io.Reader)
	return r
}

// Get returns the string value for key, or empty when absent or not a
// string.
func (e Environ) Get(key string) string {
	s, _ := e[key].(string)
	return s
}

// StartResponse announces the response status line ("<code> <reason>")
// and headers. It must be called exactly once before the application
// produces body content.
//
// exc carries an error override: a second call is permitted while no
// start message has been flushed to the wire, provided exc is non-nil;
// the replacement status and headers win. Once output has started, a
// call with exc returns that error and the request is torn down.
type StartResponse func(status string, headers []Header, exc error) error

// Body produces response chunks in emission order. Next returns io.EOF
// after the final chunk. A nil Body means an empty response.
//
// The bridge copies each chunk and holds it until the following Next
// call reveals whether it was the last, so implementations may reuse
// their buffer, and each emitted chunk trails the application's
// production of the next one by one call. Applications that need a
// chunk on the wire immediately should not rely on emission happening
// inside the Next call that produced it.
type Body interface {
	Next() ([]byte, error)
}

// Application is the blocking call contract. Serve may block freely:
// the bridge runs it on a worker, never on the runtime's scheduler.
type Application interface {
	Serve(env Environ, start StartResponse) (Body, error)
}

// ApplicationFunc adapts a plain function to Application.
type ApplicationFunc func(env Environ, start StartResponse) (Body, error)

func (f ApplicationFunc) Serve(env Environ, start StartResponse) (Body, error) {
	return f(env, start)
}

// chunkBody iterates over a fixed slice of chunks.
type chunkBody struct {
	chunks [][]byte
	next   int
}

func (b *chunkBody) Next() ([]byte, error) {
	if b.next >= len(b.chunks) {
		return nil, io.EOF
	}
	c := b.chunks[b.next]
	b.next++
	return c, nil
}

// Chunks returns a Body that yields the given chunks in order. Chunk
// boundaries are preserved one-to-one in the output message stream.
func Chunks(chunks ...[]byte) Body {
	return &chunkBody{chunks: chunks}
}

// BodyFunc adapts a pull function to Body. The function returns io.EOF
// when exhausted.
type BodyFunc func() ([]byte, error)

func (f BodyFunc) Next() ([]byte, error) { return f() }

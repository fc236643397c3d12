package proto

import (
	syncbridge "github.com/gatelink/sync-bridge"
	"github.com/gatelink/sync-bridge/errors"
)

// ScopeTypeHTTP is the only protocol kind the bridge serves.
const ScopeTypeHTTP = "http"

// Addr is one endpoint of the connection.
type Addr struct {
	Host string
	Port int
}

// Scope describes one incoming request. The runtime creates it at
// connection start; the bridge treats it as read-only for the lifetime
// of the request. Header names arrive lowercased and may repeat.
type Scope struct {
	Protocol    string // protocol kind, "http" for request/response
	HTTPVersion string // "1.0", "1.1", "2"
	Method      string
	Path        string
	RootPath    string // mount prefix, usually empty
	Scheme      string // "http" or "https", defaults to "http"
	QueryString []byte // raw query bytes, not re-encoded
	Headers     []syncbridge.Header
	Client      *Addr
	Server      *Addr
}

// Validate reports whether the scope carries the fields every request
// needs. Protocol kind checking is the translator's job, not Validate's.
func (s *Scope) Validate() error {
	if s == nil {
		return errors.InvalidScope("nil scope")
	}
	if s.Method == "" {
		return errors.InvalidScope("missing method")
	}
	if s.Path == "" {
		return errors.InvalidScope("missing path")
	}
	return nil
}

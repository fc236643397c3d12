package translate

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	syncbridge "github.com/gatelink/sync-bridge"
	"github.com/gatelink/sync-bridge/errors"
	"github.com/gatelink/sync-bridge/proto"
)

// headerKey derives the environ key for a header name: upper-cased,
// dashes to underscores, HTTP_ prefix. content-type and content-length
// map to their unprefixed CGI keys instead.
func headerKey(name []byte) string {
	lower := string(bytes.ToLower(name))
	switch lower {
	case "content-type":
		return syncbridge.EnvContentType
	case "content-length":
		return syncbridge.EnvContentLength
	}
	return "HTTP_" + strings.ToUpper(strings.ReplaceAll(lower, "-", "_"))
}

// BuildEnviron constructs the one-per-request environ mapping from a
// connection scope. body yields the request body on demand and may block
// the calling goroutine only. errOut receives application error output;
// nil means discard.
//
// Header values are converted with a direct byte-to-string conversion,
// which preserves arbitrary header bytes exactly. Repeated headers are
// joined with a comma into one value. The query string passes through
// without re-encoding.
func BuildEnviron(scope *proto.Scope, body io.Reader, errOut io.Writer) (syncbridge.Environ, error) {
	if scope == nil {
		return nil, errors.InvalidScope("nil scope")
	}
	if scope.Protocol != proto.ScopeTypeHTTP {
		return nil, errors.UnsupportedProtocol(scope.Protocol)
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	if errOut == nil {
		errOut = io.Discard
	}

	root := scope.RootPath
	path := scope.Path
	if root != "" {
		path = strings.TrimPrefix(path, root)
		if path == "" {
			path = "/"
		}
	}

	scheme := scope.Scheme
	if scheme == "" {
		scheme = "http"
	}

	env := syncbridge.Environ{
		syncbridge.EnvRequestMethod:  scope.Method,
		syncbridge.EnvScriptName:     root,
		syncbridge.EnvPathInfo:       path,
		syncbridge.EnvQueryString:    string(scope.QueryString),
		syncbridge.EnvServerProtocol: "HTTP/" + scope.HTTPVersion,

		syncbridge.EnvBridgeVersion:      [2]int{1, 0},
		syncbridge.EnvBridgeURLScheme:    scheme,
		syncbridge.EnvBridgeInput:        body,
		syncbridge.EnvBridgeErrors:       errOut,
		syncbridge.EnvBridgeMultithread:  true,
		syncbridge.EnvBridgeMultiprocess: false,
		syncbridge.EnvBridgeRunOnce:      false,
	}

	if scope.Server != nil {
		env[syncbridge.EnvServerName] = scope.Server.Host
		env[syncbridge.EnvServerPort] = strconv.Itoa(scope.Server.Port)
	} else {
		env[syncbridge.EnvServerName] = "localhost"
		env[syncbridge.EnvServerPort] = "80"
	}
	if scope.Client != nil {
		env[syncbridge.EnvRemoteAddr] = scope.Client.Host
		env[syncbridge.EnvRemotePort] = strconv.Itoa(scope.Client.Port)
	}

	for _, h := range scope.Headers {
		key := headerKey(h.Name)
		value := string(h.Value)
		if prev, ok := env[key].(string); ok {
			value = prev + "," + value
		}
		env[key] = value
	}

	return env, nil
}

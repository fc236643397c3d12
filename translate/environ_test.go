package translate

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	syncbridge "github.com/gatelink/sync-bridge"
	"github.com/gatelink/sync-bridge/errors"
	"github.com/gatelink/sync-bridge/proto"
)

func testScope() *proto.Scope {
	return &proto.Scope{
		Protocol:    proto.ScopeTypeHTTP,
		HTTPVersion: "1.1",
		Method:      "GET",
		Path:        "/foo/",
		QueryString: []byte("bar=baz"),
		Headers: []syncbridge.Header{
			{Name: []byte("test-header"), Value: []byte("test value")},
		},
		Client: &proto.Addr{Host: "10.0.0.7", Port: 51234},
		Server: &proto.Addr{Host: "example.com", Port: 8080},
	}
}

func TestBuildEnviron_RequestLine(t *testing.T) {
	env, err := BuildEnviron(testScope(), strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("build environ: %v", err)
	}

	want := map[string]string{
		syncbridge.EnvRequestMethod:  "GET",
		syncbridge.EnvPathInfo:       "/foo/",
		syncbridge.EnvScriptName:     "",
		syncbridge.EnvQueryString:    "bar=baz",
		syncbridge.EnvServerProtocol: "HTTP/1.1",
		syncbridge.EnvServerName:     "example.com",
		syncbridge.EnvServerPort:     "8080",
		syncbridge.EnvRemoteAddr:     "10.0.0.7",
		syncbridge.EnvRemotePort:     "51234",
	}
	for k, v := range want {
		if got := env.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestBuildEnviron_HeaderMapping(t *testing.T) {
	scope := testScope()
	scope.Headers = []syncbridge.Header{
		{Name: []byte("content-type"), Value: []byte("text/plain")},
		{Name: []byte("content-length"), Value: []byte("12")},
		{Name: []byte("x-colour"), Value: []byte("Blue")},
		{Name: []byte("accept"), Value: []byte("text/html")},
		{Name: []byte("accept"), Value: []byte("application/json")},
	}

	env, err := BuildEnviron(scope, strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("build environ: %v", err)
	}

	if got := env.Get(syncbridge.EnvContentType); got != "text/plain" {
		t.Errorf("CONTENT_TYPE = %q", got)
	}
	if got := env.Get(syncbridge.EnvContentLength); got != "12" {
		t.Errorf("CONTENT_LENGTH = %q", got)
	}
	if _, ok := env["HTTP_CONTENT_TYPE"]; ok {
		t.Errorf("content-type must not get the HTTP_ prefix")
	}
	if got := env.Get("HTTP_X_COLOUR"); got != "Blue" {
		t.Errorf("HTTP_X_COLOUR = %q", got)
	}
	if got := env.Get("HTTP_ACCEPT"); got != "text/html,application/json" {
		t.Errorf("repeated header join: HTTP_ACCEPT = %q", got)
	}
}

// A repeated header joins on presence, so an empty first value still
// contributes its comma.
func TestBuildEnviron_RepeatedHeaderEmptyFirstValue(t *testing.T) {
	scope := testScope()
	scope.Headers = []syncbridge.Header{
		{Name: []byte("x-flag"), Value: nil},
		{Name: []byte("x-flag"), Value: []byte("on")},
	}

	env, err := BuildEnviron(scope, strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("build environ: %v", err)
	}
	if got := env.Get("HTTP_X_FLAG"); got != ",on" {
		t.Errorf("HTTP_X_FLAG = %q, want %q", got, ",on")
	}
}

func TestBuildEnviron_HeaderBytesPreserved(t *testing.T) {
	// Bytes above 0x7f must survive the round trip untouched.
	raw := []byte{0x66, 0x6f, 0x6f, 0xe9, 0xff, 0x01}
	scope := testScope()
	scope.Headers = []syncbridge.Header{{Name: []byte("x-raw"), Value: raw}}

	env, err := BuildEnviron(scope, strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("build environ: %v", err)
	}
	if got := env.Get("HTTP_X_RAW"); !bytes.Equal([]byte(got), raw) {
		t.Errorf("header bytes corrupted: got %x, want %x", got, raw)
	}
}

func TestBuildEnviron_BridgeMetadata(t *testing.T) {
	scope := testScope()
	scope.Scheme = "https"
	body := strings.NewReader("payload")

	env, err := BuildEnviron(scope, body, nil)
	if err != nil {
		t.Fatalf("build environ: %v", err)
	}

	if env.Input() != body {
		t.Errorf("input reader not threaded through")
	}
	if got := env[syncbridge.EnvBridgeURLScheme]; got != "https" {
		t.Errorf("url scheme = %v", got)
	}
	if got := env[syncbridge.EnvBridgeMultithread]; got != true {
		t.Errorf("multithread = %v, want true", got)
	}
	if got := env[syncbridge.EnvBridgeMultiprocess]; got != false {
		t.Errorf("multiprocess = %v, want false", got)
	}
	if got := env[syncbridge.EnvBridgeRunOnce]; got != false {
		t.Errorf("run_once = %v, want false", got)
	}
	if env[syncbridge.EnvBridgeErrors] == nil {
		t.Errorf("error sink missing")
	}
}

func TestBuildEnviron_RootPath(t *testing.T) {
	scope := testScope()
	scope.RootPath = "/app"
	scope.Path = "/app/users"

	env, err := BuildEnviron(scope, strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("build environ: %v", err)
	}
	if got := env.Get(syncbridge.EnvScriptName); got != "/app" {
		t.Errorf("SCRIPT_NAME = %q", got)
	}
	if got := env.Get(syncbridge.EnvPathInfo); got != "/users" {
		t.Errorf("PATH_INFO = %q", got)
	}
}

func TestBuildEnviron_UnsupportedProtocol(t *testing.T) {
	scope := testScope()
	scope.Protocol = "websocket"

	_, err := BuildEnviron(scope, strings.NewReader(""), nil)
	if !stderrors.Is(err, errors.UnsupportedProtocol("")) {
		t.Fatalf("got %v, want unsupported protocol", err)
	}
}

func TestBuildEnviron_DefaultServer(t *testing.T) {
	scope := testScope()
	scope.Server = nil

	env, err := BuildEnviron(scope, strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("build environ: %v", err)
	}
	if env.Get(syncbridge.EnvServerName) != "localhost" || env.Get(syncbridge.EnvServerPort) != "80" {
		t.Errorf("server defaults: name=%q port=%q", env.Get(syncbridge.EnvServerName), env.Get(syncbridge.EnvServerPort))
	}
}

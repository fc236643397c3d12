package wasmapp

import (
	"bytes"
	"io"
	"sort"
	"strings"

	syncbridge "github.com/gatelink/sync-bridge"
	"github.com/gatelink/sync-bridge/errors"
)

const crlf = "\r\n"

// EncodeRequest renders an environ as the guest request frame: request
// line, headers in stable order, blank line, body.
func EncodeRequest(env syncbridge.Environ) ([]byte, error) {
	method := env.Get(syncbridge.EnvRequestMethod)
	if method == "" {
		return nil, errors.GuestABI("request frame: environ has no method", nil)
	}

	target := env.Get(syncbridge.EnvScriptName) + env.Get(syncbridge.EnvPathInfo)
	if target == "" {
		target = "/"
	}
	if qs := env.Get(syncbridge.EnvQueryString); qs != "" {
		target += "?" + qs
	}

	var b bytes.Buffer
	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(target)
	b.WriteString(crlf)

	if ct := env.Get(syncbridge.EnvContentType); ct != "" {
		b.WriteString("content-type: " + ct + crlf)
	}
	if cl := env.Get(syncbridge.EnvContentLength); cl != "" {
		b.WriteString("content-length: " + cl + crlf)
	}

	// Environ maps iterate in random order; guests deserve stable input.
	var keys []string
	for k := range env {
		if strings.HasPrefix(k, "HTTP_") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(k, "HTTP_"), "_", "-"))
		b.WriteString(name + ": " + env.Get(k) + crlf)
	}

	b.WriteString(crlf)
	if in := env.Input(); in != nil {
		if _, err := io.Copy(&b, in); err != nil {
			return nil, errors.GuestABI("request frame: read body", err)
		}
	}
	return b.Bytes(), nil
}

// Response is a parsed guest response frame.
type Response struct {
	Status  string // status line, e.g. "200 OK"
	Headers []syncbridge.Header
	Body    []byte
}

// ParseResponse splits a guest response frame into status line, headers
// and body.
func ParseResponse(frame []byte) (*Response, error) {
	head, body, found := bytes.Cut(frame, []byte(crlf+crlf))
	if !found {
		return nil, errors.GuestABI("response frame: missing header terminator", nil)
	}

	lines := bytes.Split(head, []byte(crlf))
	status := string(bytes.TrimSpace(lines[0]))
	if status == "" {
		return nil, errors.GuestABI("response frame: empty status line", nil)
	}

	resp := &Response{Status: status}
	for _, line := range lines[1:] {
		if len(line) == 0 {
			continue
		}
		name, value, ok := bytes.Cut(line, []byte(":"))
		if !ok {
			return nil, errors.GuestABI("response frame: malformed header line "+string(line), nil)
		}
		resp.Headers = append(resp.Headers, syncbridge.Header{
			Name:  bytes.TrimSpace(name),
			Value: bytes.TrimSpace(value),
		})
	}
	resp.Body = body
	return resp, nil
}

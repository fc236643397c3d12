package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	syncbridge "github.com/gatelink/sync-bridge"
	"github.com/gatelink/sync-bridge/bridge"
	"github.com/gatelink/sync-bridge/config"
	"github.com/gatelink/sync-bridge/proto"
	"github.com/gatelink/sync-bridge/wasmapp"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to guest wasm module (omit for the built-in echo app)")
		method      = flag.String("method", "GET", "Request method")
		path        = flag.String("path", "/", "Request path")
		query       = flag.String("query", "", "Raw query string")
		headers     = flag.String("header", "", "Request headers (name:value,name2:value2)")
		body        = flag.String("body", "", "Request body")
		configPath  = flag.String("config", "", "Path to YAML config file")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if err := runInteractive(*wasmFile, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *configPath, *method, *path, *query, *headers, *body); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(wasmFile, configPath, method, path, query, headerStr, body string) error {
	ctx := context.Background()

	b, cleanup, err := buildBridge(ctx, wasmFile, configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	scope := buildScope(method, path, query, headerStr)
	lines, err := dispatch(ctx, b, scope, []byte(body))
	for _, line := range lines {
		fmt.Println(line)
	}
	return err
}

// buildBridge assembles the bridge from config and the chosen
// application. cleanup releases the guest runtime when one was loaded.
func buildBridge(ctx context.Context, wasmFile, configPath string) (*bridge.Bridge, func(), error) {
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.Logging.BuildLogger()
	if err != nil {
		return nil, nil, err
	}
	bridge.SetLogger(logger)

	cleanup := func() { _ = logger.Sync() }
	var app syncbridge.Application
	if wasmFile != "" {
		data, err := os.ReadFile(wasmFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read guest module: %w", err)
		}
		guest, err := wasmapp.Load(ctx, data)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			_ = guest.Close(ctx)
			_ = logger.Sync()
		}
		app = guest
	} else {
		app = echoApp()
	}

	pool := bridge.NewPool(bridge.PoolConfig{
		Size:          cfg.Pool.Size,
		RatePerSecond: cfg.Pool.RatePerSecond,
		Burst:         cfg.Pool.Burst,
	})
	return bridge.New(app, bridge.Config{Pool: pool, ErrorOutput: os.Stderr}), cleanup, nil
}

// dispatch runs one request through the bridge and returns the output
// transcript.
func dispatch(ctx context.Context, b *bridge.Bridge, scope *proto.Scope, body []byte) ([]string, error) {
	in := proto.NewPipe(4)
	out := proto.NewPipe(64)

	if err := in.Send(ctx, proto.RequestBody{Body: body}); err != nil {
		return nil, err
	}

	var lines []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			ev, err := out.Receive(ctx)
			if err != nil {
				return
			}
			lines = append(lines, formatEvent(ev))
		}
	}()

	err := b.Serve(ctx, scope, in, out)
	out.Close()
	<-done
	return lines, err
}

func buildScope(method, path, query, headerStr string) *proto.Scope {
	return &proto.Scope{
		Protocol:    proto.ScopeTypeHTTP,
		HTTPVersion: "1.1",
		Method:      strings.ToUpper(method),
		Path:        path,
		QueryString: []byte(query),
		Headers:     parseHeaders(headerStr),
		Client:      &proto.Addr{Host: "127.0.0.1", Port: 0},
		Server:      &proto.Addr{Host: "localhost", Port: 80},
	}
}

func parseHeaders(s string) []syncbridge.Header {
	var hs []syncbridge.Header
	for _, pair := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		hs = append(hs, syncbridge.Header{
			Name:  []byte(strings.ToLower(strings.TrimSpace(name))),
			Value: []byte(strings.TrimSpace(value)),
		})
	}
	return hs
}

func formatEvent(ev proto.Event) string {
	switch e := ev.(type) {
	case proto.ResponseStart:
		var b strings.Builder
		fmt.Fprintf(&b, "<- %s status=%d", e.EventType(), e.Status)
		for _, h := range e.Headers {
			fmt.Fprintf(&b, "\n     %s: %s", h.Name, h.Value)
		}
		return b.String()
	case proto.ResponseBody:
		return fmt.Sprintf("<- %s more=%v body=%q", e.EventType(), e.MoreBody, e.Body)
	default:
		return fmt.Sprintf("<- %s", ev.EventType())
	}
}

// echoApp is the built-in demo application: it echoes the request line
// and body back to the caller.
func echoApp() syncbridge.Application {
	return syncbridge.ApplicationFunc(func(env syncbridge.Environ, start syncbridge.StartResponse) (syncbridge.Body, error) {
		payload, err := io.ReadAll(env.Input())
		if err != nil {
			return nil, err
		}
		err = start("200 OK", []syncbridge.Header{
			{Name: []byte("Content-Type"), Value: []byte("text/plain")},
		}, nil)
		if err != nil {
			return nil, err
		}
		summary := fmt.Sprintf("%s %s\n", env.Get(syncbridge.EnvRequestMethod), env.Get(syncbridge.EnvPathInfo))
		if len(payload) == 0 {
			return syncbridge.Chunks([]byte(summary)), nil
		}
		return syncbridge.Chunks([]byte(summary), payload), nil
	})
}

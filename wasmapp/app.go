package wasmapp

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	syncbridge "github.com/gatelink/sync-bridge"
	"github.com/gatelink/sync-bridge/errors"
)

// App is a syncbridge.Application backed by a WebAssembly guest module.
// One App serializes guest calls: the guest owns a single linear memory,
// so concurrent requests take turns. Share the bridge's worker pool
// across several App instances for parallelism.
type App struct {
	runtime wazero.Runtime
	module  api.Module
	alloc   api.Function
	handle  api.Function
	mu      sync.Mutex
}

// Load compiles and instantiates a guest module and checks its export
// contract. The returned App must be closed when no longer needed.
func Load(ctx context.Context, wasmBytes []byte) (*App, error) {
	r := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	mod, err := r.Instantiate(ctx, wasmBytes)
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.GuestABI("instantiate guest module", err)
	}

	alloc := mod.ExportedFunction("alloc")
	handle := mod.ExportedFunction("handle")
	if alloc == nil || handle == nil {
		_ = r.Close(ctx)
		return nil, errors.GuestABI("guest must export alloc(u32)->u32 and handle(u32,u32)->u64", nil)
	}
	if mod.Memory() == nil {
		_ = r.Close(ctx)
		return nil, errors.GuestABI("guest must export its linear memory", nil)
	}

	return &App{runtime: r, module: mod, alloc: alloc, handle: handle}, nil
}

// Close releases the guest runtime.
func (a *App) Close(ctx context.Context) error {
	return a.runtime.Close(ctx)
}

// Serve implements syncbridge.Application: it frames the request into
// guest memory, invokes handle, and announces the parsed response.
//
// The Application contract carries no context, so guest calls run under
// context.Background and cannot be interrupted once started. A runaway
// guest holds its worker slot until it returns or traps; bound the
// damage with the pool size, or close the App to tear the runtime down.
func (a *App) Serve(env syncbridge.Environ, start syncbridge.StartResponse) (syncbridge.Body, error) {
	req, err := EncodeRequest(env)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ctx := context.Background()
	mem := a.module.Memory()

	ptrRes, err := a.alloc.Call(ctx, uint64(len(req)))
	if err != nil || len(ptrRes) == 0 {
		return nil, errors.GuestABI("guest alloc call", err)
	}
	ptr := uint32(ptrRes[0])
	if !mem.Write(ptr, req) {
		return nil, errors.GuestABI("request frame exceeds guest memory", nil)
	}

	out, err := a.handle.Call(ctx, uint64(ptr), uint64(len(req)))
	if err != nil {
		// The guest trapped: that is the application failing, not the ABI.
		return nil, errors.ApplicationFailed(err)
	}
	if len(out) == 0 {
		return nil, errors.GuestABI("guest handle returned no result", nil)
	}

	packed := out[0]
	respPtr := uint32(packed >> 32)
	respLen := uint32(packed)
	raw, ok := mem.Read(respPtr, respLen)
	if !ok {
		return nil, errors.GuestABI("guest response frame out of bounds", nil)
	}
	// The guest may reuse its memory on the next call.
	frame := make([]byte, len(raw))
	copy(frame, raw)

	resp, err := ParseResponse(frame)
	if err != nil {
		return nil, err
	}
	if err := start(resp.Status, resp.Headers, nil); err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, nil
	}
	return syncbridge.Chunks(resp.Body), nil
}

// Package bridge executes a blocking synchronous application off the
// message runtime's critical path.
//
// A Bridge owns no per-request state: Serve builds one environ, admits
// the call through a shared worker Pool, and streams the application's
// output back onto the connection's Sender in production order. Errors
// escaping the application are caught at the worker boundary and
// terminate only the offending request.
//
//	pool := bridge.NewPool(bridge.PoolConfig{Size: 128})
//	b := bridge.New(app, bridge.Config{Pool: pool})
//	err := b.Serve(ctx, scope, rx, tx)
package bridge

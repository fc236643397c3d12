// Package syncbridge lets a blocking, call-and-return application run
// inside a runtime that speaks an asynchronous, message-based request
// protocol.
//
// The root package holds only the application-side contract. An
// application receives one environ mapping and one callback for
// announcing status and headers, then produces its body as an ordered
// sequence of byte chunks:
//
//	app := syncbridge.ApplicationFunc(func(env syncbridge.Environ, start syncbridge.StartResponse) (syncbridge.Body, error) {
//	    if err := start("200 OK", []syncbridge.Header{{Name: []byte("X-Colour"), Value: []byte("Blue")}}, nil); err != nil {
//	        return nil, err
//	    }
//	    return syncbridge.Chunks([]byte("hello")), nil
//	})
//
// The subpackages do the actual bridging:
//
//	proto      message-protocol data model and channel pair
//	translate  environ construction and response message synthesis
//	bridge     worker execution of the application over a channel pair
//	errors     structured error taxonomy shared by all packages
//	metrics    Prometheus instrumentation for the bridge
//	config     YAML configuration for the cmd tooling
//	wasmapp    WebAssembly-guest implementation of Application
//	bridgetest scripted-message harness for testing applications
package syncbridge

// Package wasmapp runs a sandboxed WebAssembly guest as a synchronous
// application.
//
// The guest contract is a fixed byte-in/byte-out ABI on a core module:
//
//	alloc(size: u32) -> u32            reserve guest memory for the request
//	handle(ptr: u32, len: u32) -> u64  process one request frame; the
//	                                   result packs the response frame
//	                                   address (high 32 bits) and length
//	                                   (low 32 bits)
//
// Frames are plain text: a request line, one header per line, a blank
// line, then the body. The response frame opens with the status line
// ("200 OK"). Guests compiled against WASI preview1 work out of the box;
// the snapshot host module is always instantiated.
package wasmapp

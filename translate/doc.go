// Package translate maps between the two protocols: it builds the
// synchronous call environ from a connection scope plus a body reader,
// and turns the application's status/header announcement and body chunks
// into ordered output events.
//
// Each request owns one Response value, a small state machine:
//
//	AwaitingStart -> HeadersSent -> (streaming) -> Completed
//
// The start event is synthesized when the application announces the
// response but is flushed to the wire lazily, just before the first body
// event. That window is what permits the error-override second call to
// Start (see syncbridge.StartResponse).
package translate

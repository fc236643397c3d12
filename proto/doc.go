// Package proto defines the message-protocol side of the bridge: the
// per-request connection scope, the tagged event variants exchanged over
// one connection, and the Sender/Receiver channel-pair abstraction the
// surrounding runtime provides.
//
// Per request the wire carries, in order:
//
//	in:  Scope descriptor, then zero or more RequestBody events
//	out: exactly one ResponseStart, then N >= 1 ResponseBody events,
//	     MoreBody true on all but the last
//
// Pipe is an in-memory channel pair used by tests and the bridgetest
// harness; real runtimes supply their own Sender/Receiver backed by a
// transport.
package proto

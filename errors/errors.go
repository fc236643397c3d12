package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in request processing the error occurred
type Phase string

const (
	PhaseTranslate Phase = "translate" // scope/environ/message mapping
	PhaseExecute   Phase = "execute"   // application invocation
	PhaseChannel   Phase = "channel"   // message channel send/receive
	PhaseConfig    Phase = "config"    // configuration loading
	PhaseGuest     Phase = "guest"     // wasm guest loading and calls
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedProtocol Kind = "unsupported_protocol"
	KindProtocolViolation   Kind = "protocol_violation"
	KindApplicationError    Kind = "application_error"
	KindChannelClosed       Kind = "channel_closed"
	KindInvalidScope        Kind = "invalid_scope"
	KindInvalidStatus       Kind = "invalid_status"
	KindInvalidConfig       Kind = "invalid_config"
	KindGuestABI            Kind = "guest_abi"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two *Error values match
// when their Phase and Kind agree, which lets callers test against the
// constructors without caring about Detail text.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for the bridge error taxonomy

// UnsupportedProtocol reports a connection scope whose protocol kind the
// bridge cannot serve.
func UnsupportedProtocol(protocol string) *Error {
	return &Error{
		Phase:  PhaseTranslate,
		Kind:   KindUnsupportedProtocol,
		Detail: fmt.Sprintf("protocol %q is not an HTTP request scope", protocol),
		Value:  protocol,
	}
}

// ProtocolViolation reports a broken application-side contract, such as
// announcing the response twice or after body content has started.
func ProtocolViolation(detail string) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindProtocolViolation,
		Detail: detail,
	}
}

// ApplicationFailed wraps an error (or recovered panic) that escaped the
// application call.
func ApplicationFailed(cause error) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindApplicationError,
		Detail: "application call failed",
		Cause:  cause,
	}
}

// ChannelClosed reports a send or receive on a closed message channel.
// Expected under normal disconnect races; callers usually drop it.
func ChannelClosed(op string) *Error {
	return &Error{
		Phase:  PhaseChannel,
		Kind:   KindChannelClosed,
		Detail: op,
	}
}

// InvalidScope reports a scope descriptor missing required fields.
func InvalidScope(detail string) *Error {
	return &Error{
		Phase:  PhaseTranslate,
		Kind:   KindInvalidScope,
		Detail: detail,
	}
}

// InvalidStatus reports a status line whose leading digits do not parse.
func InvalidStatus(status string) *Error {
	return &Error{
		Phase:  PhaseTranslate,
		Kind:   KindInvalidStatus,
		Detail: fmt.Sprintf("status line %q has no leading status code", status),
		Value:  status,
	}
}

// InvalidConfig reports an unusable configuration value.
func InvalidConfig(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidConfig,
		Detail: detail,
		Cause:  cause,
	}
}

// GuestABI reports a wasm guest module that does not satisfy the
// expected export contract.
func GuestABI(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseGuest,
		Kind:   KindGuestABI,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with phase/kind context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

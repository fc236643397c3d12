// Package errors provides structured error types for the bridge.
//
// Errors are categorized by Phase (where in request processing the error
// occurred) and Kind (error category). Matching with the standard
// library's errors.Is compares Phase and Kind only, so callers test
// against the constructors:
//
//	if errors.Is(err, bridgeerrors.ChannelClosed("")) {
//	    return nil // peer went away, drop the output
//	}
//
// The taxonomy is small and closed: unsupported protocol scopes and
// invalid status lines fail during translation, contract breaches and
// escaped application errors fail during execution, and closed channels
// surface from the channel phase.
package errors

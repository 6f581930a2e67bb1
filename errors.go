package sash

import "fmt"

// ConfigurationError reports an invalid Config at construction time.
// Construction fails before any rendering; there is no partially-built state.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("sash: invalid config: %s: %s", e.Field, e.Reason)
}

// RenderCallbackError reports a failure inside a caller-supplied render
// callback for a single item. The failing node is cleared and the pass
// continues with the remaining items.
type RenderCallbackError struct {
	Index int
	Cause any // error returned or panic value recovered
}

func (e *RenderCallbackError) Error() string {
	return fmt.Sprintf("sash: render callback failed for item %d: %v", e.Index, e.Cause)
}

// Unwrap exposes the cause when it was an error.
func (e *RenderCallbackError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// HostUnavailableError reports that the host could not supply a node this
// pass. The affected index is skipped and retried on the next pass.
type HostUnavailableError struct {
	Op  string
	Err error
}

func (e *HostUnavailableError) Error() string {
	return fmt.Sprintf("sash: host unavailable during %s: %v", e.Op, e.Err)
}

func (e *HostUnavailableError) Unwrap() error {
	return e.Err
}

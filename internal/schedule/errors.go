package schedule

import (
	"errors"
	"fmt"
)

// ErrNotConnected indicates that no usable calendar credential is available.
// The remedy is the out-of-band reconnect flow; callers should not retry.
var ErrNotConnected = errors.New("calendar not connected")

// ErrSlotTaken indicates that the requested slot was claimed between the
// client's availability check and the booking commit. The caller must
// re-query availability and resubmit; the engine never retries on its own.
var ErrSlotTaken = errors.New("slot no longer available")

// ValidationError reports a missing or malformed booking request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("missing required field %s", e.Field)
}

// ProviderError wraps a failure from the external calendar provider. It is
// surfaced as-is without internal retries; whether resubmission makes sense
// is the caller's decision.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("calendar provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

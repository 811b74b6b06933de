package domain

import "errors"

// ErrStockConflict signals that a guarded stock decrement matched no
// document: either the warehouse vanished or a concurrent submission
// consumed the stock first.
var ErrStockConflict = errors.New("warehouse stock changed concurrently")

// Severity levels for business rejections
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// BusinessError is a structurally valid order that cannot be fulfilled.
// It carries its classification as plain data so callers can match on
// kind and retryability instead of inspecting error types.
type BusinessError struct {
	Kind      RejectionKind
	Reason    string
	Severity  string
	Retryable bool
}

func (e *BusinessError) Error() string {
	return e.Reason
}

// NewBusinessError builds a rejection from a kind and reason. Stock races
// are the only retryable rejection: the caller can simply resubmit.
func NewBusinessError(kind RejectionKind, reason string) *BusinessError {
	severity := SeverityInfo
	retryable := false
	if kind == RejectionStockRace {
		severity = SeverityWarning
		retryable = true
	}
	return &BusinessError{
		Kind:      kind,
		Reason:    reason,
		Severity:  severity,
		Retryable: retryable,
	}
}

// AsBusinessError unwraps a BusinessError if err carries one
func AsBusinessError(err error) (*BusinessError, bool) {
	var bizErr *BusinessError
	if errors.As(err, &bizErr) {
		return bizErr, true
	}
	return nil, false
}

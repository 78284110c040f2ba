package processor

import (
	"fmt"

	"github.com/pkg/errors"
)

// InternalError is returned when a verified event cannot be processed.
type InternalError struct {
	Cause error
}

func (m *InternalError) Error() string {
	return fmt.Sprintf("processor error: %v", m.Cause)
}

func (m *InternalError) Unwrap() error {
	return m.Cause
}

func NewInternalError(format string, args ...any) error {
	return &InternalError{Cause: errors.Errorf(format, args...)}
}

package pipeline

import (
	"errors"
	"fmt"
)

// ErrMissingName is reported for locations submitted without a name
var ErrMissingName = errors.New("location name is required")

// LocationProcessingError wraps an unexpected failure while processing one location
type LocationProcessingError struct {
	Location string
	Err      error
}

func (e *LocationProcessingError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("process location: %v", e.Err)
	}
	return fmt.Sprintf("process location %s: %v", e.Location, e.Err)
}

func (e *LocationProcessingError) Unwrap() error {
	return e.Err
}

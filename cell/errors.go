package cell

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCell is the sentinel matched by every *InvalidCellError.
	ErrInvalidCell = errors.New("invalid cell")

	// ErrInvalidResolution is returned for resolutions outside 0..15.
	ErrInvalidResolution = errors.New("invalid resolution")
)

// InvalidCellError reports a value that is not a well-formed cell index.
//
// errors.Is(err, ErrInvalidCell) holds for every InvalidCellError.
type InvalidCellError struct {
	// Value is the offending 64-bit value.
	Value uint64
	// Input is the textual form the value was parsed from, if any.
	Input  string
	Reason string
	cause  error
}

func (e *InvalidCellError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("invalid cell %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid cell %#x: %s", e.Value, e.Reason)
}

func (e *InvalidCellError) Unwrap() error { return e.cause }

// Is reports whether target is ErrInvalidCell.
func (e *InvalidCellError) Is(target error) bool { return target == ErrInvalidCell }

// ValidateResolution returns ErrInvalidResolution if res is outside 0..15.
func ValidateResolution(res int) error {
	if res < 0 || res > MaxResolution {
		return fmt.Errorf("%w: %d", ErrInvalidResolution, res)
	}
	return nil
}

package models

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every stage of a run. Call sites wrap these with
// fmt.Errorf("%w: ...") so callers can branch with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrLayout        = errors.New("layout error")
	ErrResolution    = errors.New("resolution error")
	ErrNotFound      = errors.New("not found")
	ErrIO            = errors.New("io error")
)

// SlotError records a recoverable failure for a single deck slot.
type SlotError struct {
	Index int
	Path  string
	Err   error
}

func (e SlotError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("slot %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e SlotError) Unwrap() error {
	return e.Err
}

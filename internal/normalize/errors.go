package normalize

import (
	"errors"
	"fmt"
)

// Sentinel errors for the normalization taxonomy
var (
	// ErrUnparseableTimestamp indicates no catalogue format or repair rule matched a token
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")

	// ErrMissingAnchor indicates a time-only token was seen without a date to attach it to
	ErrMissingAnchor = errors.New("missing anchor timestamp")

	// ErrUnexpectedRowShape indicates a row wider than its layout accounts for
	ErrUnexpectedRowShape = errors.New("unexpected row shape")

	// ErrUnknownCode indicates a categorical code outside the fixed table
	ErrUnknownCode = errors.New("unknown categorical code")
)

// UnparseableTimestampError reports a token that could not be resolved
type UnparseableTimestampError struct {
	Token  string
	Reason string
}

// Error implements the error interface
func (e *UnparseableTimestampError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unparseable timestamp %q: %s", e.Token, e.Reason)
	}
	return fmt.Sprintf("unparseable timestamp %q", e.Token)
}

// Is implements errors.Is support
func (e *UnparseableTimestampError) Is(target error) bool {
	return target == ErrUnparseableTimestamp
}

// MissingAnchorError reports a time-only token resolved without an anchor
type MissingAnchorError struct {
	Token string
}

// Error implements the error interface
func (e *MissingAnchorError) Error() string {
	return fmt.Sprintf("time-only token %q has no anchor date", e.Token)
}

// Is implements errors.Is support
func (e *MissingAnchorError) Is(target error) bool {
	return target == ErrMissingAnchor
}

// UnexpectedRowShapeError reports a row with more columns than its layout knows
type UnexpectedRowShapeError struct {
	Source  string
	Row     int
	Columns int
	Max     int
}

// Error implements the error interface
func (e *UnexpectedRowShapeError) Error() string {
	return fmt.Sprintf("row %d of %s has %d columns, layout accounts for %d", e.Row, e.Source, e.Columns, e.Max)
}

// Is implements errors.Is support
func (e *UnexpectedRowShapeError) Is(target error) bool {
	return target == ErrUnexpectedRowShape
}

// UnknownCategoricalCodeError reports a code missing from the code table
type UnknownCategoricalCodeError struct {
	Code string
}

// Error implements the error interface
func (e *UnknownCategoricalCodeError) Error() string {
	return fmt.Sprintf("unknown categorical code %q", e.Code)
}

// Is implements errors.Is support
func (e *UnknownCategoricalCodeError) Is(target error) bool {
	return target == ErrUnknownCode
}

func unparseable(token, reason string) error {
	return &UnparseableTimestampError{Token: token, Reason: reason}
}

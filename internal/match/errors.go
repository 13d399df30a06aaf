package match

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange      = errors.New("invalid iteration range")
	ErrProtocolViolation = errors.New("protocol violation")
)

// ViolationError records which side sent an out-of-domain value and when.
type ViolationError struct {
	// Side is 1 or 2.
	Side  int
	Turn  int
	Value int32
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("side %d sent %d on turn %d", e.Side, e.Value, e.Turn)
}

func (e *ViolationError) Unwrap() error {
	return ErrProtocolViolation
}

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks a bad request value (negative time, page < 1, ...).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInconsistentSnapshot marks input state that could only come from a caller bug
	// or corrupted data, e.g. xp >= xpToNextLevel.
	ErrInconsistentSnapshot = errors.New("inconsistent snapshot")
	// ErrNotFound is raised by callers that fail to assemble a snapshot. The engine itself never looks anything up.
	ErrNotFound = errors.New("not found")
)

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func inconsistentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInconsistentSnapshot, fmt.Sprintf(format, args...))
}

func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }
func IsInconsistentSnapshot(err error) bool { return errors.Is(err, ErrInconsistentSnapshot) }
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

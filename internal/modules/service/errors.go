package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrDuplicateID = errors.New("project id already exists")
)

// PartialFailure reports an operation that landed some of its writes but
// not all of them, e.g. workflow seeding over a flaky sheet backend. The
// caller decides whether to surface it as a warning or retry.
type PartialFailure struct {
	Op     string
	Done   int
	Failed []string
	Err    error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%s: %d done, failed: %s", e.Op, e.Done, strings.Join(e.Failed, ", "))
}

func (e *PartialFailure) Unwrap() error { return e.Err }

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

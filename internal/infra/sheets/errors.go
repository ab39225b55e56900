package sheets

import (
	"fmt"
	"strconv"
)

// TransportError is a network or HTTP-status failure reaching the store.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("sheets %s: store returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("sheets %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError is a response body that cannot be parsed into the expected
// record shape.
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("sheets %s: malformed response: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// StoreError is a logical failure the store itself reported in an
// otherwise well-formed response.
type StoreError struct {
	Op      string
	Message string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("sheets %s: store error: %s", e.Op, e.Message)
}

func stringify(v any) string {
	switch t := v.(type) {
	case float64:
		// avoid "15.000000" for integral sheet numbers
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

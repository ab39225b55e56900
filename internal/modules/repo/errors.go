package repo

import "errors"

// ErrNotFound is returned by every implementation when a record does not
// exist, so services never depend on a backend-specific sentinel.
var ErrNotFound = errors.New("record not found")

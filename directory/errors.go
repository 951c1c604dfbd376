package directory

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrStoreRead is returned when the document store cannot be read.
	ErrStoreRead = errors.New("reading from document store failed")

	// ErrStoreWrite is returned when a create, update, or delete against the
	// document store fails, including updates against a missing document.
	ErrStoreWrite = errors.New("writing to document store failed")

	// ErrStoreTimeout is returned when a read exceeds the configured deadline.
	ErrStoreTimeout = errors.New("document store read timed out")
)

// readErr tags a listing failure with the sentinel matching its cause: a
// deadline hit is a timeout, everything else is a store read failure.
func readErr(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s : %w", ErrStoreTimeout, operation, err)
	}
	return fmt.Errorf("%w: %s : %w", ErrStoreRead, operation, err)
}

// Package blob abstracts the binary asset store settings fields reference.
// The settings core only ever deletes assets; upload and serving belong to
// the surrounding application.
package blob

import (
	"context"
	"fmt"
)

// Store deletes binary assets addressed by a disk name and an object
// reference. Implementations wrap backend failures in *StorageError.
type Store interface {
	Delete(ctx context.Context, disk, ref string) error
}

// StorageError reports a failed blob store operation. It aborts the
// surrounding settings operation before any value is mutated.
type StorageError struct {
	Disk string
	Ref  string
	Err  error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("blob store: delete %q from disk %q: %v", e.Ref, e.Disk, e.Err)
}

// Unwrap exposes the backend failure for errors.Is/As.
func (e *StorageError) Unwrap() error {
	return e.Err
}

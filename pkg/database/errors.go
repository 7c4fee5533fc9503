package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when the requested document does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique constraint rejects a write
	ErrAlreadyExists = errors.New("already exists")
	// ErrStorageUnavailable is returned on transient infrastructure failures.
	// The write did not happen and the whole operation can be retried.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// wrapStorageError maps driver errors onto the storage taxonomy
func wrapStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrStorageUnavailable):
		return err
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}

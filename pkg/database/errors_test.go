package database

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestWrapStorageError(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no documents", mongo.ErrNoDocuments, ErrNotFound},
		{"duplicate key", dup, ErrAlreadyExists},
		{"deadline", context.DeadlineExceeded, ErrStorageUnavailable},
		{"disconnected", mongo.ErrClientDisconnected, ErrStorageUnavailable},
		{"already mapped", ErrNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapStorageError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("wrapStorageError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	if wrapStorageError(nil) != nil {
		t.Error("wrapStorageError(nil) should return nil")
	}
}

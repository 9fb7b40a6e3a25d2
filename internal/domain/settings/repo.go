package settings

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a setting has never been written.
var ErrKeyNotFound = errors.New("setting not found")

// Repository is a plain key to JSON-document store.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

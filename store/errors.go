package store

import "errors"

var (
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrExists indicates a record already exists at the address.
	ErrExists = errors.New("store: record already exists")

	// ErrReadOnly indicates a write inside a View transaction.
	ErrReadOnly = errors.New("store: read-only transaction")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")
)

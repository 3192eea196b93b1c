package models

import "errors"

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a versioned write lost a race with another writer.
	ErrConflict = errors.New("record was modified concurrently")
)

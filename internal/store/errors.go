package store

import "errors"

var (
	// ErrNoActiveTenant is returned by commands that need a tenant
	// selected.
	ErrNoActiveTenant = errors.New("no active tenant selected")

	// ErrNotFound is returned when a command targets an entity the
	// store does not hold.
	ErrNotFound = errors.New("entity not found")
)

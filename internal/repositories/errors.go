package repositories

import "errors"

// ErrNotFound is returned when a row does not exist or is owned by a
// different user. Callers cannot tell the two cases apart.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert or update violates a unique
// constraint (email, or a (user, name) label pair).
var ErrDuplicate = errors.New("duplicate record")

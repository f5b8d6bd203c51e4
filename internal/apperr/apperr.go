// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error kinds shared across the service:
// Validation (bad input, rejected before any write), NotFound (missing or
// inactive record), Conflict (lost transactional race) and External
// (a downstream dependency failed and the caller may retry).
package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Use errors.Is to classify a returned error.
var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrExternal   = errors.New("external dependency")
)

// Validation returns a Validation error with a caller-facing reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns a NotFound error naming the missing entity.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflict returns a Conflict error. Stores return this when a
// transactional retry budget is exhausted.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// External wraps a downstream failure (PDF engine, object storage) so the
// caller can distinguish transient infrastructure errors from its own.
func External(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrExternal, op, err)
}

package sinerider

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned when level data names a goal or director
	// kind that has no registered constructor.
	ErrUnknownKind = errors.New("sinerider: unknown kind")
	// ErrInvalidSize is returned when a surface is allocated with a
	// non-positive dimension.
	ErrInvalidSize = errors.New("sinerider: invalid surface size")
	// ErrDestroyed is returned by operations on a destroyed level or entity.
	ErrDestroyed = errors.New("sinerider: destroyed")
	// ErrUnknownEntity is returned when a named entity cannot be found.
	ErrUnknownEntity = errors.New("sinerider: unknown entity")
	// ErrNoSteps is returned when a session script contains no steps.
	ErrNoSteps = errors.New("sinerider: script has no steps")
)

// DatumError reports a malformed entry in level data.
type DatumError struct {
	Collection string // e.g. "goals"
	Index      int
	Value      string
	Err        error
}

func (e *DatumError) Error() string {
	return fmt.Sprintf("level datum %s[%d] (%q): %v", e.Collection, e.Index, e.Value, e.Err)
}

func (e *DatumError) Unwrap() error { return e.Err }

// HookError reports a failed lifecycle hook on one entity.
type HookError struct {
	Hook   string
	Entity string
	ID     EntityID
	Err    error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook on %q (%v): %v", e.Hook, e.Entity, e.ID, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

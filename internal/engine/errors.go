package engine

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state")
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// NotFoundError reports a missing player, quest, template or notification.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StateError is returned when a transition is attempted on a quest that is
// no longer active.
type StateError struct {
	QuestID int64
	Status  QuestStatus
	Op      string
}

func (e StateError) Error() string {
	return fmt.Sprintf("cannot %s quest %d: quest is %s", e.Op, e.QuestID, e.Status)
}

func (e StateError) Is(target error) bool { return target == ErrInvalidState }

// ValidationError names the field and the bound it violated.
type ValidationError struct {
	Field string
	Rule  string
	Param string
	Value any
}

func (e ValidationError) Error() string {
	switch e.Rule {
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field, e.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field, e.Param)
	case "oneof":
		if e.Param == "" {
			return fmt.Sprintf("%s has an unsupported value %v", e.Field, e.Value)
		}
		return fmt.Sprintf("%s must be one of [%s]", e.Field, e.Param)
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	default:
		return fmt.Sprintf("%s failed %s %s", e.Field, e.Rule, e.Param)
	}
}

func (e ValidationError) Is(target error) bool { return target == ErrValidation }

// StorageError wraps a failure of the underlying store. Operations that
// return it have applied none of their effects.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("%s: storage: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }

func (e StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

// storageErr leaves domain errors untouched and wraps anything else as a
// StorageError. Cancellation and deadline errors stay context errors.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrValidation) || errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return StorageError{Op: op, Err: err}
}

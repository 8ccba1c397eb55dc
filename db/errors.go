package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/lib/pq"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeUniqueViolation      = "23505"
)

// classify marks errors that are safe to retry with entity.ErrTransient.
func classify(err error) error {
	if err == nil || !isTransient(err) {
		return err
	}

	return fmt.Errorf("%w: %w", entity.ErrTransient, err)
}

func isTransient(err error) bool {
	if errors.Is(err, entity.ErrTransient) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch pqErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
		return true
	default:
		return false
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}

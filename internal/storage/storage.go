// Package storage holds the pieces shared by every postgres repository.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrForeignKey = errors.New("foreign key violation")
)

// postgres error codes, https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     pq.ErrorCode = "23505"
	pgForeignKeyViolation pq.ErrorCode = "23503"
)

// Translate turns driver error into one of the package sentinel, keeping the original message.
// Unknown error is returned as is.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicate, describe(pqErr))
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrForeignKey, describe(pqErr))
	}

	return err
}

func describe(pqErr *pq.Error) string {
	if pqErr.Detail != "" {
		return pqErr.Detail
	}

	if pqErr.Constraint != "" {
		return pqErr.Constraint
	}

	return pqErr.Message
}

// Limit clamp list limit into [1, MaxLimit], zero means DefaultLimit.
func Limit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}

	return limit
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

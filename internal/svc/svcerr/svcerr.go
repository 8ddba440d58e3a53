// Package svcerr holds the error kinds every service returns, so transport only needs errors.Is to pick the response.
package svcerr

import (
	"errors"
	"fmt"

	"github.com/yusufsyaifudin/marathon/internal/storage"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = storage.ErrNotFound
	ErrDuplicate  = storage.ErrDuplicate
	ErrForeignKey = storage.ErrForeignKey
)

// Validation wrap err as ErrValidation. Field errors inside err stay reachable by validator.Fields.
func Validation(err error) error {
	if err == nil {
		return nil
	}

	fields := validator.Fields(err)
	if len(fields) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return fmt.Errorf("%w: %w", ErrValidation, validator.Errors(fields))
}

// Fields wrap list of field errors as ErrValidation.
func Fields(fields ...validator.FieldError) error {
	return fmt.Errorf("%w: %w", ErrValidation, validator.Errors(fields))
}

// ValidID reports whether id can be an entity id. Invalid id is treated as not found.
func ValidID(ids ...string) bool {
	for _, id := range ids {
		if validator.Var(id, "required,uuid") != nil {
			return false
		}
	}

	return true
}

// NotFound return ErrNotFound with the entity name.
func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s '%s'", ErrNotFound, entity, id)
}

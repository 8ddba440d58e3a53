package jobrepo

import (
	"context"
	"errors"
	"time"

	"github.com/yusufsyaifudin/marathon/internal/storage"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = storage.ErrNotFound
	ErrForeignKey = storage.ErrForeignKey
)

type Repo interface {
	Create(ctx context.Context, in InputCreate) (out OutCreate, err error)
	GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error)
	GetUnderTemplate(ctx context.Context, in InputGetUnderTemplate) (out OutGetByID, err error)
	ListByTemplate(ctx context.Context, in InputListByTemplate) (out OutListByTemplate, err error)

	// IncrementProgress add one completed batch and set completed time once all batches are done.
	// Unknown total batches is treated as 1.
	IncrementProgress(ctx context.Context, in InputIncrementProgress) (out OutIncrementProgress, err error)

	MarkCompleted(ctx context.Context, in InputMarkCompleted) (out OutMarkCompleted, err error)
}

type InputCreate struct {
	Job Job `validate:"required"`
}

type OutCreate struct {
	Job Job
}

type InputGetByID struct {
	ID string `validate:"required,uuid"`
}

type OutGetByID struct {
	Job Job
}

type InputGetUnderTemplate struct {
	ID         string `validate:"required,uuid"`
	AppID      string `validate:"required,uuid"`
	TemplateID string `validate:"required,uuid"`
}

type InputListByTemplate struct {
	AppID      string `validate:"required,uuid"`
	TemplateID string `validate:"required,uuid"`
	Limit      int    `validate:"min=0"`
	Offset     int    `validate:"min=0"`
}

type OutListByTemplate struct {
	Jobs []Job
}

type InputIncrementProgress struct {
	ID  string    `validate:"required,uuid"`
	Now time.Time `validate:"required"`
}

type OutIncrementProgress struct {
	Job Job
}

type InputMarkCompleted struct {
	ID  string    `validate:"required,uuid"`
	Now time.Time `validate:"required"`
}

type OutMarkCompleted struct {
	Job Job
}

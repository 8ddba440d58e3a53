package templaterepo

import (
	"context"
	"errors"
	"time"

	"github.com/yusufsyaifudin/marathon/internal/storage"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = storage.ErrNotFound
	ErrDuplicate  = storage.ErrDuplicate
	ErrForeignKey = storage.ErrForeignKey
)

type Repo interface {
	Create(ctx context.Context, in InputCreate) (out OutCreate, err error)
	Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error)
	GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error)
	ListByApp(ctx context.Context, in InputListByApp) (out OutListByApp, err error)
	DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error)
}

type InputCreate struct {
	Template Template `validate:"required"`
}

type OutCreate struct {
	Template Template
}

type InputUpdate struct {
	ID           string       `validate:"required,uuid"`
	AppID        string       `validate:"required,uuid"`
	Name         string       `validate:"required,min=1,max=255"`
	Locale       string       `validate:"required,min=1,max=10"`
	Defaults     storage.JSON `validate:"required,jsonobject"`
	Body         storage.JSON `validate:"required,jsonobject"`
	CompiledBody string       `validate:"required"`
	UpdatedAt    time.Time    `validate:"required"`
}

type OutUpdate struct {
	Template Template
}

type InputGetByID struct {
	ID    string `validate:"required,uuid"`
	AppID string `validate:"required,uuid"`
}

type OutGetByID struct {
	Template Template
}

type InputListByApp struct {
	AppID  string `validate:"required,uuid"`
	Limit  int    `validate:"min=0"`
	Offset int    `validate:"min=0"`
}

type OutListByApp struct {
	Templates []Template
}

type InputDelByID struct {
	ID    string `validate:"required,uuid"`
	AppID string `validate:"required,uuid"`
}

type OutDelByID struct {
	Success bool
}

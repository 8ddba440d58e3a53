package apprepo

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
)

// Repo is App repository service
type Repo interface {
	Create(ctx context.Context, in InputCreate) (out OutCreate, err error)
	Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error)
	GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error)
	List(ctx context.Context, in InputList) (out OutList, err error)
	DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error)
}

type InputCreate struct {
	App App `validate:"required"`
}

type OutCreate struct {
	App App
}

type InputUpdate struct {
	ID        string    `validate:"required,uuid"`
	Key       string    `validate:"required,min=1,max=255"`
	BundleID  string    `validate:"required,bundleid"`
	UpdatedAt time.Time `validate:"required"`
}

type OutUpdate struct {
	App App
}

type InputGetByID struct {
	ID string `validate:"required,uuid"`
}

type OutGetByID struct {
	App App
}

type InputList struct {
	Limit  int `validate:"min=0"`
	Offset int `validate:"min=0"`
}

type OutList struct {
	Apps []App
}

type InputDelByID struct {
	ID string `validate:"required,uuid"`
}

type OutDelByID struct {
	Success bool
}

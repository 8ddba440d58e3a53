package appsvc

import (
	"context"
	"time"
)

// Service is an interface of final business logic.
// Any input and output from/to this function should be SAFE for external party to consume,
// i.e: request or response from HTTP handler
type Service interface {
	CreateApp(ctx context.Context, input InputCreateApp) (out OutCreateApp, err error)
	PutApp(ctx context.Context, input InputPutApp) (out OutPutApp, err error)
	GetApp(ctx context.Context, input InputGetApp) (out OutGetApp, err error)
	ListApp(ctx context.Context, input InputListApp) (out OutListApp, err error)
	DelApp(ctx context.Context, input InputDelApp) (out OutDelApp, err error)
}

// App must not have any json or yaml tag, any output method (HTTP, gRPC, etc) must define its own entity standard.
type App struct {
	ID        string
	Key       string
	BundleID  string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InputCreateApp struct {
	Key       string `json:"key" validate:"required,min=1,max=255"`
	BundleID  string `json:"bundleId" validate:"required,bundleid"`
	CreatedBy string `json:"user-email" validate:"required,email"`
}

type OutCreateApp struct {
	App App
}

type InputPutApp struct {
	ID       string `json:"id" validate:"-"`
	Key      string `json:"key" validate:"required,min=1,max=255"`
	BundleID string `json:"bundleId" validate:"required,bundleid"`
}

type OutPutApp struct {
	App App
}

type InputGetApp struct {
	ID string
}

type OutGetApp struct {
	App App
}

type InputListApp struct {
	Limit  int `json:"limit" validate:"min=0"`
	Offset int `json:"offset" validate:"min=0"`
}

type OutListApp struct {
	Limit  int
	Offset int
	Apps   []App
}

type InputDelApp struct {
	ID string
}

type OutDelApp struct {
	Success bool
}

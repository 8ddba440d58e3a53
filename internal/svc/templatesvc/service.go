package templatesvc

import (
	"context"
	"time"
)

// DefaultLocale is used when template locale is not set.
const DefaultLocale = "en"

type Service interface {
	CreateTemplate(ctx context.Context, input InputCreateTemplate) (out OutCreateTemplate, err error)
	PutTemplate(ctx context.Context, input InputPutTemplate) (out OutPutTemplate, err error)
	GetTemplate(ctx context.Context, input InputGetTemplate) (out OutGetTemplate, err error)
	ListTemplate(ctx context.Context, input InputListTemplate) (out OutListTemplate, err error)
	DelTemplate(ctx context.Context, input InputDelTemplate) (out OutDelTemplate, err error)
}

type Template struct {
	ID           string
	Name         string
	Locale       string
	Defaults     []byte
	Body         []byte
	CompiledBody string
	AppID        string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type InputCreateTemplate struct {
	AppID     string `json:"appId" validate:"-"`
	Name      string `json:"name" validate:"required,min=1,max=255"`
	Locale    string `json:"locale" validate:"required,min=1,max=10"`
	Defaults  []byte `json:"defaults" validate:"required,jsonobject"`
	Body      []byte `json:"body" validate:"required,jsonobject"`
	CreatedBy string `json:"user-email" validate:"required,email"`
}

type OutCreateTemplate struct {
	Template Template
}

type InputPutTemplate struct {
	AppID    string `json:"appId" validate:"-"`
	ID       string `json:"id" validate:"-"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Locale   string `json:"locale" validate:"required,min=1,max=10"`
	Defaults []byte `json:"defaults" validate:"required,jsonobject"`
	Body     []byte `json:"body" validate:"required,jsonobject"`
}

type OutPutTemplate struct {
	Template Template
}

type InputGetTemplate struct {
	AppID string
	ID    string
}

type OutGetTemplate struct {
	Template Template
}

type InputListTemplate struct {
	AppID  string
	Limit  int `json:"limit" validate:"min=0"`
	Offset int `json:"offset" validate:"min=0"`
}

type OutListTemplate struct {
	Limit     int
	Offset    int
	Templates []Template
}

type InputDelTemplate struct {
	AppID string
	ID    string
}

type OutDelTemplate struct {
	Success bool
}

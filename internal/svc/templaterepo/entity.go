package templaterepo

import (
	"time"

	"github.com/yusufsyaifudin/marathon/internal/storage"
)

// Template is message body of an app for one locale.
// CompiledBody is Body rendered with Defaults, it is refreshed every time Body or Defaults change.
type Template struct {
	ID           string       `db:"id" validate:"required,uuid"`
	Name         string       `db:"name" validate:"required,min=1,max=255"`
	Locale       string       `db:"locale" validate:"required,min=1,max=10"`
	Defaults     storage.JSON `db:"defaults" validate:"required,jsonobject"`
	Body         storage.JSON `db:"body" validate:"required,jsonobject"`
	CompiledBody string       `db:"compiled_body" validate:"required"`
	CreatedBy    string       `db:"created_by" validate:"required,email"`
	AppID        string       `db:"app_id" validate:"required,uuid"`
	CreatedAt    time.Time    `db:"created_at" validate:"required"`
	UpdatedAt    time.Time    `db:"updated_at" validate:"required"`
}

package jobrepo

import (
	"time"

	"github.com/yusufsyaifudin/marathon/internal/storage"
)

// Job is one campaign execution of a template. Exactly one of Filters or CsvURL is set.
type Job struct {
	ID               string       `db:"id" validate:"required,uuid"`
	TotalBatches     *int64       `db:"total_batches" validate:"omitempty,min=1"`
	CompletedBatches int64        `db:"completed_batches" validate:"min=0"`
	CompletedAt      *time.Time   `db:"completed_at" validate:"-"`
	ExpireAt         *time.Time   `db:"expire_at" validate:"-"`
	Context          storage.JSON `db:"context" validate:"required,jsonobject"`
	Service          string       `db:"service" validate:"required,oneof=apns gcm"`
	Filters          storage.JSON `db:"filters" validate:"-"`
	CsvURL           *string      `db:"csv_url" validate:"-"`
	CreatedBy        string       `db:"created_by" validate:"required,email"`
	AppID            string       `db:"app_id" validate:"required,uuid"`
	TemplateID       string       `db:"template_id" validate:"required,uuid"`
	CreatedAt        time.Time    `db:"created_at" validate:"required"`
	UpdatedAt        time.Time    `db:"updated_at" validate:"required"`
}

// Expired reports whether the job can no longer be sent at now.
func (j Job) Expired(now time.Time) bool {
	return j.ExpireAt != nil && j.ExpireAt.Before(now)
}

// HasSingleAudience reports whether exactly one of Filters or CsvURL is set.
func (j Job) HasSingleAudience() bool {
	return j.Filters.IsNull() != (j.CsvURL == nil)
}

func (j Job) Completed() bool {
	return j.CompletedAt != nil
}

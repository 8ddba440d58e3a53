package apprepo

import "time"

// App is a client application which receives push notification.
// Json tag is used for caching.
type App struct {
	ID        string    `json:"id" db:"id" validate:"required,uuid"`
	Key       string    `json:"key" db:"key" validate:"required,min=1,max=255"`
	BundleID  string    `json:"bundleId" db:"bundle_id" validate:"required,bundleid"`
	CreatedBy string    `json:"createdBy" db:"created_by" validate:"required,email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" validate:"required"`
}

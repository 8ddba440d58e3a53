package httptyped

import (
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/marathon/internal/svc/appsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/templatesvc"
)

// HeaderUserEmail is the caller identity, required on every POST.
const HeaderUserEmail = "user-email"

type AppEntity struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	BundleID  string    `json:"bundleId"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func AppEntityFromSvc(app appsvc.App) AppEntity {
	return AppEntity{
		ID:        app.ID,
		Key:       app.Key,
		BundleID:  app.BundleID,
		CreatedBy: app.CreatedBy,
		CreatedAt: app.CreatedAt,
		UpdatedAt: app.UpdatedAt,
	}
}

type TemplateEntity struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Locale       string          `json:"locale"`
	Defaults     json.RawMessage `json:"defaults"`
	Body         json.RawMessage `json:"body"`
	CompiledBody string          `json:"compiledBody"`
	AppID        string          `json:"appId"`
	CreatedBy    string          `json:"createdBy"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func TemplateEntityFromSvc(tmpl templatesvc.Template) TemplateEntity {
	return TemplateEntity{
		ID:           tmpl.ID,
		Name:         tmpl.Name,
		Locale:       tmpl.Locale,
		Defaults:     rawJSON(tmpl.Defaults),
		Body:         rawJSON(tmpl.Body),
		CompiledBody: tmpl.CompiledBody,
		AppID:        tmpl.AppID,
		CreatedBy:    tmpl.CreatedBy,
		CreatedAt:    tmpl.CreatedAt,
		UpdatedAt:    tmpl.UpdatedAt,
	}
}

// TemplateSummary is the template shape on list response.
type TemplateSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Locale    string `json:"locale"`
	AppID     string `json:"appId"`
	CreatedBy string `json:"createdBy"`
}

func TemplateSummaryFromSvc(tmpl templatesvc.Template) TemplateSummary {
	return TemplateSummary{
		ID:        tmpl.ID,
		Name:      tmpl.Name,
		Locale:    tmpl.Locale,
		AppID:     tmpl.AppID,
		CreatedBy: tmpl.CreatedBy,
	}
}

type JobEntity struct {
	ID               string          `json:"id"`
	TotalBatches     *int64          `json:"totalBatches"`
	CompletedBatches int64           `json:"completedBatches"`
	CompletedAt      *time.Time      `json:"completedAt"`
	ExpireAt         *time.Time      `json:"expireAt"`
	Context          json.RawMessage `json:"context"`
	Service          string          `json:"service"`
	Filters          json.RawMessage `json:"filters"`
	CsvURL           *string         `json:"csvUrl"`
	CreatedBy        string          `json:"createdBy"`
	AppID            string          `json:"appId"`
	TemplateID       string          `json:"templateId"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func JobEntityFromSvc(job jobsvc.Job) JobEntity {
	var csvURL *string
	if job.CsvURL != "" {
		csvURL = &job.CsvURL
	}

	return JobEntity{
		ID:               job.ID,
		TotalBatches:     job.TotalBatches,
		CompletedBatches: job.CompletedBatches,
		CompletedAt:      job.CompletedAt,
		ExpireAt:         job.ExpireAt,
		Context:          rawJSON(job.Context),
		Service:          job.Service,
		Filters:          rawJSON(job.Filters),
		CsvURL:           csvURL,
		CreatedBy:        job.CreatedBy,
		AppID:            job.AppID,
		TemplateID:       job.TemplateID,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}
}

// rawJSON keeps stored JSON as is, empty value is written as null.
func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("null")
	}

	return b
}

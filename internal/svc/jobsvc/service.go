package jobsvc

import (
	"context"
	"time"
)

type Service interface {
	// CreateJob persist the job then enqueue it once. When enqueue fails the job row stays.
	CreateJob(ctx context.Context, input InputCreateJob) (out OutCreateJob, err error)
	GetJob(ctx context.Context, input InputGetJob) (out OutGetJob, err error)
	ListJob(ctx context.Context, input InputListJob) (out OutListJob, err error)
}

type Job struct {
	ID               string
	TotalBatches     *int64
	CompletedBatches int64
	CompletedAt      *time.Time
	ExpireAt         *time.Time
	Context          []byte
	Service          string
	Filters          []byte
	CsvURL           string
	CreatedBy        string
	AppID            string
	TemplateID       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type InputCreateJob struct {
	AppID      string
	TemplateID string
	CreatedBy  string

	Context      []byte
	Service      string
	Filters      []byte
	CsvURL       string
	ExpireAt     string
	TotalBatches *int64
}

type OutCreateJob struct {
	Job Job
}

type InputGetJob struct {
	AppID      string
	TemplateID string
	ID         string
}

type OutGetJob struct {
	Job Job
}

type InputListJob struct {
	AppID      string
	TemplateID string
	Limit      int `json:"limit" validate:"min=0"`
	Offset     int `json:"offset" validate:"min=0"`
}

type OutListJob struct {
	Limit  int
	Offset int
	Jobs   []Job
}

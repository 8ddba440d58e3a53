package mailsvc

import (
	"context"

	"github.com/yusufsyaifudin/marathon/internal/svc/apprepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobrepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/templaterepo"
)

// Service notifies the job creator by email.
type Service interface {
	JobCreated(ctx context.Context, in InputJobCreated) error
	JobCompleted(ctx context.Context, in InputJobCompleted) error
}

type InputJobCreated struct {
	Job      jobrepo.Job
	App      apprepo.App
	Template templaterepo.Template
}

type InputJobCompleted struct {
	Job jobrepo.Job

	// Expired is true when the job is completed because it passes expireAt.
	Expired bool
}

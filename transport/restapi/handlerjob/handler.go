package handlerjob

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobsvc"
	"github.com/yusufsyaifudin/marathon/pkg/respbuilder"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/marathon/transport/restapi/httptyped"
)

type HandlerConfig struct {
	JobService jobsvc.Service `validate:"required"`
}

type Handler struct {
	Config HandlerConfig
}

func NewHandler(conf HandlerConfig) (*Handler, error) {
	err := validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	return &Handler{Config: conf}, nil
}

// CreateJobReq only one of Filters or CsvURL must be set.
// ExpireAt is RFC3339 time string.
type CreateJobReq struct {
	Context      json.RawMessage `json:"context"`
	Service      string          `json:"service"`
	Filters      json.RawMessage `json:"filters"`
	CsvURL       string          `json:"csvUrl"`
	ExpireAt     string          `json:"expireAt"`
	TotalBatches *int64          `json:"totalBatches"`
}

type JobResp struct {
	Job httptyped.JobEntity `json:"job"`
}

// CreateJob save the job then put it into job queue.
// Path         : POST /apps/{id}/templates/{tid}/jobs
// Header       : user-email
// Request Body : CreateJobReq
// Response     : JobResp
func (h *Handler) CreateJob() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var reqBody CreateJobReq
		err := httptyped.DecodeBody(r, &reqBody)
		if err != nil {
			httptyped.WriteBadRequest(w, r, err)
			return
		}

		createOut, err := h.Config.JobService.CreateJob(ctx, jobsvc.InputCreateJob{
			AppID:        appID(r),
			TemplateID:   templateID(r),
			CreatedBy:    r.Header.Get(httptyped.HeaderUserEmail),
			Context:      reqBody.Context,
			Service:      reqBody.Service,
			Filters:      reqBody.Filters,
			CsvURL:       reqBody.CsvURL,
			ExpireAt:     reqBody.ExpireAt,
			TotalBatches: reqBody.TotalBatches,
		})
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, JobResp{
			Job: httptyped.JobEntityFromSvc(createOut.Job),
		})
		respbuilder.WriteJSON(http.StatusCreated, w, r, resp)
	}

	return handler
}

type ListJobsResp struct {
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Jobs   []httptyped.JobEntity `json:"jobs"`
}

// ListJobs
// Path          : GET /apps/{id}/templates/{tid}/jobs
// Request Query : httptyped.ListQuery
// Response      : ListJobsResp
func (h *Handler) ListJobs() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		query, err := httptyped.DecodeListQuery(r)
		if err != nil {
			httptyped.WriteBadRequest(w, r, err)
			return
		}

		listOut, err := h.Config.JobService.ListJob(ctx, jobsvc.InputListJob{
			AppID:      appID(r),
			TemplateID: templateID(r),
			Limit:      query.Limit,
			Offset:     query.Offset,
		})
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		jobs := make([]httptyped.JobEntity, 0, len(listOut.Jobs))
		for _, job := range listOut.Jobs {
			jobs = append(jobs, httptyped.JobEntityFromSvc(job))
		}

		resp := respbuilder.Success(ctx, ListJobsResp{
			Limit:  listOut.Limit,
			Offset: listOut.Offset,
			Jobs:   jobs,
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

// GetJob return 404 when the app, template or job is missing.
// Path          : GET /apps/{id}/templates/{tid}/jobs/{jid}
// Response      : JobResp
func (h *Handler) GetJob() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		getOut, err := h.Config.JobService.GetJob(ctx, jobsvc.InputGetJob{
			AppID:      appID(r),
			TemplateID: templateID(r),
			ID:         strings.TrimSpace(chi.URLParam(r, "jid")),
		})
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, JobResp{
			Job: httptyped.JobEntityFromSvc(getOut.Job),
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

func appID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

func templateID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "tid"))
}

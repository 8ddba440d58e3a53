package handlerhealth

import (
	"net/http"

	"github.com/yusufsyaifudin/marathon/internal/svc/healthsvc"
	"github.com/yusufsyaifudin/marathon/pkg/respbuilder"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

type HandlerConfig struct {
	HealthService healthsvc.Service `validate:"required"`
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

// Check report every connector, keyed by connector name.
// Path          : GET /healthcheck
// Response      : 200 when all connectors are up, otherwise 500
func (h *Handler) Check() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		out := h.Config.HealthService.Check(ctx)

		status := http.StatusOK
		if !out.Healthy {
			status = http.StatusInternalServerError
		}

		respbuilder.WriteJSON(status, w, r, respbuilder.Success(ctx, out.Services))
	}

	return handler
}

package httptyped

import (
	"errors"
	"net/http"

	"github.com/yusufsyaifudin/marathon/internal/svc/svcerr"
	"github.com/yusufsyaifudin/marathon/pkg/respbuilder"
	"github.com/yusufsyaifudin/ylog"
)

// ErrKind pick the response kind of a service error.
func ErrKind(err error) respbuilder.ErrKind {
	switch {
	case errors.Is(err, svcerr.ErrValidation), errors.Is(err, svcerr.ErrForeignKey):
		return respbuilder.ErrValidation
	case errors.Is(err, svcerr.ErrNotFound):
		return respbuilder.ErrResourceNotFound
	case errors.Is(err, svcerr.ErrDuplicate):
		return respbuilder.ErrDuplicateEntries
	}

	return respbuilder.ErrUnhandled
}

// WriteSvcError write err returned by a service with the matching status code.
func WriteSvcError(w http.ResponseWriter, r *http.Request, err error) {
	kind := ErrKind(err)
	if kind == respbuilder.ErrUnhandled {
		ylog.Error(r.Context(), "unhandled service error", ylog.KV("error", err))
	}

	respbuilder.WriteError(kind, w, r, err)
}

// WriteBadRequest is for request that cannot be decoded.
func WriteBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	resp := respbuilder.Error(r.Context(), respbuilder.ErrValidation, err)
	respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
}

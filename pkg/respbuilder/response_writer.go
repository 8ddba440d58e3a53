package respbuilder

import (
	"net/http"

	"github.com/segmentio/encoding/json"
)

func WriteJSON(httpStatus int, rw http.ResponseWriter, r *http.Request, data interface{}) {
	tracer := TracerFrom(r.Context())

	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Tracer-ID", tracer.TraceID)
	rw.WriteHeader(httpStatus)

	enc := json.NewEncoder(rw)
	err := enc.Encode(data)
	if err != nil {
		reason := ReasonMap[ErrUnhandled]
		errPayload, _ := json.Marshal(HTTPError{
			Err: ErrorEntity{
				Code:    reason.Code,
				Message: reason.Message,
				Debug:   err.Error(),
				TraceID: tracer.TraceID,
			},
		})

		_, _ = rw.Write(errPayload)
	}
}

// WriteError writes HTTPError using the status code of its kind.
func WriteError(kind ErrKind, rw http.ResponseWriter, r *http.Request, err error) {
	WriteJSON(StatusCode(kind), rw, r, Error(r.Context(), kind, err))
}

// NoContent only writes the status header, used for 204 response.
func NoContent(rw http.ResponseWriter, r *http.Request) {
	tracer := TracerFrom(r.Context())
	rw.Header().Set("Tracer-ID", tracer.TraceID)
	rw.WriteHeader(http.StatusNoContent)
}

package respbuilder

import (
	"context"

	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

func Error(ctx context.Context, reasonKind ErrKind, err error) HTTPError {
	stuff := TracerFrom(ctx)

	errMsg := ""
	var fieldErrs []validator.FieldError
	if err != nil {
		errMsg = err.Error()
		fieldErrs = validator.Fields(err)
	}

	reason, ok := ReasonMap[reasonKind]
	if !ok {
		return HTTPError{
			Err: ErrorEntity{
				Code:    "XX",
				Message: "unknown error kind",
				Debug:   "", // don't show message if unknown type, to prevent security breach
				TraceID: stuff.TraceID,
			},
		}
	}

	return HTTPError{
		Err: ErrorEntity{
			Code:    reason.Code,
			Message: reason.Message,
			Debug:   errMsg,
			Data:    fieldErrs,
			TraceID: stuff.TraceID,
		},
	}
}

// ErrorFields is like Error but using explicit list of field errors.
func ErrorFields(ctx context.Context, reasonKind ErrKind, fields []validator.FieldError) HTTPError {
	resp := Error(ctx, reasonKind, nil)
	resp.Err.Data = fields
	return resp
}

func Success(ctx context.Context, data interface{}) HTTPSuccess {
	stuff := TracerFrom(ctx)

	return HTTPSuccess{
		TraceID: stuff.TraceID,
		Data:    data,
	}
}

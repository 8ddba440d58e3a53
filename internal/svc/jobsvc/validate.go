package jobsvc

import (
	"bytes"
	"strings"
	"time"

	"github.com/yusufsyaifudin/marathon/backend"
	"github.com/yusufsyaifudin/marathon/internal/svc/svcerr"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

const headerUserEmail = "user-email"

// validateCreatedBy check the user-email header, it stops on the first error.
func validateCreatedBy(email string) error {
	if validator.Var(email, "required") != nil {
		return svcerr.Fields(validator.FieldError{Field: headerUserEmail, Message: "should not be empty"})
	}

	if validator.Var(email, "email") != nil {
		return svcerr.Fields(validator.FieldError{Field: headerUserEmail, Message: "is not email format"})
	}

	return nil
}

// validateBody collects every invalid field and return the parsed expire time.
func validateBody(in InputCreateJob) (expireAt *time.Time, err error) {
	fields := make([]validator.FieldError, 0)

	switch {
	case isEmpty(in.Context):
		fields = append(fields, validator.FieldError{Field: "context", Message: "should not be empty"})
	case validator.Var(in.Context, "jsonobject") != nil:
		fields = append(fields, validator.FieldError{Field: "context", Message: "is not a json format"})
	}

	switch {
	case strings.TrimSpace(in.Service) == "":
		fields = append(fields, validator.FieldError{Field: "service", Message: "should not be empty"})
	case validator.Var(in.Service, "oneof="+backend.ServiceAPNS+" "+backend.ServiceGCM) != nil:
		fields = append(fields, validator.FieldError{Field: "service", Message: "must be in [apns,gcm]"})
	}

	hasFilters, hasCsv := !isNull(in.Filters), in.CsvURL != ""
	switch {
	case hasFilters && hasCsv:
		fields = append(fields,
			validator.FieldError{Field: "filters", Message: "must not be set together with csvUrl"},
			validator.FieldError{Field: "csvUrl", Message: "must not be set together with filters"},
		)
	case !hasFilters && !hasCsv:
		fields = append(fields,
			validator.FieldError{Field: "filters", Message: "should not be empty when csvUrl is empty"},
			validator.FieldError{Field: "csvUrl", Message: "should not be empty when filters is empty"},
		)
	case hasFilters && validator.Var(in.Filters, "jsonobject") != nil:
		fields = append(fields, validator.FieldError{Field: "filters", Message: "is not a json format"})
	case hasCsv && validator.Var(in.CsvURL, "url") != nil:
		fields = append(fields, validator.FieldError{Field: "csvUrl", Message: "is not url format"})
	}

	if in.ExpireAt != "" {
		t, parseErr := time.Parse(time.RFC3339Nano, in.ExpireAt)
		if parseErr != nil {
			fields = append(fields, validator.FieldError{Field: "expireAt", Message: "is not a date format"})
		} else {
			t = t.UTC()
			expireAt = &t
		}
	}

	if in.TotalBatches != nil && *in.TotalBatches < 1 {
		fields = append(fields, validator.FieldError{Field: "totalBatches", Message: "must be at least 1"})
	}

	if len(fields) > 0 {
		return nil, svcerr.Fields(fields...)
	}

	return expireAt, nil
}

func isNull(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// isEmpty also treats a json empty string as absent value.
func isEmpty(raw []byte) bool {
	return isNull(raw) || bytes.Equal(bytes.TrimSpace(raw), []byte(`""`))
}

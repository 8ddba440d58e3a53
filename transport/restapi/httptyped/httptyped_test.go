package httptyped_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/svcerr"
	"github.com/yusufsyaifudin/marathon/pkg/respbuilder"
	"github.com/yusufsyaifudin/marathon/transport/restapi/httptyped"
)

func TestErrKind(t *testing.T) {
	tests := []struct {
		err  error
		want respbuilder.ErrKind
	}{
		{err: svcerr.Fields(), want: respbuilder.ErrValidation},
		{err: fmt.Errorf("insert job: %w", svcerr.ErrForeignKey), want: respbuilder.ErrValidation},
		{err: svcerr.NotFound("app", "x"), want: respbuilder.ErrResourceNotFound},
		{err: fmt.Errorf("create: %w", svcerr.ErrDuplicate), want: respbuilder.ErrDuplicateEntries},
		{err: errors.New("connection reset"), want: respbuilder.ErrUnhandled},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, httptyped.ErrKind(tt.err), tt.err.Error())
	}
}

func TestDecodeListQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/apps?limit=10&offset=20&sort=desc", nil)
	query, err := httptyped.DecodeListQuery(req)
	require.NoError(t, err)
	assert.Equal(t, httptyped.ListQuery{Limit: 10, Offset: 20}, query)

	req = httptest.NewRequest(http.MethodGet, "/apps?limit=ten", nil)
	_, err = httptyped.DecodeListQuery(req)
	assert.Error(t, err)
}

func TestDecodeBody(t *testing.T) {
	var dst map[string]interface{}

	req := httptest.NewRequest(http.MethodPost, "/apps", strings.NewReader(`{"key":"k1"}`))
	require.NoError(t, httptyped.DecodeBody(req, &dst))
	assert.Equal(t, "k1", dst["key"])

	req = httptest.NewRequest(http.MethodPost, "/apps", strings.NewReader(``))
	assert.Error(t, httptyped.DecodeBody(req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/apps", strings.NewReader(`{`))
	assert.Error(t, httptyped.DecodeBody(req, &dst))
}

func TestJobEntityFromSvc(t *testing.T) {
	entity := httptyped.JobEntityFromSvc(jobsvc.Job{ID: "j1", Context: []byte(`{"a":1}`)})
	assert.Nil(t, entity.CsvURL)
	assert.Equal(t, "null", string(entity.Filters))
	assert.Equal(t, `{"a":1}`, string(entity.Context))

	entity = httptyped.JobEntityFromSvc(jobsvc.Job{ID: "j1", CsvURL: "https://x.com/a.csv"})
	require.NotNil(t, entity.CsvURL)
	assert.Equal(t, "https://x.com/a.csv", *entity.CsvURL)
}

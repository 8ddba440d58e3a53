package httptyped

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/ylog"
)

var queryDecoder = schema.NewDecoder()

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
}

// ListQuery is the paging query of every list endpoint, e.g: ?limit=10&offset=20
type ListQuery struct {
	Limit  int `schema:"limit"`
	Offset int `schema:"offset"`
}

func DecodeListQuery(r *http.Request) (query ListQuery, err error) {
	err = queryDecoder.Decode(&query, r.URL.Query())
	if err != nil {
		err = fmt.Errorf("malformed query param: %w", err)
		return
	}

	return
}

// DecodeBody decode JSON request body into dst and always close the body.
func DecodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("request body is nil")
	}

	defer func() {
		if _err := r.Body.Close(); _err != nil {
			ylog.Error(r.Context(), "cannot close request body", ylog.KV("error", _err))
		}
	}()

	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("request body is empty")
	}

	if err != nil {
		return fmt.Errorf("malformed json body: %w", err)
	}

	return nil
}

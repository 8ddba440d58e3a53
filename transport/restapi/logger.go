package restapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/satori/uuid"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/marathon/pkg/respbuilder"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

const requestTimeout = 30 * time.Second

func toSimpleMap(h http.Header) map[string]string {
	out := map[string]string{}
	for k, v := range h {
		out[k] = strings.Join(v, " ")
	}

	return out
}

// traceIDOf reuse the otel trace id when the request is traced, so access log can be joined with the span.
func traceIDOf(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		return spanCtx.TraceID().String()
	}

	return uuid.NewV4().String()
}

// decodeLogBody return the body as object when it is JSON, otherwise as string.
func decodeLogBody(body []byte) (obj interface{}, str string, err error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, "", nil
	}

	if err = json.Unmarshal(body, &obj); err != nil {
		return nil, string(body), err
	}

	return obj, "", nil
}

func requestLogger(skipFunc func(r *http.Request) bool, next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if skipFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		var globalErr error
		t1 := time.Now().UTC()

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		traceID := traceIDOf(ctx)
		logTraceData, err := ylog.NewTracer(tracer.LogData{
			RemoteAddr: r.RemoteAddr,
			TraceID:    traceID,
		}, ylog.WithTag("tracer"))
		if err != nil {
			// this should never happen, but once it happens, we need to log in the response
			globalErr = multierr.Append(globalErr, fmt.Errorf("error prepare log tracer data: %w", err))
		} else {
			ctx = ylog.Inject(ctx, logTraceData)
		}

		// Inject logger and response tracer at same time
		ctx = respbuilder.Inject(ctx, respbuilder.Tracer{
			RemoteAddr: r.RemoteAddr,
			TraceID:    traceID,
		})
		r = r.WithContext(ctx)

		reqBody := make([]byte, 0)
		if r.Body != nil {
			reqBody, err = io.ReadAll(r.Body)
			if err != nil {
				globalErr = multierr.Append(globalErr, fmt.Errorf("error read request body: %w", err))
			}

			if _err := r.Body.Close(); _err != nil {
				globalErr = multierr.Append(globalErr, fmt.Errorf("cannot close request body: %w", _err))
			}

			r.Body = io.NopCloser(bytes.NewReader(reqBody))
		}

		reqBodyObj, reqBodyStr, err := decodeLogBody(reqBody)
		if err != nil {
			globalErr = multierr.Append(globalErr, fmt.Errorf("error unmarshal request body: %w", err))
		}

		// continue serve, and record the response
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, r)

		respBody := rec.Body.Bytes()
		respBodyObj, respBodyStr, err := decodeLogBody(respBody)
		if err != nil {
			globalErr = multierr.Append(globalErr, fmt.Errorf("error unmarshal response body: %w", err))
		}

		for k, v := range rec.Header() {
			w.Header()[k] = v
		}

		w.WriteHeader(rec.Code)
		_, err = w.Write(respBody)
		if err != nil {
			globalErr = multierr.Append(globalErr, fmt.Errorf("error write response body: %w", err))
		}

		errStr := ""
		if globalErr != nil {
			errStr = globalErr.Error()
		}

		// log request
		ylog.Access(ctx, ylog.AccessLogData{
			Path: r.RequestURI,
			Request: ylog.HTTPData{
				Header:     toSimpleMap(r.Header),
				DataObject: reqBodyObj,
				DataString: reqBodyStr,
			},
			Response: ylog.HTTPData{
				Header:     toSimpleMap(rec.Header()),
				DataObject: respBodyObj,
				DataString: respBodyStr,
			},
			Error:       errStr,
			ElapsedTime: time.Since(t1).Milliseconds(),
		})
	}
}

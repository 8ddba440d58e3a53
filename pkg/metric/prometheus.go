package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marathon"

var (
	HTTPRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	JobEnqueueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_enqueue_total",
			Help:      "Total number of job enqueue attempt grouped by queue and result",
		},
		[]string{"queue", "result"},
	)

	WorkerIterationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_iteration_total",
			Help:      "Total number of worker loop iteration grouped by result",
		},
		[]string{"result"},
	)

	BatchProcessDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_process_duration_seconds",
			Help:      "Time taken to process one job batch",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
)

// Register registers all collectors into registerer. Already registered collector is ignored.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		HTTPRequestTotal,
		HTTPRequestDuration,
		JobEnqueueTotal,
		WorkerIterationTotal,
		BatchProcessDuration,
	}

	for _, c := range collectors {
		err := reg.Register(c)
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			continue
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// Handler returns handler exposing metrics from the default gatherer.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP record one finished HTTP request.
func ObserveHTTP(route, method string, status int, start time.Time) {
	HTTPRequestTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}

// Result returns "success" or "failure" label value.
func Result(err error) string {
	if err != nil {
		return "failure"
	}

	return "success"
}

package healthsvc

import (
	"context"
)

// Names of every reported connector.
const (
	NameRedis            = "redis"
	NamePostgres         = "postgreSQL"
	NameAPIKafkaClient   = "apiKafkaClient"
	NameAPIKafkaProducer = "apiKafkaProducer"
	NameJobQueue         = "jobQueue"
)

type Service interface {
	Check(ctx context.Context) (out OutCheck)
}

// Checker report state of one connector. Check must not panic and must respect ctx deadline.
type Checker interface {
	Name() string
	Check(ctx context.Context) Report
}

type Report interface {
	IsUp() bool
}

type OutCheck struct {
	// Healthy is true only when every connector is up.
	Healthy  bool
	Services map[string]Report
}

// Status is the minimum field set of every report. Error is null when the connector is up.
type Status struct {
	Up    bool    `json:"up"`
	Error *string `json:"error"`
}

func (s Status) IsUp() bool {
	return s.Up
}

func up() Status {
	return Status{Up: true}
}

func down(err error) Status {
	msg := err.Error()
	return Status{Up: false, Error: &msg}
}

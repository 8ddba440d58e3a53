package tracer

// LogData is propagated into every log line under "tracer" tag.
type LogData struct {
	RemoteAddr string `json:"remote_addr,omitempty"`
	TraceID    string `json:"trace_id,omitempty"`
	JobID      string `json:"job_id,omitempty"`
}

package jobsvc

import (
	"fmt"
	"time"

	"github.com/segmentio/encoding/json"
)

// JobMessage is the queue payload of one submitted job.
// Expiration is unix millisecond, zero means the job never expire.
type JobMessage struct {
	JobID      string          `json:"jobId"`
	Context    json.RawMessage `json:"context"`
	BundleID   string          `json:"bundleId"`
	Service    string          `json:"service"`
	Expiration int64           `json:"expiration"`
}

func (m JobMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Expired reports whether message expiration is passed at now.
func (m JobMessage) Expired(now time.Time) bool {
	return m.Expiration > 0 && now.UnixMilli() > m.Expiration
}

func UnmarshalJobMessage(b []byte) (msg JobMessage, err error) {
	err = json.Unmarshal(b, &msg)
	if err != nil {
		err = fmt.Errorf("malformed job message: %w", err)
		return
	}

	if msg.JobID == "" {
		err = fmt.Errorf("malformed job message: empty job id")
		return
	}

	return
}

func expiration(expireAt *time.Time) int64 {
	if expireAt == nil {
		return 0
	}

	return expireAt.UnixMilli()
}

package mailclient

import (
	"fmt"

	"go.uber.org/multierr"
)

// Email is ready to send email.
type Email struct {
	TrackingID string `json:"trackingId" validate:"required"`
	SenderAddr string `json:"senderAddr" validate:"required,email"`

	// Recipients is sent as separate email each, using the recipient as To address.
	Recipients []string `json:"recipients" validate:"required,min=1,dive,email"`
	Subject    string   `json:"subject" validate:"required"`
	Body       string   `json:"body" validate:"required"`
}

type RecvReport struct {
	To         string
	TrackingID string
	Error      error
}

type Report struct {
	RecvReports []RecvReport
}

// Err combine every recipient error, nil when all recipients accepted the email.
func (r Report) Err() (err error) {
	for _, recv := range r.RecvReports {
		if recv.Error != nil {
			err = multierr.Append(err, fmt.Errorf("send %s to %s: %w", recv.TrackingID, recv.To, recv.Error))
		}
	}

	return
}

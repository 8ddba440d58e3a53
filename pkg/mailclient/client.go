package mailclient

import (
	"context"
	"io"
)

// Client sends plain text email, one transaction per recipient so each recipient gets its own report.
type Client interface {
	io.Closer
	SendEmails(ctx context.Context, emails []Email) (report Report)
}

// Noop discards every email, used when mail.enable is false.
type Noop struct{}

var _ Client = (*Noop)(nil)

func (Noop) SendEmails(_ context.Context, emails []Email) (report Report) {
	report.RecvReports = make([]RecvReport, 0)
	for _, email := range emails {
		for _, to := range email.Recipients {
			report.RecvReports = append(report.RecvReports, RecvReport{To: to, TrackingID: email.TrackingID})
		}
	}

	return
}

func (Noop) Close() error {
	return nil
}

package mailclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"go.uber.org/multierr"
)

type SMTPConfig struct {
	Host string `validate:"required"`
	Port int    `validate:"required,min=1,max=65535"`

	// Username empty means no AUTH command is sent.
	Username string `validate:"-"`
	Password string `validate:"-"`

	// DialTimeout default to 10s
	DialTimeout time.Duration `validate:"-"`
}

type SMTP struct {
	config SMTPConfig
	smtp   *smtp.Client
	lock   sync.Mutex
}

var _ Client = (*SMTP)(nil)

// NewSMTP return smtp client without any real connection is made.
// It connects on the first SendEmails and reconnects when the connection is broken.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	err := validator.Validate(cfg)
	if err != nil {
		return nil, fmt.Errorf("smtp config: %w", err)
	}

	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	return &SMTP{config: cfg}, nil
}

func (m *SMTP) SendEmails(ctx context.Context, emails []Email) (report Report) {
	m.lock.Lock()
	defer m.lock.Unlock()

	report.RecvReports = make([]RecvReport, 0)
	for _, email := range emails {
		if err := validator.Validate(email); err != nil {
			report.RecvReports = append(report.RecvReports, RecvReport{
				To:         strings.Join(email.Recipients, ","),
				TrackingID: email.TrackingID,
				Error:      fmt.Errorf("invalid email: %w", err),
			})
			continue
		}

		for _, to := range email.Recipients {
			report.RecvReports = append(report.RecvReports, RecvReport{
				To:         to,
				TrackingID: email.TrackingID,
				Error:      m.sendEmail(ctx, to, email),
			})
		}
	}

	return
}

// sendEmail must be called while holding the lock.
func (m *SMTP) sendEmail(ctx context.Context, to string, email Email) (err error) {
	err = m.connect(ctx)
	if err != nil {
		return
	}

	// RSET aborts transaction left by previous failed send (rfc5321#section-4.1.1.5).
	err = m.smtp.Reset()
	if err != nil {
		err = fmt.Errorf("RSET cmd failed: %w", err)
		return
	}

	err = m.smtp.Mail(email.SenderAddr, nil)
	if err != nil {
		err = fmt.Errorf("MAIL cmd failed: %w", err)
		return
	}

	err = m.smtp.Rcpt(to)
	if err != nil {
		err = fmt.Errorf("RCPT cmd for %s failed: %w", to, err)
		return
	}

	wc, err := m.smtp.Data()
	if err != nil {
		err = fmt.Errorf("DATA cmd failed: %w", err)
		return
	}

	_, err = io.Copy(wc, bytes.NewReader(buildMessage(to, email)))
	if err != nil {
		_ = wc.Close()
		err = fmt.Errorf("error data copy: %w", err)
		return
	}

	err = wc.Close()
	if err != nil {
		err = fmt.Errorf("error data close: %w", err)
		return
	}

	return
}

// connect reuse the current connection when NOOP still works, otherwise dial a new one.
func (m *SMTP) connect(ctx context.Context) (err error) {
	if m.smtp != nil {
		if err = m.smtp.Noop(); err == nil {
			return
		}

		_ = m.smtp.Close()
		m.smtp = nil
	}

	m.smtp, err = initClient(ctx, m.config)
	if err != nil {
		err = fmt.Errorf("failed to init smtp client: %w", err)
		return
	}

	return
}

// Close sends QUIT, the connection is closed forcefully when QUIT fails.
func (m *SMTP) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.smtp == nil {
		return nil
	}

	client := m.smtp
	m.smtp = nil

	_err := client.Quit()
	if _err == nil {
		return nil
	}

	err := fmt.Errorf("quit command error: %w", _err)
	if _err = client.Close(); _err != nil {
		err = multierr.Append(err, fmt.Errorf("close command error: %w", _err))
	}

	return err
}

func initClient(ctx context.Context, cfg SMTPConfig) (*smtp.Client, error) {
	addr := net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port))

	dialer := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp dial error: %w", err)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error new smtp client: %w", err)
	}

	if ok, _ := c.Extension("STARTTLS"); ok {
		err = c.StartTLS(&tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12})
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("error start tls: %w", err)
		}
	}

	if cfg.Username != "" {
		err = c.Auth(sasl.NewPlainClient("", cfg.Username, cfg.Password))
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("error auth: %w", err)
		}
	}

	return c, nil
}

func buildMessage(to string, email Email) []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString(fmt.Sprintf("From: %s\r\n", email.SenderAddr))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")

	// bare LF is not allowed by smtp DATA
	body := strings.ReplaceAll(strings.ReplaceAll(email.Body, "\r\n", "\n"), "\n", "\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

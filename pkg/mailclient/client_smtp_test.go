package mailclient

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTPServer speaks just enough smtp for the client, RCPT to an address containing "reject" fails.
type fakeSMTPServer struct {
	ln net.Listener

	mu       sync.Mutex
	accepted int
	commands []string
	messages []string
}

func startFakeSMTPServer(t *testing.T) *fakeSMTPServer {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeSMTPServer{ln: ln}
	t.Cleanup(func() {
		_ = ln.Close()
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}

			s.mu.Lock()
			s.accepted++
			s.mu.Unlock()

			go s.serve(conn)
		}
	}()

	return s
}

func (s *fakeSMTPServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTPServer) serve(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	write := func(line string) {
		_, _ = conn.Write([]byte(line + "\r\n"))
	}

	write("220 localhost ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}

		cmd := strings.TrimRight(line, "\r\n")
		s.mu.Lock()
		s.commands = append(s.commands, cmd)
		s.mu.Unlock()

		switch strings.ToUpper(strings.SplitN(cmd, " ", 2)[0]) {
		case "EHLO", "HELO":
			write("250 localhost")

		case "RCPT":
			if strings.Contains(cmd, "reject") {
				write("550 no such user")
				continue
			}

			write("250 ok")

		case "DATA":
			write("354 end with <CR><LF>.<CR><LF>")
			lines := make([]string, 0)
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}

				if l == ".\r\n" {
					break
				}

				lines = append(lines, l)
			}

			s.mu.Lock()
			s.messages = append(s.messages, strings.Join(lines, ""))
			s.mu.Unlock()
			write("250 queued")

		case "QUIT":
			write("221 bye")
			return

		default:
			write("250 ok")
		}
	}
}

func (s *fakeSMTPServer) snapshot() (accepted int, commands, messages []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted, append([]string{}, s.commands...), append([]string{}, s.messages...)
}

func TestNewSMTP(t *testing.T) {
	client, err := NewSMTP(SMTPConfig{})
	assert.Error(t, err)
	assert.Nil(t, client)

	client, err = NewSMTP(SMTPConfig{Host: "localhost", Port: 25})
	assert.NoError(t, err)
	assert.NotNil(t, client)
	assert.NoError(t, client.Close())
}

func TestSMTP_SendEmails(t *testing.T) {
	server := startFakeSMTPServer(t)
	client, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: server.port()})
	require.NoError(t, err)

	email := Email{
		TrackingID: "job-1",
		SenderAddr: "marathon@example.com",
		Recipients: []string{"alice@example.com", "reject@example.com"},
		Subject:    "Push job created",
		Body:       "Hi there,\nJobID: job-1",
	}

	report := client.SendEmails(context.Background(), []Email{email})
	require.Len(t, report.RecvReports, 2)
	assert.Equal(t, "alice@example.com", report.RecvReports[0].To)
	assert.NoError(t, report.RecvReports[0].Error)
	assert.Equal(t, "reject@example.com", report.RecvReports[1].To)
	assert.Error(t, report.RecvReports[1].Error)
	assert.ErrorContains(t, report.Err(), "reject@example.com")

	// second send reuses the same connection
	report = client.SendEmails(context.Background(), []Email{{
		TrackingID: "job-2",
		SenderAddr: "marathon@example.com",
		Recipients: []string{"bob@example.com"},
		Subject:    "Push job completed",
		Body:       "done",
	}})
	assert.NoError(t, report.Err())

	require.NoError(t, client.Close())

	accepted, commands, messages := server.snapshot()
	assert.Equal(t, 1, accepted)
	assert.Contains(t, commands, "MAIL FROM:<marathon@example.com>")
	assert.Contains(t, commands, "RCPT TO:<alice@example.com>")
	assert.Equal(t, "QUIT", commands[len(commands)-1])

	require.Len(t, messages, 2)
	assert.Contains(t, messages[0], "To: alice@example.com\r\n")
	assert.Contains(t, messages[0], "Subject: Push job created\r\n")
	assert.Contains(t, messages[0], "Hi there,\r\nJobID: job-1\r\n")
	assert.Contains(t, messages[1], "To: bob@example.com\r\n")
}

func TestSMTP_SendEmails_Error(t *testing.T) {
	t.Run("server down", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := ln.Addr().(*net.TCPAddr).Port
		require.NoError(t, ln.Close())

		client, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: port})
		require.NoError(t, err)

		report := client.SendEmails(context.Background(), []Email{{
			TrackingID: "job-1",
			SenderAddr: "marathon@example.com",
			Recipients: []string{"alice@example.com"},
			Subject:    "s",
			Body:       "b",
		}})
		require.Len(t, report.RecvReports, 1)
		assert.ErrorContains(t, report.RecvReports[0].Error, "tcp dial error")
		assert.NoError(t, client.Close())
	})

	t.Run("invalid email", func(t *testing.T) {
		client, err := NewSMTP(SMTPConfig{Host: "127.0.0.1", Port: 25})
		require.NoError(t, err)

		report := client.SendEmails(context.Background(), []Email{{TrackingID: "job-1", SenderAddr: "marathon@example.com"}})
		require.Len(t, report.RecvReports, 1)
		assert.ErrorContains(t, report.RecvReports[0].Error, "invalid email")
	})
}

func TestNoop_SendEmails(t *testing.T) {
	report := Noop{}.SendEmails(context.Background(), []Email{
		{TrackingID: "job-1", Recipients: []string{"a@x.com", "b@x.com"}},
	})
	assert.Len(t, report.RecvReports, 2)
	assert.NoError(t, report.Err())
	assert.NoError(t, Noop{}.Close())
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("alice@example.com", Email{
		SenderAddr: "marathon@example.com",
		Subject:    "Push job completed",
		Body:       "line 1\nline 2\r\nline 3",
	})

	assert.Equal(t, "From: marathon@example.com\r\n"+
		"To: alice@example.com\r\n"+
		"Subject: Push job completed\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=utf-8\r\n\r\n"+
		"line 1\r\nline 2\r\nline 3\r\n", string(msg))
}

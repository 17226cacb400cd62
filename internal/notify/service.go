package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"procwatch/internal/config"
	"procwatch/internal/report"
)

// Service is the notification surface exposed to the daemon and CLI.
type Service interface {
	// SendFailureReport emails the failure digest, prefixed with the
	// user-supplied message, to the given recipients.
	SendFailureReport(ctx context.Context, recipients []string, message string, failed []report.Row) error
}

// NewService builds a mail service backed by the configured SMTP relay.
// When no SMTP host is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	host := strings.TrimSpace(cfg.SMTP.Host)
	if host == "" {
		return noopService{}
	}
	return &smtpService{
		host:   host,
		port:   cfg.SMTP.Port,
		sender: cfg.SMTP.Sender,
	}
}

type smtpService struct {
	host   string
	port   int
	sender string
}

func (s *smtpService) SendFailureReport(ctx context.Context, recipients []string, message string, failed []report.Row) error {
	if len(recipients) == 0 {
		return errors.New("no recipients selected")
	}

	body := BuildBody(message, failed)
	payload := formatMessage(s.sender, recipients, Subject, body)

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to smtp relay %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake with %s: %w", addr, err)
	}
	defer client.Close()

	if err := client.Mail(s.sender); err != nil {
		return fmt.Errorf("smtp sender rejected: %w", err)
	}
	for _, recipient := range recipients {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("smtp recipient %s rejected: %w", recipient, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write(payload); err != nil {
		writer.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}
	return client.Quit()
}

func formatMessage(sender string, recipients []string, subject, body string) []byte {
	var builder strings.Builder
	builder.WriteString("From: " + sender + "\r\n")
	builder.WriteString("To: " + strings.Join(recipients, ", ") + "\r\n")
	builder.WriteString("Subject: " + subject + "\r\n")
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	builder.WriteString("\r\n")
	return []byte(builder.String())
}

type noopService struct{}

func (noopService) SendFailureReport(context.Context, []string, string, []report.Row) error {
	return nil
}

// Package mail emails receipts to customers over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	applog "goldloan/internal/log"
	"goldloan/internal/receipt"
)

var ErrInvalidRecipient = errors.New("invalid recipient address")

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Sender sends receipt emails
type Sender struct {
	cfg    Config
	logger *applog.Logger
	send   func(e *email.Email) error
}

// NewSender creates a new email sender
func NewSender(cfg Config, logger *applog.Logger) *Sender {
	s := &Sender{
		cfg:    cfg,
		logger: logger.WithComponent(applog.ComponentMail),
	}
	s.send = s.sendSMTP
	return s
}

func (s *Sender) sendSMTP(e *email.Email) error {
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return e.Send(s.cfg.Host+":"+s.cfg.Port, auth)
}

// SendReceipt emails r to the given address with the PDF attached.
func (s *Sender) SendReceipt(ctx context.Context, to string, r receipt.Receipt) error {
	addr, err := ParseRecipient(to)
	if err != nil {
		return err
	}

	var pdf bytes.Buffer
	if err := r.PDF(&pdf); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{addr}
	e.Subject = fmt.Sprintf("%s - Loan Receipt %s", r.Business.Name, r.Number)
	e.Text = []byte(receiptBody(r))
	if _, err := e.Attach(&pdf, r.Filename(), "application/pdf"); err != nil {
		return fmt.Errorf("attach receipt: %w", err)
	}

	if err := s.sendContext(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send receipt email",
			applog.FieldReceiptNumber, r.Number,
			applog.FieldError, err,
			applog.FieldOperation, applog.OpEmail)
		return fmt.Errorf("send receipt email: %w", err)
	}

	s.logger.InfoContext(ctx, "Receipt emailed",
		applog.FieldReceiptNumber, r.Number,
		applog.FieldOperation, applog.OpEmail)
	return nil
}

// sendContext returns when the send finishes or ctx ends, whichever is
// first. The SMTP exchange itself cannot be interrupted, so an abandoned
// send runs to completion in the background.
func (s *Sender) sendContext(ctx context.Context, e *email.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- s.send(e) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ParseRecipient returns the bare address of to, or an error wrapping
// ErrInvalidRecipient.
func ParseRecipient(to string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(to))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	return addr.Address, nil
}

func receiptBody(r receipt.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", r.Customer.Name)
	fmt.Fprintf(&b, "Please find attached the receipt for your loan against %s (%s).\n\n", r.Customer.Item, r.Customer.Weight)
	for _, row := range r.SummaryRows() {
		fmt.Fprintf(&b, "%s: %s\n", row.Label, row.Value)
	}
	fmt.Fprintf(&b, "\nBest regards,\n%s\n", r.Business.Name)
	if r.Business.Address != "" {
		fmt.Fprintf(&b, "%s\n", r.Business.Address)
	}
	return b.String()
}

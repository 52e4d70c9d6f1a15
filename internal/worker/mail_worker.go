// Package worker moves receipt emails through the AMQP queue: the web
// server publishes with QueuedMailer and the mailer process delivers with
// MailWorker.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"goldloan/internal/amqp"
	applog "goldloan/internal/log"
	"goldloan/internal/mail"
	"goldloan/internal/middleware/trace"
	"goldloan/internal/receipt"
)

// ReceiptSender delivers one receipt, normally *mail.Sender.
type ReceiptSender interface {
	SendReceipt(ctx context.Context, to string, r receipt.Receipt) error
}

// Publisher queues a receipt email, normally *amqp.Client.
type Publisher interface {
	PublishReceiptMail(ctx context.Context, msg *amqp.ReceiptMailMessage) error
}

// MailWorker sends receipts taken off the queue.
type MailWorker struct {
	sender ReceiptSender
	logger *applog.Logger

	sent   atomic.Int64
	failed atomic.Int64
}

func NewMailWorker(sender ReceiptSender, logger *applog.Logger) *MailWorker {
	return &MailWorker{
		sender: sender,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleReceiptMail sends one queued receipt. A bad recipient cannot be
// fixed by redelivery, so that error is marked amqp.ErrDiscard.
func (w *MailWorker) HandleReceiptMail(ctx context.Context, msg *amqp.ReceiptMailMessage) error {
	logger := w.logger
	if msg.RequestID != "" {
		logger = logger.With(applog.FieldRequestID, msg.RequestID)
	}
	logger.InfoContext(ctx, "Processing receipt email",
		applog.FieldReceiptNumber, msg.Receipt.Number,
		"queued_at", msg.Timestamp)

	if err := w.sender.SendReceipt(ctx, msg.To, msg.Receipt); err != nil {
		w.failed.Add(1)
		if errors.Is(err, mail.ErrInvalidRecipient) {
			return fmt.Errorf("%w: %v", amqp.ErrDiscard, err)
		}
		return fmt.Errorf("send receipt %s: %w", msg.Receipt.Number, err)
	}

	w.sent.Add(1)
	return nil
}

// Stats returns how many receipts were sent and how many attempts failed.
func (w *MailWorker) Stats() (sent, failed int64) {
	return w.sent.Load(), w.failed.Load()
}

// QueuedMailer satisfies the HTTP server's mailer by publishing to the
// queue instead of talking to SMTP.
type QueuedMailer struct {
	pub    Publisher
	logger *applog.Logger
}

func NewQueuedMailer(pub Publisher, logger *applog.Logger) *QueuedMailer {
	return &QueuedMailer{pub: pub, logger: logger.WithComponent(applog.ComponentQueue)}
}

// SendReceipt validates the address up front so the visitor still gets an
// immediate answer for a typo.
func (q *QueuedMailer) SendReceipt(ctx context.Context, to string, r receipt.Receipt) error {
	addr, err := mail.ParseRecipient(to)
	if err != nil {
		return err
	}
	msg := amqp.NewReceiptMailMessage(addr, trace.GetRequestID(ctx), r)
	if err := q.pub.PublishReceiptMail(ctx, msg); err != nil {
		q.logger.ErrorContext(ctx, "Failed to queue receipt email",
			applog.FieldReceiptNumber, r.Number,
			applog.FieldError, err)
		return fmt.Errorf("queue receipt email: %w", err)
	}
	return nil
}

// Ping checks the queue connection when the publisher can report it.
func (q *QueuedMailer) Ping(ctx context.Context) error {
	if p, ok := q.pub.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

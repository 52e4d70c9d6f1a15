package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	applog "goldloan/internal/log"
	"goldloan/internal/mail"
	"goldloan/internal/session"
)

const emailTimeout = 30 * time.Second

// handleReceipt stores the customer details and shows the printable receipt.
func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	sess, err := s.loadSession(w, r)
	if err != nil {
		s.sessionFailure(w, r, err, applog.OpPreview)
		return
	}

	if err := sess.AttachCustomer(ParseCustomer(r.PostForm)); err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentReceipt).WarnContext(ctx, "Receipt details rejected",
			applog.FieldSessionID, sess.ID,
			applog.FieldWizardState, sess.State.String(),
			applog.FieldError, err)
		if errors.Is(err, session.ErrWrongState) {
			ConflictError("Calculate the loan before generating a receipt.").Write(w)
			return
		}
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}

	if err := s.saveSession(r, sess); err != nil {
		s.sessionFailure(w, r, err, applog.OpPreview)
		return
	}
	s.appMetrics.inc(&s.appMetrics.receiptsIssued)
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogReceiptIssued(ctx, sess.ID, sess.ReceiptNumber, applog.OpPreview)

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	b := NewHTMXResponse().TriggerReceiptIssued(sess.ReceiptNumber)
	s.writeTemplate(w, r, b, "receipt", s.receiptView(s.loanReceipt(sess)))
}

// handleReceiptPDF streams the receipt as a PDF download.
func (s *Server) handleReceiptPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.loadSession(w, r)
	if err != nil {
		s.sessionFailure(w, r, err, applog.OpExportPDF)
		return
	}
	if !sess.HasReceipt() {
		ConflictError("Generate a receipt before downloading it.").Write(w)
		return
	}

	rec := s.loanReceipt(sess)
	var buf bytes.Buffer
	if err := rec.PDF(&buf); err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "PDF generation failed", err,
			applog.ComponentReceipt, applog.OpExportPDF,
			applog.NewFields().WithSessionID(sess.ID).WithErrorType(applog.ErrorTypeInternal))
		InternalServerError("Could not generate the PDF. Please try again.").Write(w)
		return
	}

	s.appMetrics.inc(&s.appMetrics.pdfDownloads)
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogReceiptIssued(ctx, sess.ID, rec.Number, applog.OpExportPDF)

	NewHTMXResponse().
		Header("Content-Type", "application/pdf").
		Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rec.Filename()})).
		Header("Content-Length", strconv.Itoa(buf.Len())).
		Body(buf.Bytes()).
		Write(w)
}

// handleReceiptEmail sends the receipt PDF to the given address.
func (s *Server) handleReceiptEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.mailer == nil {
		ServiceUnavailableError("Email delivery is not configured.").Write(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	sess, err := s.loadSession(w, r)
	if err != nil {
		s.sessionFailure(w, r, err, applog.OpEmail)
		return
	}
	if !sess.HasReceipt() {
		ConflictError("Generate a receipt before emailing it.").Write(w)
		return
	}

	to := strings.TrimSpace(sanitizeInput(r.PostForm.Get(fieldEmail)))
	if to == "" {
		UnprocessableEntityError("Please enter an email address.").Write(w)
		return
	}

	rec := s.loanReceipt(sess)
	sendCtx, cancel := context.WithTimeout(ctx, emailTimeout)
	defer cancel()
	if err := s.mailer.SendReceipt(sendCtx, to, rec); err != nil {
		if errors.Is(err, mail.ErrInvalidRecipient) {
			UnprocessableEntityError("Please enter a valid email address.").Write(w)
			return
		}
		s.appMetrics.inc(&s.appMetrics.emailsFailed)
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Receipt email failed", err,
			applog.ComponentMail, applog.OpEmail,
			applog.NewFields().WithSessionID(sess.ID).WithErrorType(applog.ErrorTypeNetwork))
		ErrorResponse(http.StatusBadGateway, "Could not send the receipt email. Please try again later.").
			TriggerErrorNotification("Receipt email failed").
			Write(w)
		return
	}

	s.appMetrics.inc(&s.appMetrics.emailsSent)
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogReceiptIssued(ctx, sess.ID, rec.Number, applog.OpEmail)

	NewHTMXResponse().
		TriggerSuccessNotification("Receipt sent to " + to).
		BodyHTML(`<div class="success">Receipt sent to ` + template.HTMLEscapeString(to) + `</div>`).
		Write(w)
}

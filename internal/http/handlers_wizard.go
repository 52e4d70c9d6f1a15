package http

import (
	"errors"
	"net/http"

	"goldloan/internal/core"
	applog "goldloan/internal/log"
	"goldloan/internal/session"
)

// handleIndex renders the wizard at its current step, or the receipt once
// one has been generated.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		s.sessionFailure(w, r, err, applog.OpRender)
		return
	}

	data := pageView{
		Business: s.business,
		Wizard:   s.wizardView(sess, LoanInput{}),
	}
	if sess.HasReceipt() {
		data.Receipt = s.receiptView(s.loanReceipt(sess))
	}
	s.writeTemplate(w, r, NewHTMXResponse(), "index.html", data)
}

// handleCalculate runs the accrual for the submitted loan and advances the
// wizard to Calculated.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentAccrual)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	sess, err := s.loadSession(w, r)
	if err != nil {
		s.sessionFailure(w, r, err, applog.OpCalculate)
		return
	}

	input := ParseLoanInput(r.PostForm)
	req, err := input.Validate(MinPrincipal, s.business.CurrencySymbol)
	if err == nil {
		var result core.AccrualResult
		if result, err = s.policy.AccrueStrict(req.Principal, req.Period); err == nil {
			err = sess.Calculate(req.Principal, req.Period, result)
		}
	}
	if err != nil {
		logger.WarnContext(ctx, "Loan input rejected",
			applog.FieldSessionID, sess.ID,
			applog.FieldError, err,
			applog.FieldOperation, applog.OpValidate)
		if errors.Is(err, session.ErrWrongState) {
			ConflictError("A calculation is already shown. Start a new calculation first.").Write(w)
			return
		}
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}

	if err := s.saveSession(r, sess); err != nil {
		s.sessionFailure(w, r, err, applog.OpCalculate)
		return
	}
	s.appMetrics.inc(&s.appMetrics.calculations)
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogAccrualCalculated(ctx, sess.ID,
		sess.Principal, sess.Period.Start.String(), sess.Period.End.String(),
		sess.Result.TotalMonths, sess.Result.TotalInterest, sess.Result.TotalPayable)

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	b := NewHTMXResponse().TriggerLoanCalculated(
		sess.Result.TotalMonths,
		sess.Result.TotalInterest.StringFixed(2),
		sess.Result.TotalPayable.StringFixed(2))
	s.writeTemplate(w, r, b, "wizard", s.wizardView(sess, input))
}

// handleReset discards the calculation and shows an empty loan form.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.loadSession(w, r)
	if err != nil {
		s.sessionFailure(w, r, err, applog.OpReset)
		return
	}
	previous := sess.State
	sess.Reset()
	if err := s.saveSession(r, sess); err != nil {
		s.sessionFailure(w, r, err, applog.OpReset)
		return
	}
	applog.FromContext(ctx).WithComponent(applog.ComponentSession).InfoContext(ctx, "Wizard reset",
		applog.FieldSessionID, sess.ID,
		applog.FieldWizardState, previous.String(),
		applog.FieldOperation, applog.OpReset)

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	b := NewHTMXResponse().TriggerWizardReset().TriggerFormReset()
	s.writeTemplate(w, r, b, "wizard", s.wizardView(sess, LoanInput{}))
}

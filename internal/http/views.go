package http

import (
	"goldloan/internal/core"
	"goldloan/internal/receipt"
	"goldloan/internal/session"
)

// pageView is the data for index.html.
type pageView struct {
	Business receipt.Business
	Wizard   wizardView
	Receipt  *receiptView
}

// wizardView is the data for the "wizard" template.
type wizardView struct {
	State      string
	Calculated bool
	Currency   string
	MinAmount  string

	// Loan form values, echoed back after a failed submit
	Amount    string
	StartDate string
	EndDate   string

	Summary  []receipt.Row
	Cycles   []receipt.Row
	Customer core.Customer
}

// receiptView is the data for the "receipt" template.
type receiptView struct {
	Number      string
	Date        string
	Business    receipt.Business
	Customer    []receipt.Row
	Summary     []receipt.Row
	Cycles      []receipt.Row
	MailEnabled bool
}

func (s *Server) wizardView(sess *session.Session, input LoanInput) wizardView {
	today := s.now().Format(core.DateLayout)
	v := wizardView{
		State:     sess.State.String(),
		Currency:  s.business.CurrencySymbol,
		MinAmount: MinPrincipal.String(),
		Amount:    input.Amount,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if v.StartDate == "" {
		v.StartDate = today
	}
	if v.EndDate == "" {
		v.EndDate = today
	}

	if sess.State == session.Calculated {
		v.Calculated = true
		rec := s.loanReceipt(sess)
		v.Summary = rec.SummaryRows()
		v.Cycles = rec.CycleRows()
		if sess.Customer != nil {
			v.Customer = *sess.Customer
		}
	}
	return v
}

// loanReceipt builds the receipt for a calculated session. Customer and
// Number are empty until details are attached.
func (s *Server) loanReceipt(sess *session.Session) receipt.Receipt {
	rec := receipt.Receipt{
		Number:    sess.ReceiptNumber,
		IssuedOn:  sess.UpdatedAt,
		Business:  s.business,
		Principal: sess.Principal,
		Period:    sess.Period,
		Result:    sess.Result,
		Cycles:    s.policy.Schedule(sess.Principal, sess.Period.Start, sess.Period.End),
	}
	if sess.Customer != nil {
		rec.Customer = *sess.Customer
	}
	return rec
}

func (s *Server) receiptView(rec receipt.Receipt) *receiptView {
	return &receiptView{
		Number:      rec.Number,
		Date:        rec.Date(),
		Business:    rec.Business,
		Customer:    rec.CustomerRows(),
		Summary:     rec.SummaryRows(),
		Cycles:      rec.CycleRows(),
		MailEnabled: s.mailer != nil,
	}
}

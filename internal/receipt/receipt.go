// Package receipt turns a completed calculation into a customer receipt,
// both as view data for the print preview and as a PDF document.
package receipt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"goldloan/internal/core"
)

// Business is the lender shown in the receipt header.
type Business struct {
	Name           string
	Address        string
	CurrencySymbol string
}

// Row is one label/value line of a receipt section.
type Row struct {
	Label string
	Value string
}

// Receipt is everything printed on a loan receipt.
type Receipt struct {
	Number    string
	IssuedOn  time.Time
	Business  Business
	Customer  core.Customer
	Principal decimal.Decimal
	Period    core.LoanPeriod
	Result    core.AccrualResult
	Cycles    []core.Cycle
}

// Date is the issue date as printed (dd-mm-yyyy).
func (r Receipt) Date() string {
	return r.IssuedOn.Format("02-01-2006")
}

// CustomerRows lists the customer section in print order.
func (r Receipt) CustomerRows() []Row {
	return []Row{
		{"Name", r.Customer.Name},
		{"Item", r.Customer.Item},
		{"Weight", r.Customer.Weight},
		{"Address", r.Customer.Address},
	}
}

// SummaryRows lists the loan summary section in print order.
func (r Receipt) SummaryRows() []Row {
	sym := r.Business.CurrencySymbol
	return []Row{
		{"Loan Amount", core.FormatAmount(sym, r.Principal)},
		{"Start Date", r.Period.Start.Display()},
		{"End Date", r.Period.End.Display()},
		{"Months Charged", strconv.Itoa(r.Result.TotalMonths)},
		{"Interest", core.FormatAmount(sym, r.Result.TotalInterest)},
		{"Total Payable", core.FormatAmount(sym, r.Result.TotalPayable)},
	}
}

// CycleRows describes each compounding cycle, e.g. "12 months at 3%".
func (r Receipt) CycleRows() []Row {
	sym := r.Business.CurrencySymbol
	rows := make([]Row, 0, len(r.Cycles))
	for i, c := range r.Cycles {
		rows = append(rows, Row{
			Label: fmt.Sprintf("Cycle %d: %d months at %s%% on %s", i+1, c.Months, c.RatePercent.String(), core.FormatAmount(sym, c.OpeningPrincipal.Round(2))),
			Value: core.FormatAmount(sym, c.Interest.Round(2)),
		})
	}
	return rows
}

// Filename is the download name, e.g. "Loan_Receipt_Ravi_Teja.pdf".
func (r Receipt) Filename() string {
	name := strings.Map(func(c rune) rune {
		switch {
		case c == ' ':
			return '_'
		case c == '_' || c == '-':
			return c
		case c < unicode.MaxASCII && (unicode.IsLetter(c) || unicode.IsDigit(c)):
			return c
		}
		return -1
	}, strings.TrimSpace(r.Customer.Name))
	if name == "" {
		name = r.Number
	}
	return "Loan_Receipt_" + name + ".pdf"
}

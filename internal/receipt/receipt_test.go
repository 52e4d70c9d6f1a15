package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldloan/internal/core"
)

func sampleReceipt() Receipt {
	principal := decimal.NewFromInt(4000)
	start, end := core.NewDate(2022, 1, 20), core.NewDate(2023, 2, 20)
	return Receipt{
		Number:   "GL-0123456789",
		IssuedOn: time.Date(2023, 3, 21, 9, 30, 0, 0, time.UTC),
		Business: Business{
			Name:           "PRAVEEN KUMAR FINANCE",
			Address:        "Gandhi Road, Vijayawada, Andhra Pradesh",
			CurrencySymbol: "₹",
		},
		Customer:  core.Customer{Name: "Ravi Teja", Item: "Gold Ring", Weight: "10g", Address: "Benz Circle"},
		Principal: principal,
		Period:    core.LoanPeriod{Start: start, End: end},
		Result:    core.Accrue(principal, start, end),
		Cycles:    core.DefaultPolicy.Schedule(principal, start, end),
	}
}

func TestSummaryRows(t *testing.T) {
	r := sampleReceipt()
	assert.Equal(t, []Row{
		{"Loan Amount", "₹4000.00"},
		{"Start Date", "20-01-2022"},
		{"End Date", "20-02-2023"},
		{"Months Charged", "14"},
		{"Interest", "₹1657.60"},
		{"Total Payable", "₹5657.60"},
	}, r.SummaryRows())
	assert.Equal(t, "21-03-2023", r.Date())
}

func TestCustomerRows(t *testing.T) {
	rows := sampleReceipt().CustomerRows()
	require.Len(t, rows, 4)
	assert.Equal(t, Row{"Name", "Ravi Teja"}, rows[0])
	assert.Equal(t, Row{"Address", "Benz Circle"}, rows[3])
}

func TestCycleRows(t *testing.T) {
	rows := sampleReceipt().CycleRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Cycle 1: 12 months at 3% on ₹4000.00", rows[0].Label)
	assert.Equal(t, "₹1440.00", rows[0].Value)
	assert.Equal(t, "Cycle 2: 2 months at 2% on ₹5440.00", rows[1].Label)
	assert.Equal(t, "₹217.60", rows[1].Value)
}

func TestFilename(t *testing.T) {
	r := sampleReceipt()
	assert.Equal(t, "Loan_Receipt_Ravi_Teja.pdf", r.Filename())

	r.Customer.Name = "  ../Sita; rm -rf  "
	assert.Equal(t, "Loan_Receipt_Sita_rm_-rf.pdf", r.Filename())

	r.Customer.Name = "श्री"
	assert.Equal(t, "Loan_Receipt_GL-0123456789.pdf", r.Filename())
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReceipt().PDF(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "missing PDF header")
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("%%EOF")), "missing PDF trailer")
}

func TestPDFContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReceipt().writePDF(&buf, false))

	out := buf.String()
	for _, want := range []string{
		"PRAVEEN KUMAR FINANCE",
		"Customer Details",
		"Loan Summary",
		"Interest Cycles",
		"Total Payable: Rs. 5657.60",
		"Date: 21-03-2023",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "₹")
}

func TestPDFIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, sampleReceipt().PDF(&a))
	require.NoError(t, sampleReceipt().PDF(&b))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

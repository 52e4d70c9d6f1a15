package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s: want %s, got %s", msg, want, got)
}

func TestMonthsChargeable(t *testing.T) {
	tests := []struct {
		name       string
		start, end Date
		want       int
	}{
		{"same month after cutoff", NewDate(2024, 1, 2), NewDate(2024, 1, 15), 1},
		{"same month on cutoff", NewDate(2024, 1, 2), NewDate(2024, 1, 10), 0},
		{"next month after cutoff", NewDate(2023, 1, 15), NewDate(2023, 2, 11), 2},
		{"next month before cutoff", NewDate(2023, 1, 15), NewDate(2023, 2, 5), 1},
		{"across year", NewDate(2022, 1, 20), NewDate(2023, 2, 20), 14},
		{"across year, later month", NewDate(2022, 1, 20), NewDate(2023, 3, 20), 15},
		{"december to january", NewDate(2023, 12, 20), NewDate(2024, 1, 20), 2},
		{"reversed dates", NewDate(2024, 3, 15), NewDate(2024, 1, 5), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsChargeable(tt.start, tt.end))
		})
	}
}

func TestInterestRatePercent(t *testing.T) {
	assertDecimal(t, "3", InterestRatePercent(dec("100")), "small loan")
	assertDecimal(t, "3", InterestRatePercent(dec("4999.99")), "just below threshold")
	assertDecimal(t, "2", InterestRatePercent(dec("5000")), "at threshold")
	assertDecimal(t, "2", InterestRatePercent(dec("250000")), "large loan")
}

func TestAccrue_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		principal  string
		start, end Date
		months     int
		interest   string
		payable    string
	}{
		{"single cycle high rate", "10000", NewDate(2023, 1, 15), NewDate(2023, 4, 15), 4, "800.00", "10800.00"},
		{"cutoff drops last month", "3000", NewDate(2023, 1, 15), NewDate(2023, 2, 5), 1, "90.00", "3090.00"},
		{"compounding crosses threshold", "4000", NewDate(2022, 1, 20), NewDate(2023, 2, 20), 14, "1657.60", "5657.60"},
		{"second cycle runs three months", "4000", NewDate(2022, 1, 20), NewDate(2023, 3, 20), 15, "1766.40", "5766.40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Accrue(dec(tt.principal), tt.start, tt.end)
			assert.Equal(t, tt.months, res.TotalMonths)
			assertDecimal(t, tt.interest, res.TotalInterest, "interest")
			assertDecimal(t, tt.payable, res.TotalPayable, "payable")
		})
	}
}

func TestAccrue_ZeroMonths(t *testing.T) {
	res := Accrue(dec("7500"), NewDate(2024, 1, 2), NewDate(2024, 1, 5))
	require.Equal(t, 0, res.TotalMonths)
	assert.True(t, res.TotalInterest.IsZero())
	assertDecimal(t, "7500", res.TotalPayable, "payable")
}

func TestAccrue_NegativeMonthsAccruesNothing(t *testing.T) {
	res := Accrue(dec("7500"), NewDate(2024, 3, 15), NewDate(2024, 1, 5))
	assert.Equal(t, -2, res.TotalMonths)
	assert.True(t, res.TotalInterest.IsZero())
	assertDecimal(t, "7500", res.TotalPayable, "payable")
}

func TestAccrue_ThresholdAtCycleBoundary(t *testing.T) {
	// One-month cycles at 100 % double 2500 into exactly 5000 after the first cycle.
	p := DefaultPolicy
	p.CycleMonths = 1
	p.LowRatePercent = dec("100")

	cycles := p.Schedule(dec("2500"), NewDate(2024, 1, 15), NewDate(2024, 2, 15))
	require.Len(t, cycles, 2)
	assertDecimal(t, "5000", cycles[1].OpeningPrincipal, "second cycle principal")
	assertDecimal(t, "2", cycles[1].RatePercent, "rate at exactly the threshold")
}

func TestAccrue_PayableIsPrincipalPlusInterest(t *testing.T) {
	principals := []string{"100", "999.99", "4999.99", "5000", "12345.67", "4000.01"}
	start := NewDate(2020, 5, 17)
	for _, ps := range principals {
		for m := 0; m < 60; m++ {
			end := Date{Time: start.AddDate(0, m, m%28)}
			res := Accrue(dec(ps), start, end)
			want := dec(ps).Add(res.TotalInterest).Round(2)
			assert.True(t, res.TotalPayable.Equal(want),
				"principal %s end %s: payable %s, principal+interest %s", ps, end, res.TotalPayable, want)
			assert.False(t, res.TotalInterest.IsNegative())
		}
	}
}

func TestAccrue_MonotonicInEndDate(t *testing.T) {
	start := NewDate(2021, 6, 12)
	for _, ps := range []string{"1500", "4000", "5000", "80000"} {
		prev := Accrue(dec(ps), start, Date{Time: start.AddDate(0, 0, 1)})
		for d := 2; d < 6*365; d += 3 {
			end := Date{Time: start.AddDate(0, 0, d)}
			res := Accrue(dec(ps), start, end)
			require.GreaterOrEqual(t, res.TotalMonths, prev.TotalMonths, "months at %s", end)
			require.True(t, res.TotalInterest.GreaterThanOrEqual(prev.TotalInterest), "interest at %s", end)
			require.True(t, res.TotalPayable.GreaterThanOrEqual(prev.TotalPayable), "payable at %s", end)
			prev = res
		}
	}
}

func TestAccrue_Deterministic(t *testing.T) {
	a := Accrue(dec("4321.09"), NewDate(2019, 2, 28), NewDate(2024, 8, 11))
	b := Accrue(dec("4321.09"), NewDate(2019, 2, 28), NewDate(2024, 8, 11))
	assert.Equal(t, a.TotalMonths, b.TotalMonths)
	assert.Equal(t, a.TotalInterest.String(), b.TotalInterest.String())
	assert.Equal(t, a.TotalPayable.String(), b.TotalPayable.String())
}

func TestSchedule(t *testing.T) {
	cycles := DefaultPolicy.Schedule(dec("4000"), NewDate(2022, 1, 20), NewDate(2023, 2, 20))
	require.Len(t, cycles, 2)

	assert.Equal(t, 12, cycles[0].Months)
	assertDecimal(t, "3", cycles[0].RatePercent, "first rate")
	assertDecimal(t, "4000", cycles[0].OpeningPrincipal, "first principal")
	assertDecimal(t, "1440", cycles[0].Interest, "first interest")

	assert.Equal(t, 2, cycles[1].Months)
	assertDecimal(t, "2", cycles[1].RatePercent, "second rate")
	assertDecimal(t, "5440", cycles[1].OpeningPrincipal, "second principal")
	assertDecimal(t, "217.6", cycles[1].Interest, "second interest")

	assert.Empty(t, DefaultPolicy.Schedule(dec("4000"), NewDate(2024, 1, 2), NewDate(2024, 1, 3)))
}

func TestAccrueStrict(t *testing.T) {
	period, err := NewLoanPeriod(NewDate(2023, 1, 15), NewDate(2023, 4, 15))
	require.NoError(t, err)

	res, err := AccrueStrict(dec("10000"), period)
	require.NoError(t, err)
	assertDecimal(t, "10800", res.TotalPayable, "payable")

	_, err = AccrueStrict(decimal.Zero, period)
	assert.True(t, errors.Is(err, ErrInvalidAmount))

	reversed := LoanPeriod{Start: NewDate(2023, 4, 15), End: NewDate(2023, 1, 15)}
	_, err = AccrueStrict(dec("10000"), reversed)
	assert.True(t, errors.Is(err, ErrInvalidPeriod))

	same := LoanPeriod{Start: NewDate(2023, 4, 15), End: NewDate(2023, 4, 15)}
	_, err = AccrueStrict(dec("10000"), same)
	assert.True(t, errors.Is(err, ErrInvalidPeriod))
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy.Validate())

	bad := DefaultPolicy
	bad.CycleMonths = 0
	assert.Error(t, bad.Validate())

	bad = DefaultPolicy
	bad.RateThreshold = decimal.Zero
	assert.Error(t, bad.Validate())

	bad = DefaultPolicy
	bad.LowRatePercent = dec("-1")
	assert.Error(t, bad.Validate())

	bad = DefaultPolicy
	bad.CutoffDay = 40
	assert.Error(t, bad.Validate())
}

// Command accrue prints the interest due on a gold loan.
//
//	accrue -amount 4000 -start 2022-01-20 -end 2023-02-20 [-json] [-cycles]
//
// The accrual policy and currency symbol come from the same environment
// variables as the server.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"goldloan/internal/cli"
	"goldloan/internal/config"
	"goldloan/internal/core"
	applog "goldloan/internal/log"
	"goldloan/internal/receipt"
)

func main() {
	cli.LoadEnvFile()
	if err := run(os.Args[1:], os.Stdout, os.Stderr, config.Load()); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "accrue:", err)
		}
		os.Exit(2)
	}
}

type output struct {
	Principal     string        `json:"principal"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	TotalMonths   int           `json:"total_months"`
	TotalInterest string        `json:"total_interest"`
	TotalPayable  string        `json:"total_payable"`
	Cycles        []outputCycle `json:"cycles,omitempty"`
}

type outputCycle struct {
	Months           int    `json:"months"`
	RatePercent      string `json:"rate_percent"`
	OpeningPrincipal string `json:"opening_principal"`
	Interest         string `json:"interest"`
}

func run(args []string, stdout, stderr io.Writer, cfg *config.Config) error {
	fs := flag.NewFlagSet("accrue", flag.ContinueOnError)
	fs.SetOutput(stderr)
	amount := fs.String("amount", "", "loan amount, e.g. 4000 or 4000.50")
	start := fs.String("start", "", "loan date (YYYY-MM-DD)")
	end := fs.String("end", "", "return date (YYYY-MM-DD)")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	withCycles := fs.Bool("cycles", false, "include the compounding cycles")
	lenient := fs.Bool("lenient", false, "accept a return date on or before the loan date (charges 0 months or fewer)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level, err := applog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = applog.DefaultConfig().Level
	}
	logger := applog.New(applog.Config{Level: level, Format: cfg.LogFormat, Component: applog.ComponentCLI, Output: stderr})

	policy := cfg.Policy()
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("invalid accrual policy: %w", err)
	}

	principal, err := core.ParseAmount(*amount)
	if err != nil {
		return fmt.Errorf("-amount %q: %w", *amount, err)
	}
	startDate, err := core.ParseDate(*start)
	if err != nil {
		return fmt.Errorf("-start %q: %w", *start, err)
	}
	endDate, err := core.ParseDate(*end)
	if err != nil {
		return fmt.Errorf("-end %q: %w", *end, err)
	}

	var result core.AccrualResult
	if *lenient {
		result = policy.Accrue(principal, startDate, endDate)
	} else {
		result, err = policy.AccrueStrict(principal, core.LoanPeriod{Start: startDate, End: endDate})
		if err != nil {
			return err
		}
	}
	logger.Debug("Accrual calculated",
		applog.NewFields().
			WithLoan(principal, startDate.String(), endDate.String()).
			WithAccrual(result.TotalMonths, result.TotalInterest, result.TotalPayable).
			ToSlice()...)

	var cycles []core.Cycle
	if *withCycles {
		cycles = policy.Schedule(principal, startDate, endDate)
	}

	if *asJSON {
		return writeJSON(stdout, principal, startDate, endDate, result, cycles)
	}
	return writeTable(stdout, cfg.CurrencySymbol, principal, startDate, endDate, result, cycles)
}

func writeJSON(w io.Writer, principal decimal.Decimal, start, end core.Date, result core.AccrualResult, cycles []core.Cycle) error {
	out := output{
		Principal:     principal.StringFixed(2),
		StartDate:     start.String(),
		EndDate:       end.String(),
		TotalMonths:   result.TotalMonths,
		TotalInterest: result.TotalInterest.StringFixed(2),
		TotalPayable:  result.TotalPayable.StringFixed(2),
	}
	for _, c := range cycles {
		out.Cycles = append(out.Cycles, outputCycle{
			Months:           c.Months,
			RatePercent:      c.RatePercent.String(),
			OpeningPrincipal: c.OpeningPrincipal.StringFixed(2),
			Interest:         c.Interest.StringFixed(2),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeTable(w io.Writer, symbol string, principal decimal.Decimal, start, end core.Date, result core.AccrualResult, cycles []core.Cycle) error {
	rec := receipt.Receipt{
		Business:  receipt.Business{CurrencySymbol: symbol},
		Principal: principal,
		Period:    core.LoanPeriod{Start: start, End: end},
		Result:    result,
		Cycles:    cycles,
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range rec.SummaryRows() {
		fmt.Fprintf(tw, "%s:\t%s\n", row.Label, row.Value)
	}
	if len(cycles) > 0 {
		fmt.Fprintln(tw)
		for _, row := range rec.CycleRows() {
			fmt.Fprintf(tw, "%s\t%s\n", row.Label, row.Value)
		}
	}
	return tw.Flush()
}

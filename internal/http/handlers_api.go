package http

import (
	"encoding/json"
	"errors"
	"net/http"

	applog "goldloan/internal/log"
)

type accrualResponse struct {
	Principal     string          `json:"principal"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	TotalMonths   int             `json:"total_months"`
	TotalInterest string          `json:"total_interest"`
	TotalPayable  string          `json:"total_payable"`
	Cycles        []cycleResponse `json:"cycles"`
}

type cycleResponse struct {
	Months           int    `json:"months"`
	RatePercent      string `json:"rate_percent"`
	OpeningPrincipal string `json:"opening_principal"`
	Interest         string `json:"interest"`
}

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// handleAPIAccrual is the stateless JSON calculator. It accepts a JSON
// object or a form body with amount, start_date and end_date.
func (s *Server) handleAPIAccrual(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Invalid request body."})
		return
	}

	req, err := ParseLoanInput(parser).Validate(MinPrincipal, s.business.CurrencySymbol)
	if err != nil {
		resp := apiError{Error: validationMessage(err)}
		var ve *ValidationError
		if errors.As(err, &ve) {
			resp.Field = ve.Field
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	result, err := s.policy.AccrueStrict(req.Principal, req.Period)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: err.Error()})
		return
	}
	s.appMetrics.inc(&s.appMetrics.apiCalculations)
	applog.FromContext(ctx).WithComponent(applog.ComponentAccrual).DebugContext(ctx, "API accrual calculated",
		applog.NewFields().
			WithLoan(req.Principal, req.Period.Start.String(), req.Period.End.String()).
			WithAccrual(result.TotalMonths, result.TotalInterest, result.TotalPayable).
			WithOperation(applog.OpCalculate).
			ToSlice()...)

	resp := accrualResponse{
		Principal:     req.Principal.StringFixed(2),
		StartDate:     req.Period.Start.String(),
		EndDate:       req.Period.End.String(),
		TotalMonths:   result.TotalMonths,
		TotalInterest: result.TotalInterest.StringFixed(2),
		TotalPayable:  result.TotalPayable.StringFixed(2),
		Cycles:        []cycleResponse{},
	}
	for _, c := range s.policy.Schedule(req.Principal, req.Period.Start, req.Period.End) {
		resp.Cycles = append(resp.Cycles, cycleResponse{
			Months:           c.Months,
			RatePercent:      c.RatePercent.String(),
			OpeningPrincipal: c.OpeningPrincipal.StringFixed(2),
			Interest:         c.Interest.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

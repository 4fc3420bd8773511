package api

import (
	"net/http"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

type summaryResponse struct {
	TotalIncome  core.Amount `json:"total_income"`
	TotalExpense core.Amount `json:"total_expense"`
	Balance      core.Amount `json:"balance"`
	PeriodStart  core.Date   `json:"period_start"`
	PeriodEnd    core.Date   `json:"period_end"`
}

type categoryTotalResponse struct {
	Category            int64       `json:"category"`
	CategoryName        string      `json:"category_name"`
	TransactionTypeName string      `json:"transaction_type_name"`
	Direction           string      `json:"direction"`
	Total               core.Amount `json:"total"`
	RecordCount         int64       `json:"record_count"`
}

type monthlyTotalResponse struct {
	Period      string      `json:"period"`
	Year        int         `json:"year"`
	Month       int         `json:"month"`
	Income      core.Amount `json:"income"`
	Expense     core.Amount `json:"expense"`
	Balance     core.Amount `json:"balance"`
	RecordCount int64       `json:"record_count"`
}

// reportSummary serves GET /reports/summary. Without a complete
// date_from/date_to pair the current calendar month is summarized.
func (s *Server) reportSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ledger.Summary(r.Context(), queryDate(r, "date_from"), queryDate(r, "date_to"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		TotalIncome:  sum.TotalIncome,
		TotalExpense: sum.TotalExpense,
		Balance:      sum.Balance,
		PeriodStart:  sum.PeriodStart,
		PeriodEnd:    sum.PeriodEnd,
	})
}

// reportByCategory serves GET /reports/by-category. The date range is
// applied only when both bounds are present and parseable; otherwise the
// whole ledger is grouped.
func (s *Server) reportByCategory(w http.ResponseWriter, r *http.Request) {
	from, to := queryDate(r, "date_from"), queryDate(r, "date_to")
	if from == nil || to == nil {
		from, to = nil, nil
	}

	totals, err := s.ledger.ByCategory(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]categoryTotalResponse, len(totals))
	for i, ct := range totals {
		out[i] = toCategoryTotalResponse(ct)
	}
	writeJSON(w, http.StatusOK, out)
}

func toCategoryTotalResponse(ct storage.CategoryTotal) categoryTotalResponse {
	return categoryTotalResponse{
		Category:            ct.CategoryID,
		CategoryName:        ct.CategoryName,
		TransactionTypeName: ct.TransactionTypeName,
		Direction:           string(ct.Direction),
		Total:               ct.TotalAmount,
		RecordCount:         ct.RecordCount,
	}
}

// reportMonthly serves GET /reports/monthly, newest month first.
func (s *Server) reportMonthly(w http.ResponseWriter, r *http.Request) {
	months, err := s.ledger.MonthlyReport(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]monthlyTotalResponse, len(months))
	for i, m := range months {
		out[i] = monthlyTotalResponse{
			Period:      m.Period(),
			Year:        m.Year,
			Month:       m.Month,
			Income:      m.Income,
			Expense:     m.Expense,
			Balance:     m.Balance,
			RecordCount: m.RecordCount,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

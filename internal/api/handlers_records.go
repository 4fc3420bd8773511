package api

import (
	"net/http"
	"strconv"
	"strings"

	"cashflow/internal/core"
	"cashflow/internal/services"
)

// flexString accepts either a JSON string or a bare number, so clients
// can send "1 000,50" as well as 1000.5.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var err error
		s, err = strconv.Unquote(s)
		if err != nil {
			s = strings.Trim(string(b), `"`)
		}
	}
	*f = flexString(s)
	return nil
}

type recordPayload struct {
	CreatedDate     string     `json:"created_date"`
	Status          *int64     `json:"status"`
	TransactionType *int64     `json:"transaction_type"`
	Category        *int64     `json:"category"`
	Subcategory     *int64     `json:"subcategory"`
	Amount          flexString `json:"amount"`
	Comment         string     `json:"comment"`
}

func (p recordPayload) toInput() services.RecordInput {
	deref := func(id *int64) int64 {
		if id == nil {
			return 0
		}
		return *id
	}
	return services.RecordInput{
		CreatedDate:       p.CreatedDate,
		StatusID:          p.Status,
		TransactionTypeID: deref(p.TransactionType),
		CategoryID:        deref(p.Category),
		SubcategoryID:     deref(p.Subcategory),
		Amount:            string(p.Amount),
		Comment:           p.Comment,
	}
}

type recordResponse struct {
	ID                  int64       `json:"id"`
	CreatedDate         core.Date   `json:"created_date"`
	Status              *int64      `json:"status"`
	StatusName          *string     `json:"status_name"`
	TransactionType     int64       `json:"transaction_type"`
	TransactionTypeName string      `json:"transaction_type_name"`
	Direction           string      `json:"direction"`
	Category            int64       `json:"category"`
	CategoryName        string      `json:"category_name"`
	Subcategory         int64       `json:"subcategory"`
	SubcategoryName     string      `json:"subcategory_name"`
	Amount              core.Amount `json:"amount"`
	Comment             string      `json:"comment,omitempty"`
}

func toRecordResponse(d core.RecordDetail) recordResponse {
	return recordResponse{
		ID:                  d.ID,
		CreatedDate:         d.CreatedDate,
		Status:              d.StatusID,
		StatusName:          d.StatusName,
		TransactionType:     d.TransactionTypeID,
		TransactionTypeName: d.TransactionTypeName,
		Direction:           string(d.Direction),
		Category:            d.CategoryID,
		CategoryName:        d.CategoryName,
		Subcategory:         d.SubcategoryID,
		SubcategoryName:     d.SubcategoryName,
		Amount:              d.Amount,
		Comment:             d.Comment,
	}
}

// recordListResponse is the paginated listing envelope.
type recordListResponse struct {
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Results  []recordResponse `json:"results"`
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	filter := recordFilterFromQuery(r)
	records, total, err := s.ledger.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := recordListResponse{
		Count:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Results:  make([]recordResponse, len(records)),
	}
	for i, d := range records {
		out.Results[i] = toRecordResponse(d)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	var in recordPayload
	if !decodeBody(w, r, &in) {
		return
	}
	detail, err := s.ledger.Create(r.Context(), in.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordResponse(detail))
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	detail, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(detail))
}

func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var in recordPayload
	if !decodeBody(w, r, &in) {
		return
	}
	detail, err := s.ledger.Update(r.Context(), id, in.toInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(detail))
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

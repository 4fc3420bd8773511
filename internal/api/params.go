package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// queryID reads an integer query parameter, nil when absent or malformed.
func queryID(r *http.Request, name string) *int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// queryDate reads a YYYY-MM-DD query parameter. Unparseable values are
// treated as absent so a bad filter degrades to an unfiltered listing.
func queryDate(r *http.Request, name string) *core.Date {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return nil
	}
	return &d
}

func queryPage(r *http.Request) (page, pageSize int) {
	page = 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	pageSize = defaultPageSize
	if ps, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && ps > 0 {
		pageSize = ps
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func recordFilterFromQuery(r *http.Request) storage.RecordFilter {
	page, pageSize := queryPage(r)
	return storage.RecordFilter{
		StatusID:          queryID(r, "status"),
		TransactionTypeID: queryID(r, "transaction_type"),
		CategoryID:        queryID(r, "category"),
		SubcategoryID:     queryID(r, "subcategory"),
		DateFrom:          queryDate(r, "date_from"),
		DateTo:            queryDate(r, "date_to"),
		Search:            r.URL.Query().Get("search"),
		Page:              page,
		PageSize:          pageSize,
	}
}

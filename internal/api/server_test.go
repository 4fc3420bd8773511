package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cashflow/internal/log"
	"cashflow/internal/services"
	"cashflow/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "cashflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := log.New(log.Config{Level: slog.LevelError, Format: "text"})
	srv := NewServer(
		services.NewLedgerService(store),
		services.NewReferenceService(store),
		logger,
		Options{},
	)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func doJSONList(t *testing.T, url string) (int, []map[string]any) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

// createHierarchy builds a minimal reference tree over the API and
// returns the created ids.
func createHierarchy(t *testing.T, base string) (typeID, catID, subID float64) {
	t.Helper()

	status, body := doJSON(t, http.MethodPost, base+"/api/v1/transaction-types",
		map[string]any{"name": "Incoming", "direction": "inflow"})
	require.Equal(t, http.StatusCreated, status, "%v", body)
	typeID = body["id"].(float64)

	status, body = doJSON(t, http.MethodPost, base+"/api/v1/categories",
		map[string]any{"transaction_type": typeID, "name": "Revenue"})
	require.Equal(t, http.StatusCreated, status, "%v", body)
	catID = body["id"].(float64)

	status, body = doJSON(t, http.MethodPost, base+"/api/v1/subcategories",
		map[string]any{"category": catID, "name": "Contracts"})
	require.Equal(t, http.StatusCreated, status, "%v", body)
	subID = body["id"].(float64)

	return typeID, catID, subID
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])

	status, body = doJSON(t, http.MethodGet, ts.URL+"/readyz", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])
}

func TestStatusCRUD(t *testing.T) {
	ts := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/statuses",
		map[string]any{"name": "Quarterly"})
	require.Equal(t, http.StatusCreated, status)
	id := body["id"].(float64)
	require.Equal(t, "Quarterly", body["name"])

	// Duplicate name in the same scope conflicts.
	status, body = doJSON(t, http.MethodPost, ts.URL+"/api/v1/statuses",
		map[string]any{"name": "Quarterly"})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "duplicate_name", body["error"])

	// Blank name is a validation failure with a field map.
	status, body = doJSON(t, http.MethodPost, ts.URL+"/api/v1/statuses",
		map[string]any{"name": "   "})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Contains(t, body["errors"], "name")

	status, body = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/statuses/%.0f", ts.URL, id),
		map[string]any{"name": "Annual"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Annual", body["name"])

	status, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/statuses/%.0f", ts.URL, id), nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/statuses/%.0f", ts.URL, id), nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestTransactionTypeDirectionValidation(t *testing.T) {
	ts := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/transaction-types",
		map[string]any{"name": "Sideways", "direction": "sideways"})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Contains(t, body["errors"], "direction")
}

func TestRecordLifecycle(t *testing.T) {
	ts := newTestServer(t)
	typeID, catID, subID := createHierarchy(t, ts.URL)

	status, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", map[string]any{
		"created_date":     "2025-03-10",
		"transaction_type": typeID,
		"category":         catID,
		"subcategory":      subID,
		"amount":           "1 000,50",
		"comment":          "march invoice",
	})
	require.Equal(t, http.StatusCreated, status, "%v", body)
	recID := body["id"].(float64)
	require.Equal(t, "1000.50", body["amount"])
	require.Equal(t, "Incoming", body["transaction_type_name"])
	require.Equal(t, "Revenue", body["category_name"])
	require.Equal(t, "Contracts", body["subcategory_name"])
	require.Equal(t, "inflow", body["direction"])

	// A bare JSON number is accepted for amount too.
	status, body = doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", map[string]any{
		"created_date":     "2025-03-11",
		"transaction_type": typeID,
		"category":         catID,
		"subcategory":      subID,
		"amount":           250.5,
	})
	require.Equal(t, http.StatusCreated, status, "%v", body)
	require.Equal(t, "250.50", body["amount"])

	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/v1/records", nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 2, body["count"])
	results := body["results"].([]any)
	require.Len(t, results, 2)
	// Newest created date first.
	first := results[0].(map[string]any)
	require.Equal(t, "2025-03-11", first["created_date"])

	status, body = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/records/%.0f", ts.URL, recID),
		map[string]any{
			"transaction_type": typeID,
			"category":         catID,
			"subcategory":      subID,
			"amount":           "775",
		})
	require.Equal(t, http.StatusOK, status, "%v", body)
	require.Equal(t, "775.00", body["amount"])
	// Created date survives when the update omits it.
	require.Equal(t, "2025-03-10", body["created_date"])

	status, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/records/%.0f", ts.URL, recID), nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/records/%.0f", ts.URL, recID), nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestRecordValidationReportsAllFields(t *testing.T) {
	ts := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records",
		map[string]any{"amount": "abc", "created_date": "10/03/2025"})
	require.Equal(t, http.StatusUnprocessableEntity, status)

	errs := body["errors"].(map[string]any)
	require.Contains(t, errs, "amount")
	require.Contains(t, errs, "created_date")
	require.Contains(t, errs, "transaction_type")
	require.Contains(t, errs, "category")
	require.Contains(t, errs, "subcategory")
}

func TestDeleteReferencedCategoryConflicts(t *testing.T) {
	ts := newTestServer(t)
	typeID, catID, subID := createHierarchy(t, ts.URL)

	status, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", map[string]any{
		"transaction_type": typeID,
		"category":         catID,
		"subcategory":      subID,
		"amount":           "10",
	})
	require.Equal(t, http.StatusCreated, status, "%v", body)

	status, body = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/categories/%.0f", ts.URL, catID), nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "referenced", body["error"])
}

func TestHierarchyLookupReflectsWrites(t *testing.T) {
	ts := newTestServer(t)
	typeID, catID, _ := createHierarchy(t, ts.URL)

	url := fmt.Sprintf("%s/api/v1/transaction-types/%.0f/categories", ts.URL, typeID)
	status, items := doJSONList(t, url)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, items, 1)
	require.Equal(t, "Revenue", items[0]["name"])

	// Second read is served from cache; a write must invalidate it.
	_, _ = doJSONList(t, url)
	status, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/categories",
		map[string]any{"transaction_type": typeID, "name": "Royalties"})
	require.Equal(t, http.StatusCreated, status, "%v", body)

	status, items = doJSONList(t, url)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, items, 2)

	subURL := fmt.Sprintf("%s/api/v1/categories/%.0f/subcategories", ts.URL, catID)
	status, items = doJSONList(t, subURL)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, items, 1)
	require.Equal(t, "Contracts", items[0]["name"])
}

func TestReports(t *testing.T) {
	ts := newTestServer(t)
	typeID, catID, subID := createHierarchy(t, ts.URL)

	for _, rec := range []map[string]any{
		{"created_date": "2025-01-10", "amount": "1000"},
		{"created_date": "2025-01-20", "amount": "500"},
		{"created_date": "2025-02-05", "amount": "250"},
	} {
		rec["transaction_type"] = typeID
		rec["category"] = catID
		rec["subcategory"] = subID
		status, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", rec)
		require.Equal(t, http.StatusCreated, status, "%v", body)
	}

	status, body := doJSON(t, http.MethodGet,
		ts.URL+"/api/v1/reports/summary?date_from=2025-01-01&date_to=2025-01-31", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "1500.00", body["total_income"])
	require.Equal(t, "0.00", body["total_expense"])
	require.Equal(t, "1500.00", body["balance"])
	require.Equal(t, "2025-01-01", body["period_start"])

	// By-category ignores a half-open range and groups the whole ledger.
	status, items := doJSONList(t, ts.URL+"/api/v1/reports/by-category?date_from=2025-01-01")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, items, 1)
	require.Equal(t, "Revenue", items[0]["category_name"])
	require.Equal(t, "1750.00", items[0]["total"])
	require.EqualValues(t, 3, items[0]["record_count"])

	status, items = doJSONList(t, ts.URL+"/api/v1/reports/monthly")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, items, 2)
	require.Equal(t, "02/2025", items[0]["period"])
	require.Equal(t, "250.00", items[0]["income"])
	require.Equal(t, "01/2025", items[1]["period"])
	require.Equal(t, "1500.00", items[1]["income"])
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/records", "application/json",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecordListFiltersIgnoreBadDates(t *testing.T) {
	ts := newTestServer(t)
	typeID, catID, subID := createHierarchy(t, ts.URL)

	status, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", map[string]any{
		"created_date":     "2025-03-10",
		"transaction_type": typeID,
		"category":         catID,
		"subcategory":      subID,
		"amount":           "42",
	})
	require.Equal(t, http.StatusCreated, status, "%v", body)

	// An unparseable bound degrades to an unfiltered listing.
	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/v1/records?date_from=not-a-date", nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, body["count"])
}

// Package services exposes the ledger's operations as stateless functions
// over an explicit store handle. Every entry point that writes a record
// goes through this package, so validation has exactly one implementation.
package services

import (
	"context"
	"fmt"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

// LedgerService handles ledger record operations and reporting.
type LedgerService struct {
	store *storage.Store
}

// NewLedgerService creates a ledger service over the given store.
func NewLedgerService(store *storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// RecordInput is a candidate record as submitted by a caller. Reference
// fields are ids (zero means absent); amount is the raw user string so
// normalization happens in one place.
type RecordInput struct {
	CreatedDate       string
	StatusID          *int64
	TransactionTypeID int64
	CategoryID        int64
	SubcategoryID     int64
	Amount            string
	Comment           string
}

// buildRecord parses the free-form parts of the input. Parse failures are
// collected per field; the returned record carries zero values for the
// fields that failed so the storage guard can still report the rest.
func buildRecord(in RecordInput) (core.Record, core.FieldErrors) {
	fe := core.FieldErrors{}

	date := core.Today()
	if in.CreatedDate != "" {
		parsed, err := core.ParseDate(in.CreatedDate)
		if err != nil {
			fe.Add("created_date", core.MsgCreatedDateInvalid)
		} else {
			date = parsed
		}
	}

	var amount core.Amount
	if parsed, err := core.ParseAmount(in.Amount); err != nil {
		fe.Add("amount", core.MsgAmountInvalid)
	} else {
		amount = parsed
	}

	return core.Record{
		CreatedDate:       date,
		StatusID:          in.StatusID,
		TransactionTypeID: in.TransactionTypeID,
		CategoryID:        in.CategoryID,
		SubcategoryID:     in.SubcategoryID,
		Amount:            amount,
		Comment:           in.Comment,
	}, fe
}

// Create validates and persists a new ledger record, returning it with
// resolved reference names. All violations are reported in one mapping.
func (s *LedgerService) Create(ctx context.Context, in RecordInput) (core.RecordDetail, error) {
	rec, fe := buildRecord(in)
	if len(fe) > 0 {
		// Parsing already failed, but the caller still deserves the full
		// picture: collect the hierarchy violations without persisting.
		if err := s.mergeCheckErrors(ctx, rec, fe); err != nil {
			return core.RecordDetail{}, err
		}
		return core.RecordDetail{}, fe
	}

	created, err := s.store.CreateRecord(ctx, rec)
	if err != nil {
		return core.RecordDetail{}, err
	}
	return s.store.GetRecordDetail(ctx, created.ID)
}

// Update validates and persists changes to an existing record. The
// created date is only changed when the caller supplies one; it is never
// auto-touched.
func (s *LedgerService) Update(ctx context.Context, id int64, in RecordInput) (core.RecordDetail, error) {
	current, err := s.store.GetRecordDetail(ctx, id)
	if err != nil {
		return core.RecordDetail{}, err
	}
	if in.CreatedDate == "" {
		in.CreatedDate = current.CreatedDate.String()
	}

	rec, fe := buildRecord(in)
	rec.ID = id
	if len(fe) > 0 {
		if err := s.mergeCheckErrors(ctx, rec, fe); err != nil {
			return core.RecordDetail{}, err
		}
		return core.RecordDetail{}, fe
	}

	if _, err := s.store.UpdateRecord(ctx, rec); err != nil {
		return core.RecordDetail{}, err
	}
	return s.store.GetRecordDetail(ctx, id)
}

// Delete removes a record.
func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteRecord(ctx, id)
}

// Get fetches one record with resolved names.
func (s *LedgerService) Get(ctx context.Context, id int64) (core.RecordDetail, error) {
	return s.store.GetRecordDetail(ctx, id)
}

// List returns a filtered, paginated listing plus the total match count.
func (s *LedgerService) List(ctx context.Context, f storage.RecordFilter) ([]core.RecordDetail, int, error) {
	return s.store.ListRecords(ctx, f)
}

// Summary computes income/expense/balance for the period. When either
// bound is absent the current calendar month is used for both.
func (s *LedgerService) Summary(ctx context.Context, from, to *core.Date) (storage.Summary, error) {
	if from == nil || to == nil {
		first, last := core.Today().MonthBounds()
		from, to = &first, &last
	}
	return s.store.Summarize(ctx, *from, *to)
}

// ByCategory groups records by category and transaction type over an
// optional date range.
func (s *LedgerService) ByCategory(ctx context.Context, from, to *core.Date) ([]storage.CategoryTotal, error) {
	return s.store.TotalsByCategory(ctx, from, to)
}

// MonthlyReport returns per-month income/expense/balance, newest first.
func (s *LedgerService) MonthlyReport(ctx context.Context) ([]storage.MonthlyTotal, error) {
	return s.store.MonthlyReport(ctx)
}

// mergeCheckErrors dry-runs the storage guard for a record that already
// failed parsing and folds its field errors into fe. Non-validation
// failures are returned as-is.
func (s *LedgerService) mergeCheckErrors(ctx context.Context, rec core.Record, fe core.FieldErrors) error {
	err := s.store.CheckRecord(ctx, rec)
	if err == nil {
		return nil
	}
	if more, ok := core.AsFieldErrors(err); ok {
		fe.Merge(more)
		return nil
	}
	return fmt.Errorf("check record: %w", err)
}

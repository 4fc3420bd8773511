package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cashflow/internal/core"
)

// Messages for references that resolve to nothing; surfaced per field like
// the validator's own messages.
const (
	msgStatusUnknown          = "status does not exist"
	msgTransactionTypeUnknown = "transaction type does not exist"
	msgCategoryUnknown        = "category does not exist"
	msgSubcategoryUnknown     = "subcategory does not exist"
)

// RecordFilter narrows a ledger listing. Nil means "no filter" for
// reference ids and dates.
type RecordFilter struct {
	StatusID          *int64
	TransactionTypeID *int64
	CategoryID        *int64
	SubcategoryID     *int64
	DateFrom          *core.Date
	DateTo            *core.Date
	Search            string
	Page              int
	PageSize          int
}

// CheckRecord runs the write-path validation for rec without persisting
// anything. Used to report hierarchy violations alongside parse errors.
func (s *Store) CheckRecord(ctx context.Context, rec core.Record) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return validateInTx(ctx, tx, &rec)
	})
}

// CreateRecord persists a ledger record. The consistency validator runs
// inside the write transaction against freshly read reference rows, so a
// concurrent reference change cannot slip an inconsistent record through.
func (s *Store) CreateRecord(ctx context.Context, rec core.Record) (core.Record, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := validateInTx(ctx, tx, &rec); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO records (created_date, status_id, transaction_type_id, category_id, subcategory_id, amount_cents, comment)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.CreatedDate.String(), rec.StatusID, rec.TransactionTypeID,
			rec.CategoryID, rec.SubcategoryID, rec.Amount.Cents(), nullIfEmpty(rec.Comment))
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("record id: %w", err)
		}
		rec.ID = id
		return nil
	})
	if err != nil {
		return core.Record{}, err
	}
	return rec, nil
}

// UpdateRecord replaces an existing record's fields. The created date is
// whatever the caller supplies; it is never auto-touched here.
func (s *Store) UpdateRecord(ctx context.Context, rec core.Record) (core.Record, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, `SELECT EXISTS (SELECT 1 FROM records WHERE id = ?)`, rec.ID); err != nil {
			return err
		}
		if err := validateInTx(ctx, tx, &rec); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE records
			SET created_date = ?, status_id = ?, transaction_type_id = ?, category_id = ?, subcategory_id = ?, amount_cents = ?, comment = ?
			WHERE id = ?`,
			rec.CreatedDate.String(), rec.StatusID, rec.TransactionTypeID,
			rec.CategoryID, rec.SubcategoryID, rec.Amount.Cents(), nullIfEmpty(rec.Comment), rec.ID)
		if err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Record{}, err
	}
	return rec, nil
}

// DeleteRecord removes a ledger record.
func (s *Store) DeleteRecord(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record affected rows: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

const recordDetailSelect = `
	SELECT r.id, r.created_date, r.status_id, st.name,
	       r.transaction_type_id, tt.name, tt.direction,
	       r.category_id, c.name,
	       r.subcategory_id, sc.name,
	       r.amount_cents, COALESCE(r.comment, '')
	FROM records r
	LEFT JOIN statuses st ON st.id = r.status_id
	JOIN transaction_types tt ON tt.id = r.transaction_type_id
	JOIN categories c ON c.id = r.category_id
	JOIN subcategories sc ON sc.id = r.subcategory_id`

// GetRecordDetail fetches a single record with resolved reference names.
func (s *Store) GetRecordDetail(ctx context.Context, id int64) (core.RecordDetail, error) {
	row := s.db.QueryRowContext(ctx, recordDetailSelect+` WHERE r.id = ?`, id)
	detail, err := scanRecordDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecordDetail{}, core.ErrNotFound
	}
	if err != nil {
		return core.RecordDetail{}, fmt.Errorf("get record: %w", err)
	}
	return detail, nil
}

// ListRecords returns one page of matching records, newest first (ties
// broken by id descending), together with the total match count.
func (s *Store) ListRecords(ctx context.Context, f RecordFilter) ([]core.RecordDetail, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.StatusID != nil {
		conds = append(conds, `r.status_id = ?`)
		args = append(args, *f.StatusID)
	}
	if f.TransactionTypeID != nil {
		conds = append(conds, `r.transaction_type_id = ?`)
		args = append(args, *f.TransactionTypeID)
	}
	if f.CategoryID != nil {
		conds = append(conds, `r.category_id = ?`)
		args = append(args, *f.CategoryID)
	}
	if f.SubcategoryID != nil {
		conds = append(conds, `r.subcategory_id = ?`)
		args = append(args, *f.SubcategoryID)
	}
	if f.DateFrom != nil {
		conds = append(conds, `r.created_date >= ?`)
		args = append(args, f.DateFrom.String())
	}
	if f.DateTo != nil {
		conds = append(conds, `r.created_date <= ?`)
		args = append(args, f.DateTo.String())
	}
	if f.Search != "" {
		conds = append(conds, `(r.comment LIKE ? OR c.name LIKE ? OR sc.name LIKE ?)`)
		token := "%" + f.Search + "%"
		args = append(args, token, token, token)
	}
	where := whereClause(conds)

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM records r
		JOIN categories c ON c.id = r.category_id
		JOIN subcategories sc ON sc.id = r.subcategory_id` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	query := recordDetailSelect + where + ` ORDER BY r.created_date DESC, r.id DESC`
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.PageSize, (page-1)*f.PageSize)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var details []core.RecordDetail
	for rows.Next() {
		detail, err := scanRecordDetail(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan record: %w", err)
		}
		details = append(details, detail)
	}
	return details, total, rows.Err()
}

// validateInTx resolves the record's references within the transaction and
// runs the consistency validator over them, reporting unknown ids and
// hierarchy violations per field in one mapping.
func validateInTx(ctx context.Context, tx *sql.Tx, rec *core.Record) error {
	fe := core.FieldErrors{}

	var (
		tt  *core.TransactionType
		cat *core.Category
		sub *core.Subcategory
	)

	if rec.StatusID != nil {
		found, err := exists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM statuses WHERE id = ?)`, *rec.StatusID)
		if err != nil {
			return err
		}
		if !found {
			fe.Add("status", msgStatusUnknown)
		}
	}

	if rec.TransactionTypeID != 0 {
		var row core.TransactionType
		err := tx.QueryRowContext(ctx,
			`SELECT id, name, direction FROM transaction_types WHERE id = ?`, rec.TransactionTypeID).
			Scan(&row.ID, &row.Name, &row.Direction)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			fe.Add("transaction_type", msgTransactionTypeUnknown)
		case err != nil:
			return fmt.Errorf("resolve transaction type: %w", err)
		default:
			tt = &row
		}
	}

	if rec.CategoryID != 0 {
		row, err := categoryInTx(ctx, tx, rec.CategoryID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			fe.Add("category", msgCategoryUnknown)
		case err != nil:
			return err
		default:
			cat = &row
		}
	}

	if rec.SubcategoryID != 0 {
		row, err := subcategoryInTx(ctx, tx, rec.SubcategoryID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			fe.Add("subcategory", msgSubcategoryUnknown)
		case err != nil:
			return err
		default:
			sub = &row
		}
	}

	fe.Merge(core.ValidateRecord(tt, cat, sub, rec.Amount))
	return fe.Err()
}

func scanRecordDetail(row interface{ Scan(...any) error }) (core.RecordDetail, error) {
	var (
		detail     core.RecordDetail
		date       string
		cents      int64
		statusID   sql.NullInt64
		statusName sql.NullString
	)
	err := row.Scan(&detail.ID, &date, &statusID, &statusName,
		&detail.TransactionTypeID, &detail.TransactionTypeName, &detail.Direction,
		&detail.CategoryID, &detail.CategoryName,
		&detail.SubcategoryID, &detail.SubcategoryName,
		&cents, &detail.Comment)
	if err != nil {
		return core.RecordDetail{}, err
	}

	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.RecordDetail{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	detail.CreatedDate = parsed
	detail.Amount = core.AmountFromCents(cents)
	if statusID.Valid {
		detail.StatusID = &statusID.Int64
	}
	if statusName.Valid {
		detail.StatusName = &statusName.String
	}
	return detail, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cashflow/internal/core"
)

// Reference-data CRUD. Uniqueness is pre-checked inside the write
// transaction and additionally enforced by the schema's UNIQUE
// constraints; deletes referenced by ledger records are rejected before
// the cascade can run.

func (s *Store) CreateStatus(ctx context.Context, name string) (core.Status, error) {
	var st core.Status
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		taken, err := nameTaken(ctx, tx, `SELECT EXISTS (SELECT 1 FROM statuses WHERE name = ?)`, name)
		if err != nil {
			return err
		}
		if taken {
			return core.ErrDuplicateName
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO statuses (name) VALUES (?)`, name)
		if err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateName
			}
			return fmt.Errorf("insert status: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("status id: %w", err)
		}
		st = core.Status{ID: id, Name: name}
		return nil
	})
	return st, err
}

func (s *Store) GetStatus(ctx context.Context, id int64) (core.Status, error) {
	var st core.Status
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM statuses WHERE id = ?`, id).
		Scan(&st.ID, &st.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Status{}, core.ErrNotFound
	}
	if err != nil {
		return core.Status{}, fmt.Errorf("get status: %w", err)
	}
	return st, nil
}

func (s *Store) ListStatuses(ctx context.Context, search string) ([]core.Status, error) {
	query := `SELECT id, name FROM statuses`
	args := []any{}
	if search != "" {
		query += ` WHERE name LIKE ?`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	defer rows.Close()

	var statuses []core.Status
	for rows.Next() {
		var st core.Status
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, name string) (core.Status, error) {
	var st core.Status
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, `SELECT EXISTS (SELECT 1 FROM statuses WHERE id = ?)`, id); err != nil {
			return err
		}
		taken, err := nameTaken(ctx, tx, `SELECT EXISTS (SELECT 1 FROM statuses WHERE name = ? AND id != ?)`, name, id)
		if err != nil {
			return err
		}
		if taken {
			return core.ErrDuplicateName
		}

		if _, err := tx.ExecContext(ctx, `UPDATE statuses SET name = ? WHERE id = ?`, name, id); err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateName
			}
			return fmt.Errorf("update status: %w", err)
		}
		st = core.Status{ID: id, Name: name}
		return nil
	})
	return st, err
}

func (s *Store) DeleteStatus(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, `SELECT EXISTS (SELECT 1 FROM statuses WHERE id = ?)`, id); err != nil {
			return err
		}
		referenced, err := exists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM records WHERE status_id = ?)`, id)
		if err != nil {
			return err
		}
		if referenced {
			return core.ErrReferencedByLedger
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM statuses WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete status: %w", err)
		}
		return nil
	})
}

func (s *Store) CreateTransactionType(ctx context.Context, name string, direction core.Direction) (core.TransactionType, error) {
	var tt core.TransactionType
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		taken, err := nameTaken(ctx, tx, `SELECT EXISTS (SELECT 1 FROM transaction_types WHERE name = ?)`, name)
		if err != nil {
			return err
		}
		if taken {
			return core.ErrDuplicateName
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO transaction_types (name, direction) VALUES (?, ?)`, name, string(direction))
		if err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateName
			}
			return fmt.Errorf("insert transaction type: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("transaction type id: %w", err)
		}
		tt = core.TransactionType{ID: id, Name: name, Direction: direction}
		return nil
	})
	return tt, err
}

func (s *Store) GetTransactionType(ctx context.Context, id int64) (core.TransactionType, error) {
	var tt core.TransactionType
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, direction FROM transaction_types WHERE id = ?`, id).
		Scan(&tt.ID, &tt.Name, &tt.Direction)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionType{}, core.ErrNotFound
	}
	if err != nil {
		return core.TransactionType{}, fmt.Errorf("get transaction type: %w", err)
	}
	return tt, nil
}

func (s *Store) ListTransactionTypes(ctx context.Context, search string) ([]core.TransactionType, error) {
	query := `SELECT id, name, direction FROM transaction_types`
	args := []any{}
	if search != "" {
		query += ` WHERE name LIKE ?`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transaction types: %w", err)
	}
	defer rows.Close()

	var types []core.TransactionType
	for rows.Next() {
		var tt core.TransactionType
		if err := rows.Scan(&tt.ID, &tt.Name, &tt.Direction); err != nil {
			return nil, fmt.Errorf("scan transaction type: %w", err)
		}
		types = append(types, tt)
	}
	return types, rows.Err()
}

func (s *Store) UpdateTransactionType(ctx context.Context, id int64, name string, direction core.Direction) (core.TransactionType, error) {
	var tt core.TransactionType
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, `SELECT EXISTS (SELECT 1 FROM transaction_types WHERE id = ?)`, id); err != nil {
			return err
		}
		taken, err := nameTaken(ctx, tx, `SELECT EXISTS (SELECT 1 FROM transaction_types WHERE name = ? AND id != ?)`, name, id)
		if err != nil {
			return err
		}
		if taken {
			return core.ErrDuplicateName
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE transaction_types SET name = ?, direction = ? WHERE id = ?`,
			name, string(direction), id); err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateName
			}
			return fmt.Errorf("update transaction type: %w", err)
		}
		tt = core.TransactionType{ID: id, Name: name, Direction: direction}
		return nil
	})
	return tt, err
}

// DeleteTransactionType removes a type and cascades to its categories and
// subcategories, unless any ledger record references the type directly or
// through one of its categories.
func (s *Store) DeleteTransactionType(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, `SELECT EXISTS (SELECT 1 FROM transaction_types WHERE id = ?)`, id); err != nil {
			return err
		}
		referenced, err := exists(ctx, tx, `
			SELECT EXISTS (
				SELECT 1 FROM records
				WHERE transaction_type_id = ?
				   OR category_id IN (SELECT id FROM categories WHERE transaction_type_id = ?)
			)`, id, id)
		if err != nil {
			return err
		}
		if referenced {
			return core.ErrReferencedByLedger
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transaction_types WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete transaction type: %w", err)
		}
		return nil
	})
}

func (s *Store) CreateCategory(ctx context.Context, typeID int64, name string) (core.Category, error) {
	var cat core.Category
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, `SELECT EXISTS (SELECT 1 FROM transaction_types WHERE id = ?)`, typeID); err != nil {
			return err
		}
		taken, err := nameTaken(ctx, tx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE transaction_type_id = ? AND name = ?)`, typeID, name)
		if err != nil {
			return err
		}
		if taken {
			return core.ErrDuplicateName
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO categories (transaction_type_id, name) VALUES (?, ?)`, typeID, name)
		if err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateName
			}
			return fmt.Errorf("insert category: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("category id: %w", err)
		}
		cat = core.Category{ID: id, TransactionTypeID: typeID, Name: name}
		return nil
	})
	return cat, err
}

func (s *Store) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var cat core.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, transaction_type_id, name FROM categories WHERE id = ?`, id).
		Scan(&cat.ID, &cat.TransactionTypeID, &cat.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

// ListCategories returns categories, optionally narrowed to one
// transaction type and/or a name search token.
func (s *Store) ListCategories(ctx context.Context, typeID *int64, search string) ([]core.Category, error) {
	query := `SELECT id, transaction_type_id, name FROM categories`
	var (
		conds []string
		args  []any
	)
	if typeID != nil {
		conds = append(conds, `transaction_type_id = ?`)
		args = append(args, *typeID)
	}
	if search != "" {
		conds = append(conds, `name LIKE ?`)
		args = append(args, "%"+search+"%")
	}
	query += whereClause(conds) + ` ORDER BY transaction_type_id, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var cat core.Category
		if err := rows.Scan(&cat.ID, &cat.TransactionTypeID, &cat.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

func (s *Store) UpdateCategory(ctx context.Context, id, typeID int64, name string) (core.Category, error) {
	var cat core.Category
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := categoryInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := mustExist(ctx, tx, `SELECT EXISTS (SELECT 1 FROM transaction_types WHERE id = ?)`, typeID); err != nil {
			return err
		}

		// Re-parenting a category that ledger records reference would
		// break the type/category invariant of those rows.
		if current.TransactionTypeID != typeID {
			referenced, err := exists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM records WHERE category_id = ?)`, id)
			if err != nil {
				return err
			}
			if referenced {
				return core.ErrReferencedByLedger
			}
		}

		taken, err := nameTaken(ctx, tx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE transaction_type_id = ? AND name = ? AND id != ?)`,
			typeID, name, id)
		if err != nil {
			return err
		}
		if taken {
			return core.ErrDuplicateName
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE categories SET transaction_type_id = ?, name = ? WHERE id = ?`, typeID, name, id); err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateName
			}
			return fmt.Errorf("update category: %w", err)
		}
		cat = core.Category{ID: id, TransactionTypeID: typeID, Name: name}
		return nil
	})
	return cat, err
}

// DeleteCategory removes a category and cascades to its subcategories,
// unless any ledger record references the category.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := categoryInTx(ctx, tx, id); err != nil {
			return err
		}
		referenced, err := exists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM records WHERE category_id = ?)`, id)
		if err != nil {
			return err
		}
		if referenced {
			return core.ErrReferencedByLedger
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

func (s *Store) CreateSubcategory(ctx context.Context, categoryID int64, name string) (core.Subcategory, error) {
	var sub core.Subcategory
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = ?)`, categoryID); err != nil {
			return err
		}
		taken, err := nameTaken(ctx, tx,
			`SELECT EXISTS (SELECT 1 FROM subcategories WHERE category_id = ? AND name = ?)`, categoryID, name)
		if err != nil {
			return err
		}
		if taken {
			return core.ErrDuplicateName
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO subcategories (category_id, name) VALUES (?, ?)`, categoryID, name)
		if err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateName
			}
			return fmt.Errorf("insert subcategory: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("subcategory id: %w", err)
		}
		sub = core.Subcategory{ID: id, CategoryID: categoryID, Name: name}
		return nil
	})
	return sub, err
}

func (s *Store) GetSubcategory(ctx context.Context, id int64) (core.Subcategory, error) {
	var sub core.Subcategory
	err := s.db.QueryRowContext(ctx,
		`SELECT id, category_id, name FROM subcategories WHERE id = ?`, id).
		Scan(&sub.ID, &sub.CategoryID, &sub.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subcategory{}, core.ErrNotFound
	}
	if err != nil {
		return core.Subcategory{}, fmt.Errorf("get subcategory: %w", err)
	}
	return sub, nil
}

// ListSubcategories returns subcategories, optionally narrowed to one
// category and/or a name search token.
func (s *Store) ListSubcategories(ctx context.Context, categoryID *int64, search string) ([]core.Subcategory, error) {
	query := `SELECT id, category_id, name FROM subcategories`
	var (
		conds []string
		args  []any
	)
	if categoryID != nil {
		conds = append(conds, `category_id = ?`)
		args = append(args, *categoryID)
	}
	if search != "" {
		conds = append(conds, `name LIKE ?`)
		args = append(args, "%"+search+"%")
	}
	query += whereClause(conds) + ` ORDER BY category_id, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var subs []core.Subcategory
	for rows.Next() {
		var sub core.Subcategory
		if err := rows.Scan(&sub.ID, &sub.CategoryID, &sub.Name); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *Store) UpdateSubcategory(ctx context.Context, id, categoryID int64, name string) (core.Subcategory, error) {
	var sub core.Subcategory
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := subcategoryInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := mustExist(ctx, tx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = ?)`, categoryID); err != nil {
			return err
		}

		if current.CategoryID != categoryID {
			referenced, err := exists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM records WHERE subcategory_id = ?)`, id)
			if err != nil {
				return err
			}
			if referenced {
				return core.ErrReferencedByLedger
			}
		}

		taken, err := nameTaken(ctx, tx,
			`SELECT EXISTS (SELECT 1 FROM subcategories WHERE category_id = ? AND name = ? AND id != ?)`,
			categoryID, name, id)
		if err != nil {
			return err
		}
		if taken {
			return core.ErrDuplicateName
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE subcategories SET category_id = ?, name = ? WHERE id = ?`, categoryID, name, id); err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateName
			}
			return fmt.Errorf("update subcategory: %w", err)
		}
		sub = core.Subcategory{ID: id, CategoryID: categoryID, Name: name}
		return nil
	})
	return sub, err
}

func (s *Store) DeleteSubcategory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := subcategoryInTx(ctx, tx, id); err != nil {
			return err
		}
		referenced, err := exists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM records WHERE subcategory_id = ?)`, id)
		if err != nil {
			return err
		}
		if referenced {
			return core.ErrReferencedByLedger
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM subcategories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete subcategory: %w", err)
		}
		return nil
	})
}

func categoryInTx(ctx context.Context, tx *sql.Tx, id int64) (core.Category, error) {
	var cat core.Category
	err := tx.QueryRowContext(ctx,
		`SELECT id, transaction_type_id, name FROM categories WHERE id = ?`, id).
		Scan(&cat.ID, &cat.TransactionTypeID, &cat.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

func subcategoryInTx(ctx context.Context, tx *sql.Tx, id int64) (core.Subcategory, error) {
	var sub core.Subcategory
	err := tx.QueryRowContext(ctx,
		`SELECT id, category_id, name FROM subcategories WHERE id = ?`, id).
		Scan(&sub.ID, &sub.CategoryID, &sub.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subcategory{}, core.ErrNotFound
	}
	if err != nil {
		return core.Subcategory{}, fmt.Errorf("get subcategory: %w", err)
	}
	return sub, nil
}

func exists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var found bool
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return found, nil
}

func nameTaken(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	return exists(ctx, tx, query, args...)
}

func mustExist(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	found, err := exists(ctx, tx, query, args...)
	if err != nil {
		return err
	}
	if !found {
		return core.ErrNotFound
	}
	return nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	clause := ` WHERE ` + conds[0]
	for _, c := range conds[1:] {
		clause += ` AND ` + c
	}
	return clause
}

package services

import (
	"context"
	"strings"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

// Messages for reference-data input problems.
const (
	msgNameRequired     = "name is required and must be at most 100 characters"
	msgDirectionInvalid = "direction must be either 'inflow' or 'outflow'"
)

// ReferenceService manages the classification hierarchy: statuses,
// transaction types, categories and subcategories.
type ReferenceService struct {
	store *storage.Store
}

// NewReferenceService creates a reference service over the given store.
func NewReferenceService(store *storage.Store) *ReferenceService {
	return &ReferenceService{store: store}
}

func checkName(name string) (string, core.FieldErrors) {
	trimmed := strings.TrimSpace(name)
	if !core.ValidName(trimmed) {
		fe := core.FieldErrors{}
		fe.Add("name", msgNameRequired)
		return "", fe
	}
	return trimmed, nil
}

func (s *ReferenceService) CreateStatus(ctx context.Context, name string) (core.Status, error) {
	name, fe := checkName(name)
	if fe != nil {
		return core.Status{}, fe
	}
	return s.store.CreateStatus(ctx, name)
}

func (s *ReferenceService) GetStatus(ctx context.Context, id int64) (core.Status, error) {
	return s.store.GetStatus(ctx, id)
}

func (s *ReferenceService) ListStatuses(ctx context.Context, search string) ([]core.Status, error) {
	return s.store.ListStatuses(ctx, search)
}

func (s *ReferenceService) UpdateStatus(ctx context.Context, id int64, name string) (core.Status, error) {
	name, fe := checkName(name)
	if fe != nil {
		return core.Status{}, fe
	}
	return s.store.UpdateStatus(ctx, id, name)
}

func (s *ReferenceService) DeleteStatus(ctx context.Context, id int64) error {
	return s.store.DeleteStatus(ctx, id)
}

func (s *ReferenceService) CreateTransactionType(ctx context.Context, name string, direction core.Direction) (core.TransactionType, error) {
	name, fe := checkName(name)
	if !direction.Valid() {
		if fe == nil {
			fe = core.FieldErrors{}
		}
		fe.Add("direction", msgDirectionInvalid)
	}
	if fe != nil {
		return core.TransactionType{}, fe
	}
	return s.store.CreateTransactionType(ctx, name, direction)
}

func (s *ReferenceService) GetTransactionType(ctx context.Context, id int64) (core.TransactionType, error) {
	return s.store.GetTransactionType(ctx, id)
}

func (s *ReferenceService) ListTransactionTypes(ctx context.Context, search string) ([]core.TransactionType, error) {
	return s.store.ListTransactionTypes(ctx, search)
}

func (s *ReferenceService) UpdateTransactionType(ctx context.Context, id int64, name string, direction core.Direction) (core.TransactionType, error) {
	name, fe := checkName(name)
	if !direction.Valid() {
		if fe == nil {
			fe = core.FieldErrors{}
		}
		fe.Add("direction", msgDirectionInvalid)
	}
	if fe != nil {
		return core.TransactionType{}, fe
	}
	return s.store.UpdateTransactionType(ctx, id, name, direction)
}

func (s *ReferenceService) DeleteTransactionType(ctx context.Context, id int64) error {
	return s.store.DeleteTransactionType(ctx, id)
}

func (s *ReferenceService) CreateCategory(ctx context.Context, typeID int64, name string) (core.Category, error) {
	name, fe := checkName(name)
	if fe != nil {
		return core.Category{}, fe
	}
	return s.store.CreateCategory(ctx, typeID, name)
}

func (s *ReferenceService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *ReferenceService) ListCategories(ctx context.Context, typeID *int64, search string) ([]core.Category, error) {
	return s.store.ListCategories(ctx, typeID, search)
}

func (s *ReferenceService) UpdateCategory(ctx context.Context, id, typeID int64, name string) (core.Category, error) {
	name, fe := checkName(name)
	if fe != nil {
		return core.Category{}, fe
	}
	return s.store.UpdateCategory(ctx, id, typeID, name)
}

func (s *ReferenceService) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

func (s *ReferenceService) CreateSubcategory(ctx context.Context, categoryID int64, name string) (core.Subcategory, error) {
	name, fe := checkName(name)
	if fe != nil {
		return core.Subcategory{}, fe
	}
	return s.store.CreateSubcategory(ctx, categoryID, name)
}

func (s *ReferenceService) GetSubcategory(ctx context.Context, id int64) (core.Subcategory, error) {
	return s.store.GetSubcategory(ctx, id)
}

func (s *ReferenceService) ListSubcategories(ctx context.Context, categoryID *int64, search string) ([]core.Subcategory, error) {
	return s.store.ListSubcategories(ctx, categoryID, search)
}

func (s *ReferenceService) UpdateSubcategory(ctx context.Context, id, categoryID int64, name string) (core.Subcategory, error) {
	name, fe := checkName(name)
	if fe != nil {
		return core.Subcategory{}, fe
	}
	return s.store.UpdateSubcategory(ctx, id, categoryID, name)
}

func (s *ReferenceService) DeleteSubcategory(ctx context.Context, id int64) error {
	return s.store.DeleteSubcategory(ctx, id)
}

// CategoriesOf lists the categories belonging to one transaction type.
// Unknown ids yield an empty list rather than an error so dependent
// dropdowns can refresh without special-casing.
func (s *ReferenceService) CategoriesOf(ctx context.Context, typeID int64) ([]core.Category, error) {
	return s.store.ListCategories(ctx, &typeID, "")
}

// SubcategoriesOf lists the subcategories belonging to one category.
func (s *ReferenceService) SubcategoriesOf(ctx context.Context, categoryID int64) ([]core.Subcategory, error) {
	return s.store.ListSubcategories(ctx, &categoryID, "")
}

package core

// Validation messages surfaced to callers, keyed by field in FieldErrors.
const (
	MsgAmountPositive          = "amount must be a positive number"
	MsgAmountInvalid           = "enter a valid amount"
	MsgTransactionTypeRequired = "transaction type is required"
	MsgCategoryRequired        = "category is required"
	MsgCategoryMismatch        = "selected category does not belong to the selected transaction type"
	MsgSubcategoryRequired     = "subcategory is required"
	MsgSubcategoryMismatch     = "selected subcategory does not belong to the selected category"
	MsgCreatedDateInvalid      = "enter a valid date in YYYY-MM-DD format"
)

// ValidateRecord is the single consistency check every write path goes
// through: the service layer runs it against the references it resolved,
// and the storage layer runs it again inside the write transaction against
// freshly read rows, so no path can persist an inconsistent record.
//
// A nil reference stands for "absent". All checks run; every violated
// field is reported at once. The returned mapping is nil-safe to range
// over and empty when the candidate is consistent.
func ValidateRecord(tt *TransactionType, cat *Category, sub *Subcategory, amount Amount) FieldErrors {
	fe := FieldErrors{}

	if err := amount.Validate(); err != nil {
		fe.Add("amount", MsgAmountPositive)
	}

	if tt == nil {
		fe.Add("transaction_type", MsgTransactionTypeRequired)
	}

	switch {
	case cat == nil:
		fe.Add("category", MsgCategoryRequired)
	case tt != nil && cat.TransactionTypeID != tt.ID:
		fe.Add("category", MsgCategoryMismatch)
	}

	// The subcategory check only needs the category, so a transaction
	// type mismatch never masks it.
	switch {
	case sub == nil:
		fe.Add("subcategory", MsgSubcategoryRequired)
	case cat != nil && sub.CategoryID != cat.ID:
		fe.Add("subcategory", MsgSubcategoryMismatch)
	}

	return fe
}

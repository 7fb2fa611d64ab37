package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// AccountSortFields contains allowed sort fields for ledger accounts
var AccountSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"type":       true,
	"balance":    true,
}

// JournalEntrySortFields contains allowed sort fields for journal entries
var JournalEntrySortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"entry_number":   true,
	"entry_date":     true,
	"reference_type": true,
}

// DocumentSortFields contains allowed sort fields for invoices and bills
var DocumentSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"number":             true,
	"issue_date":         true,
	"due_date":           true,
	"party_name":         true,
	"status":             true,
	"total_amount":       true,
	"outstanding_amount": true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"payment_number": true,
	"payment_date":   true,
	"amount":         true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"order_date":   true,
	"party_name":   true,
	"status":       true,
	"total_amount": true,
}

// POSTransactionSortFields contains allowed sort fields for POS sales
var POSTransactionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"receipt_number":   true,
	"transaction_date": true,
	"total_amount":     true,
}

// CashSessionSortFields contains allowed sort fields for cash sessions
var CashSessionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"opened_at":  true,
	"closed_at":  true,
	"status":     true,
}

// TransferSortFields contains allowed sort fields for stock transfers
var TransferSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"transfer_number": true,
	"status":          true,
}

// OpnameSortFields contains allowed sort fields for stock counts
var OpnameSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"opname_number": true,
	"opname_date":   true,
	"status":        true,
}

// AssetSortFields contains allowed sort fields for fixed assets
var AssetSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"code":             true,
	"name":             true,
	"acquisition_date": true,
	"current_value":    true,
	"status":           true,
}

package constants

import "strings"

// InvoiceStatus is the canonical payment state of an invoice.
type InvoiceStatus string

// Stable values (stored as-is in the invoices table).
const (
	StatusPending InvoiceStatus = "Pending"
	StatusOverdue InvoiceStatus = "Overdue"
	StatusPaid    InvoiceStatus = "Paid"
)

// StatusAll is the filter sentinel that matches every status.
const StatusAll = "All"

// allStatuses is the fixed reporting order.
var allStatuses = []InvoiceStatus{
	StatusPending,
	StatusOverdue,
	StatusPaid,
}

// Statuses returns the statuses in reporting order.
func Statuses() []InvoiceStatus {
	out := make([]InvoiceStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func StatusStrings() []string {
	result := make([]string, len(allStatuses))
	for i, s := range allStatuses {
		result[i] = string(s)
	}
	return result
}

// CanonicalizeStatus maps raw status text onto a known status, ignoring case
// and surrounding whitespace.
func CanonicalizeStatus(input string) (InvoiceStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]InvoiceStatus{
		"unpaid":  StatusPending,
		"open":    StatusPending,
		"late":    StatusOverdue,
		"settled": StatusPaid,
	}
	if s, ok := synonyms[normalized]; ok {
		return s, true
	}

	for _, s := range allStatuses {
		if normalized == strings.ToLower(string(s)) {
			return s, true
		}
	}
	return "", false
}

// StatusFilter is a status selection for queries: a concrete status or All.
type StatusFilter string

// ParseStatusFilter accepts "All" or any known status, case-insensitively.
// An empty input means All.
func ParseStatusFilter(input string) (StatusFilter, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || strings.EqualFold(trimmed, StatusAll) {
		return StatusFilter(StatusAll), true
	}
	s, ok := CanonicalizeStatus(trimmed)
	if !ok {
		return "", false
	}
	return StatusFilter(s), true
}

// IsAll reports whether the filter lets every status through.
func (f StatusFilter) IsAll() bool {
	return f == "" || string(f) == StatusAll
}

// Matches reports whether s passes the filter.
func (f StatusFilter) Matches(s InvoiceStatus) bool {
	return f.IsAll() || string(f) == string(s)
}

func (f StatusFilter) String() string {
	if f == "" {
		return StatusAll
	}
	return string(f)
}

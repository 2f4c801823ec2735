package constants

import "strings"

// SchemaVariant tags the column layout of a raw source file.
type SchemaVariant string

const (
	// VariantCustomerInvoices is the customer invoices dataset export
	// (id_invoice, issuedDate, client, country, service, total, invoiceStatus, dueDate).
	VariantCustomerInvoices SchemaVariant = "customer_invoices_dataset"
	// VariantPassthrough rows are deduplicated and written back untouched.
	VariantPassthrough SchemaVariant = "passthrough"
)

// DedupScope selects how far duplicate detection reaches.
type DedupScope string

const (
	DedupPerFile DedupScope = "per_file"
	DedupGlobal  DedupScope = "global"
)

var allVariants = []SchemaVariant{
	VariantCustomerInvoices,
	VariantPassthrough,
}

func VariantStrings() []string {
	result := make([]string, len(allVariants))
	for i, v := range allVariants {
		result[i] = string(v)
	}
	return result
}

// ParseVariant resolves a variant tag; unknown tags are not an error at this
// level, callers decide whether to fall back to passthrough.
func ParseVariant(input string) (SchemaVariant, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, v := range allVariants {
		if normalized == string(v) {
			return v, true
		}
	}
	return VariantPassthrough, false
}

// ParseDedupScope defaults to per-file for empty input.
func ParseDedupScope(input string) (DedupScope, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", string(DedupPerFile), "per-file", "file":
		return DedupPerFile, true
	case string(DedupGlobal):
		return DedupGlobal, true
	}
	return DedupPerFile, false
}

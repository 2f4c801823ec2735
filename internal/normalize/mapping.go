package normalize

import (
	"github.com/tymoteuszmilek/Invoice-Automation/constants"
)

// Mapping describes how a raw schema variant maps onto the canonical invoice.
type Mapping struct {
	Variant constants.SchemaVariant

	// Identity key parts: id + "-" + issued + "-" + first NamePrefix runes of name.
	IDColumn     string
	IssuedColumn string
	NameColumn   string
	NamePrefix   int

	// Columns maps canonical column names to raw column names.
	Columns map[string]string

	// QuantityColumn is read when set and present in the row; otherwise every
	// line has quantity 1.
	QuantityColumn string

	// Required lists raw columns whose values may not be empty.
	Required []string
}

// CustomerInvoices is the mapping of the customer invoices dataset export.
var CustomerInvoices = Mapping{
	Variant:      constants.VariantCustomerInvoices,
	IDColumn:     "id_invoice",
	IssuedColumn: "issuedDate",
	NameColumn:   "client",
	NamePrefix:   2,
	Columns: map[string]string{
		"vendor_name":    "client",
		"address":        "country",
		"issued_date":    "issuedDate",
		"due_date":       "dueDate",
		"invoice_status": "invoiceStatus",
		"product_name":   "service",
		"unit_price":     "total",
	},
	Required: []string{"id_invoice", "issuedDate", "client", "dueDate", "invoiceStatus", "total"},
}

// RawColumns lists every raw column the mapping reads.
func (m Mapping) RawColumns() []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(c string) {
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	add(m.IDColumn)
	add(m.IssuedColumn)
	add(m.NameColumn)
	for _, canonical := range []string{"vendor_name", "address", "issued_date", "due_date", "invoice_status", "product_name", "unit_price"} {
		add(m.Columns[canonical])
	}
	return out
}

// MissingColumns reports the raw columns the mapping needs that header lacks.
func (m Mapping) MissingColumns(header []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, c := range m.RawColumns() {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Package normalize turns raw source rows into canonical invoices.
package normalize

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

// Normalizer holds one mapping per recognized schema variant.
type Normalizer struct {
	mappings map[constants.SchemaVariant]Mapping
}

// New returns a normalizer for the given mappings. Without arguments it
// knows the customer invoices dataset.
func New(mappings ...Mapping) *Normalizer {
	if len(mappings) == 0 {
		mappings = []Mapping{CustomerInvoices}
	}
	n := &Normalizer{mappings: make(map[constants.SchemaVariant]Mapping, len(mappings))}
	for _, m := range mappings {
		n.mappings[m.Variant] = m
	}
	return n
}

// Mapping returns the mapping for variant; ok is false for passthrough or
// unknown variants.
func (n *Normalizer) Mapping(variant constants.SchemaVariant) (Mapping, bool) {
	m, ok := n.mappings[variant]
	return m, ok
}

// Recognizes reports whether rows of variant are remapped.
func (n *Normalizer) Recognizes(variant constants.SchemaVariant) bool {
	_, ok := n.mappings[variant]
	return ok
}

// IdentityKey builds the invoice number of rec from the raw strings.
func IdentityKey(m Mapping, rec entity.RawRecord) string {
	id, _ := rec.Get(m.IDColumn)
	issued, _ := rec.Get(m.IssuedColumn)
	name, _ := rec.Get(m.NameColumn)
	return id + "-" + issued + "-" + prefix(name, m.NamePrefix)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Normalize maps one raw record onto the canonical invoice. Errors wrap
// common.ErrSchemaMismatch or common.ErrInvalidValue and never abort a batch.
func (n *Normalizer) Normalize(variant constants.SchemaVariant, rec entity.RawRecord) (entity.Invoice, error) {
	m, ok := n.mappings[variant]
	if !ok {
		return entity.Invoice{}, common.SchemaMismatch("variant %q has no mapping", variant)
	}
	return m.Apply(rec)
}

// Apply maps rec using m.
func (m Mapping) Apply(rec entity.RawRecord) (entity.Invoice, error) {
	for _, c := range m.RawColumns() {
		if _, ok := rec.Get(c); !ok {
			return entity.Invoice{}, common.SchemaMismatch("%s line %d: missing column %q", rec.Source, rec.Line, c)
		}
	}
	for _, c := range m.Required {
		if v, _ := rec.Get(c); strings.TrimSpace(v) == "" {
			return entity.Invoice{}, common.SchemaMismatch("%s line %d: empty value for %q", rec.Source, rec.Line, c)
		}
	}

	col := func(canonical string) string {
		v, _ := rec.Get(m.Columns[canonical])
		return v
	}

	issued, err := utils.ParseRawDate(col("issued_date"))
	if err != nil {
		return entity.Invoice{}, common.InvalidValue("%s line %d: issued date: %v", rec.Source, rec.Line, err)
	}
	due, err := utils.ParseRawDate(col("due_date"))
	if err != nil {
		return entity.Invoice{}, common.InvalidValue("%s line %d: due date: %v", rec.Source, rec.Line, err)
	}
	status, ok := constants.CanonicalizeStatus(col("invoice_status"))
	if !ok {
		return entity.Invoice{}, common.InvalidValue("%s line %d: unknown status %q", rec.Source, rec.Line, col("invoice_status"))
	}
	price, err := ParseAmount(col("unit_price"))
	if err != nil {
		return entity.Invoice{}, common.InvalidValue("%s line %d: unit price: %v", rec.Source, rec.Line, err)
	}

	quantity := 1
	if m.QuantityColumn != "" {
		if raw, ok := rec.Get(m.QuantityColumn); ok && strings.TrimSpace(raw) != "" {
			q, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || q < 1 {
				return entity.Invoice{}, common.InvalidValue("%s line %d: quantity %q", rec.Source, rec.Line, raw)
			}
			quantity = q
		}
	}

	return entity.Invoice{
		InvoiceNumber: IdentityKey(m, rec),
		VendorName:    strings.TrimSpace(col("vendor_name")),
		Address:       strings.TrimSpace(col("address")),
		IssuedDate:    issued,
		DueDate:       due,
		Status:        status,
		ProductName:   strings.TrimSpace(col("product_name")),
		Quantity:      quantity,
		UnitPrice:     price.Round(2),
	}, nil
}

// ParseAmount reads a non-negative money amount, tolerating a leading
// currency symbol and thousands separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimLeft(clean, "$€£ ")
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, " ", "")
	if clean == "" {
		return decimal.Zero, common.InvalidValue("empty amount")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, common.InvalidValue("amount %q: %v", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, common.InvalidValue("negative amount %q", s)
	}
	return d, nil
}

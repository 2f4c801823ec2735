// Package dedup drops repeated rows, first by full-row equality and then by
// invoice number. The first occurrence always wins.
package dedup

import (
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
)

// Collision is an invoice dropped because its number was already kept.
type Collision struct {
	InvoiceNumber string
	// Position is the index of the dropped invoice in the input slice.
	Position int
}

func (c Collision) Err() error {
	return common.NewAppError(common.CodeIdentityCollision, "duplicate invoice number "+c.InvoiceNumber, common.ErrIdentityCollision)
}

// Deduplicator remembers what it has kept. One value per file gives per-file
// scope; sharing one value across files gives global scope.
type Deduplicator struct {
	rows map[string]struct{}
	keys map[string]struct{}
}

func New() *Deduplicator {
	return &Deduplicator{
		rows: make(map[string]struct{}),
		keys: make(map[string]struct{}),
	}
}

// DropDuplicateRecords keeps the first of every set of identical rows.
func (d *Deduplicator) DropDuplicateRecords(records []entity.RawRecord) ([]entity.RawRecord, int) {
	kept := make([]entity.RawRecord, 0, len(records))
	dropped := 0
	for _, r := range records {
		fp := r.Fingerprint()
		if _, seen := d.rows[fp]; seen {
			dropped++
			continue
		}
		d.rows[fp] = struct{}{}
		kept = append(kept, r)
	}
	return kept, dropped
}

// DropIdentityCollisions keeps the first invoice for every invoice number.
func (d *Deduplicator) DropIdentityCollisions(invoices []entity.Invoice) ([]entity.Invoice, []Collision) {
	kept := make([]entity.Invoice, 0, len(invoices))
	var collisions []Collision
	for i, inv := range invoices {
		if _, seen := d.keys[inv.InvoiceNumber]; seen {
			collisions = append(collisions, Collision{InvoiceNumber: inv.InvoiceNumber, Position: i})
			continue
		}
		d.keys[inv.InvoiceNumber] = struct{}{}
		kept = append(kept, inv)
	}
	return kept, collisions
}

// Records runs the full-row pass with a fresh seen-set.
func Records(records []entity.RawRecord) ([]entity.RawRecord, int) {
	return New().DropDuplicateRecords(records)
}

// Invoices runs the identity pass with a fresh seen-set.
func Invoices(invoices []entity.Invoice) ([]entity.Invoice, []Collision) {
	return New().DropIdentityCollisions(invoices)
}

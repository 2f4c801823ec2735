package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
)

// ProductTotal is one bucket of the spend-by-product view.
type ProductTotal struct {
	ProductName string          `json:"product_name"`
	Total       decimal.Decimal `json:"total"`
}

// StatusTotal is one bucket of the spend-by-status view.
type StatusTotal struct {
	Status constants.InvoiceStatus `json:"invoice_status"`
	Total  decimal.Decimal         `json:"total"`
}

// DayTotal is one bucket of the daily spend series.
type DayTotal struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// AggregateViews holds the three report views over one invoice set.
type AggregateViews struct {
	ByProduct []ProductTotal `json:"by_product"`
	ByStatus  []StatusTotal  `json:"by_status"`
	ByDay     []DayTotal     `json:"by_day"`
}

// BatchReport counts what happened to the rows of one source file.
type BatchReport struct {
	BatchID            string                  `json:"batch_id"`
	Source             string                  `json:"source"`
	Variant            constants.SchemaVariant `json:"variant"`
	RowsRead           int                     `json:"rows_read"`
	FullRowDuplicates  int                     `json:"full_row_duplicates"`
	IdentityCollisions int                     `json:"identity_collisions"`
	SchemaMismatches   int                     `json:"schema_mismatches"`
	InvalidValues      int                     `json:"invalid_values"`
	DueBeforeIssued    int                     `json:"due_before_issued"`
	RowsWritten        int                     `json:"rows_written"`
	Output             string                  `json:"output,omitempty"`
	Err                string                  `json:"error,omitempty"`
}

// Dropped is the number of rows that did not make it into the output.
func (r BatchReport) Dropped() int {
	return r.FullRowDuplicates + r.IdentityCollisions + r.SchemaMismatches + r.InvalidValues
}

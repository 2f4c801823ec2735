package ingest

import (
	"context"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
)

// FileResult is the per-file cleaning outcome.
type FileResult struct {
	SourcePath string
	OutputPath string
	Variant    constants.SchemaVariant
	Report     entity.BatchReport

	// Header and exactly one of Invoices / Records describe the cleaned output.
	Header   []string
	Invoices []entity.Invoice
	Records  []entity.RawRecord

	Err string
}

// Rows renders the cleaned output as CSV cells in Header order.
func (r FileResult) Rows() [][]string {
	if r.Invoices != nil {
		out := make([][]string, len(r.Invoices))
		for i, inv := range r.Invoices {
			out[i] = canonicalCells(inv)
		}
		return out
	}
	out := make([][]string, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Cells()
	}
	return out
}

// DirStats summarizes a directory run.
type DirStats struct {
	Scanned     uint32
	Matched     uint32
	Succeeded   uint32
	Failed      uint32
	RowsRead    int
	RowsWritten int
	RowsDropped int
}

// Ingestor is the behavior the batch tool depends on.
type Ingestor interface {
	// ProcessFile cleans a single file without writing it anywhere.
	ProcessFile(ctx context.Context, path string) (FileResult, error)
	// ProcessDirectory cleans every matching file under root into outDir.
	ProcessDirectory(ctx context.Context, root, outDir string) ([]FileResult, DirStats, error)
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/dedup"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/normalize"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/observability"
)

// FSIngestor cleans raw CSV batches read from the local filesystem.
type FSIngestor struct {
	normalizer *normalize.Normalizer
	manifest   *Manifest
	scope      constants.DedupScope
	workers    int
	skipHidden bool
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option configures an FSIngestor.
type Option func(*FSIngestor)

// WithWorkers bounds how many files are read and cleaned at once.
func WithWorkers(n int) Option {
	return func(i *FSIngestor) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithDedupScope selects per-file or global duplicate detection.
func WithDedupScope(s constants.DedupScope) Option {
	return func(i *FSIngestor) { i.scope = s }
}

// WithManifest sets the source manifest used to tag variants.
func WithManifest(m *Manifest) Option {
	return func(i *FSIngestor) {
		if m != nil {
			i.manifest = m
		}
	}
}

// WithNormalizer replaces the default mapping set.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(i *FSIngestor) {
		if n != nil {
			i.normalizer = n
		}
	}
}

// WithSkipHidden controls whether dot files and directories are ignored.
func WithSkipHidden(skip bool) Option {
	return func(i *FSIngestor) { i.skipHidden = skip }
}

// WithMetrics records row outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(i *FSIngestor) { i.metrics = m }
}

func NewFSIngestor(logger *slog.Logger, opts ...Option) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	i := &FSIngestor{
		normalizer: normalize.New(),
		manifest:   DefaultManifest(),
		scope:      constants.DedupPerFile,
		workers:    4,
		skipHidden: true,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// staged is a file that has been read but not yet cleaned.
type staged struct {
	result  FileResult
	header  []string
	records []entity.RawRecord
}

func (i *FSIngestor) read(ctx context.Context, path string) (*staged, error) {
	variant := i.manifest.Resolve(path)
	st := &staged{result: FileResult{
		SourcePath: path,
		Variant:    variant,
		Report: entity.BatchReport{
			BatchID: common.BatchIDFromContext(ctx),
			Source:  filepath.Base(path),
			Variant: variant,
		},
	}}

	header, records, err := ReadRecords(path)
	if err != nil {
		i.logger.Error("failed to read source file", "file", path, "error", err)
		return st, err
	}
	st.header = header
	st.records = records
	st.result.Report.RowsRead = len(records)
	return st, nil
}

// clean runs the full-row pass, normalization and the identity pass, in that
// order, against the seen-sets of d.
func (i *FSIngestor) clean(d *dedup.Deduplicator, st *staged) {
	res := &st.result
	rows, dropped := d.DropDuplicateRecords(st.records)
	res.Report.FullRowDuplicates = dropped

	if !i.normalizer.Recognizes(res.Variant) {
		res.Header = st.header
		res.Records = rows
		if res.Records == nil {
			res.Records = []entity.RawRecord{}
		}
		res.Report.RowsWritten = len(rows)
		return
	}

	mapping, _ := i.normalizer.Mapping(res.Variant)
	if missing := mapping.MissingColumns(st.header); len(missing) > 0 && len(rows) > 0 {
		i.logger.Warn("source header is missing mapped columns", "file", res.SourcePath, "variant", res.Variant, "missing", missing)
	}

	invoices := make([]entity.Invoice, 0, len(rows))
	for _, rec := range rows {
		inv, err := mapping.Apply(rec)
		switch {
		case err == nil:
			if inv.DueDate.Before(inv.IssuedDate) {
				res.Report.DueBeforeIssued++
			}
			invoices = append(invoices, inv)
		case errors.Is(err, common.ErrSchemaMismatch):
			res.Report.SchemaMismatches++
			i.logger.Debug("row dropped", "file", res.SourcePath, "line", rec.Line, "error", err)
		default:
			res.Report.InvalidValues++
			i.logger.Debug("row dropped", "file", res.SourcePath, "line", rec.Line, "error", err)
		}
	}

	kept, collisions := d.DropIdentityCollisions(invoices)
	res.Report.IdentityCollisions = len(collisions)
	for _, c := range collisions {
		i.logger.Debug("row dropped", "file", res.SourcePath, "error", c.Err())
	}

	res.Header = entity.CanonicalColumns
	res.Invoices = kept
	res.Report.RowsWritten = len(kept)
}

// ProcessFile reads and cleans one file with a fresh per-file scope.
func (i *FSIngestor) ProcessFile(ctx context.Context, path string) (FileResult, error) {
	if common.BatchIDFromContext(ctx) == "" {
		ctx = common.WithBatchID(ctx, uuid.NewString())
	}
	st, err := i.read(ctx, path)
	if err != nil {
		st.result.Err = err.Error()
		st.result.Report.Err = err.Error()
		i.metrics.IncrFile("failed")
		return st.result, fmt.Errorf("read %s: %w", path, err)
	}
	i.clean(dedup.New(), st)
	i.metrics.ObserveBatch(st.result.Report)
	i.metrics.IncrFile("ok")
	i.logBatch(st.result.Report)
	return st.result, nil
}

// WriteResult writes the cleaned output of res into outDir, mirroring the
// source path relative to root so same-named files in different
// subdirectories stay apart, and records the path on res.
func (i *FSIngestor) WriteResult(res *FileResult, root, outDir string) error {
	if res.Header == nil {
		return nil
	}
	out := filepath.Join(outDir, outputName(root, res.SourcePath))
	if err := WriteCSV(out, res.Header, res.Rows()); err != nil {
		i.logger.Error("failed to write cleaned file", "file", out, "error", err)
		return fmt.Errorf("write %s: %w", out, err)
	}
	res.OutputPath = out
	res.Report.Output = out
	return nil
}

// outputName is the path of source relative to root, or its base name when
// source does not live under root.
func outputName(root, source string) string {
	if root == "" {
		return filepath.Base(source)
	}
	rel, err := filepath.Rel(root, source)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(source)
	}
	return rel
}

func (i *FSIngestor) logBatch(r entity.BatchReport) {
	i.logger.Info("ingest.batch.ok",
		"batch_id", r.BatchID,
		"source", r.Source,
		"variant", r.Variant,
		"rows_read", r.RowsRead,
		"full_row_duplicates", r.FullRowDuplicates,
		"identity_collisions", r.IdentityCollisions,
		"schema_mismatches", r.SchemaMismatches,
		"invalid_values", r.InvalidValues,
		"due_before_issued", r.DueBeforeIssued,
		"rows_written", r.RowsWritten,
	)
}

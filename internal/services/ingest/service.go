package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/ingest"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/repository"
)

// Service cleans raw invoice directories and optionally loads the result
// into the invoice store.
type Service struct {
	ingestor ingest.Ingestor
	store    repository.InvoiceStore
	logger   *slog.Logger
}

// NewService creates a new ingest service. store may be nil when loading is
// never requested.
func NewService(ing ingest.Ingestor, store repository.InvoiceStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ingestor: ing,
		store:    store,
		logger:   logger,
	}
}

// DirectoryRequest represents directory ingestion parameters.
type DirectoryRequest struct {
	RootPath string
	OutDir   string
	Load     bool
}

// DirectoryResult represents directory ingestion results.
type DirectoryResult struct {
	BatchID    string
	Statistics ingest.DirStats
	Results    []ingest.FileResult
	Loaded     int
}

// IngestDirectory cleans every source file under the root into OutDir. With
// Load set, the cleaned invoices of all successful files are saved in one
// transaction; a store failure is returned alongside the cleaning result.
func (s *Service) IngestDirectory(ctx context.Context, req DirectoryRequest) (*DirectoryResult, error) {
	validator := common.NewValidator()
	validator.Field("root_path", req.RootPath, common.Required)
	validator.Field("out_dir", req.OutDir, common.Required)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	if req.Load && s.store == nil {
		return nil, common.NewAppError(common.CodeRepositoryUnavailable, "no invoice store configured", common.ErrRepositoryUnavailable)
	}

	batchID := common.BatchIDFromContext(ctx)
	if batchID == "" {
		batchID = uuid.NewString()
		ctx = common.WithBatchID(ctx, batchID)
	}

	root := strings.TrimSpace(req.RootPath)
	s.logger.Info("starting directory ingest", "batch_id", batchID, "root", root, "out", req.OutDir, "load", req.Load)
	results, stats, err := s.ingestor.ProcessDirectory(ctx, root, strings.TrimSpace(req.OutDir))
	if err != nil {
		s.logger.Error("directory ingest failed", "batch_id", batchID, "root", root, "error", err)
		return nil, common.WrapError(err, "ingest directory")
	}
	res := &DirectoryResult{BatchID: batchID, Statistics: stats, Results: results}
	if !req.Load {
		return res, nil
	}

	invoices := CleanedInvoices(results)
	n, err := s.store.SaveInvoices(ctx, invoices)
	if err != nil {
		s.logger.Error("ingest.load.failed", "batch_id", batchID, "invoices", len(invoices), "error", err)
		if errors.Is(err, context.Canceled) {
			return res, err
		}
		return res, common.RepositoryUnavailable("save_invoices", err)
	}
	res.Loaded = n
	s.logger.Info("ingest.load.ok", "batch_id", batchID, "invoices", n)
	return res, nil
}

// CleanedInvoices collects the canonical invoices of every file that was
// cleaned without error. Passthrough files carry no invoices.
func CleanedInvoices(results []ingest.FileResult) []entity.Invoice {
	var out []entity.Invoice
	for _, r := range results {
		if r.Err != "" {
			continue
		}
		out = append(out, r.Invoices...)
	}
	return out
}

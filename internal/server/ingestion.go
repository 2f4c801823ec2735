package server

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/async"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	ingestsvc "github.com/tymoteuszmilek/Invoice-Automation/internal/services/ingest"
)

// IngestionService runs directory cleaning on request.
type IngestionService struct {
	svc    *ingestsvc.Service
	queue  async.Queue
	logger *slog.Logger
}

var _ IngestionServer = (*IngestionService)(nil)

// NewIngestionService creates the ingestion endpoint. queue may be nil, in
// which case async requests are rejected.
func NewIngestionService(svc *ingestsvc.Service, queue async.Queue, logger *slog.Logger) *IngestionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionService{svc: svc, queue: queue, logger: logger}
}

// IngestDirectory expects root_path and out_dir, and optional load and async
// flags. A load failure after a successful clean is reported in the response.
// An async request only returns the batch id of the queued run.
func (s *IngestionService) IngestDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	dr := ingestsvc.DirectoryRequest{
		RootPath: getString(req, "root_path"),
		OutDir:   getString(req, "out_dir"),
		Load:     getBool(req, "load"),
	}
	if getBool(req, "async") {
		return s.enqueue(ctx, dr)
	}

	res, err := s.svc.IngestDirectory(ctx, dr)
	if res == nil {
		return nil, common.ToStatus(err)
	}

	files := make([]any, len(res.Results))
	for i, r := range res.Results {
		files[i] = fileResultValue(r)
	}
	loadErr := ""
	if err != nil {
		s.logger.Error("ingest.load.failed", "batch_id", res.BatchID, "error", err)
		loadErr = err.Error()
	}
	st := res.Statistics
	return newStruct(map[string]any{
		"batch_id":     res.BatchID,
		"scanned":      st.Scanned,
		"matched":      st.Matched,
		"succeeded":    st.Succeeded,
		"failed":       st.Failed,
		"rows_read":    st.RowsRead,
		"rows_written": st.RowsWritten,
		"rows_dropped": st.RowsDropped,
		"loaded":       res.Loaded,
		"load_error":   loadErr,
		"files":        files,
	})
}

func (s *IngestionService) enqueue(ctx context.Context, dr ingestsvc.DirectoryRequest) (*structpb.Struct, error) {
	if s.queue == nil {
		return nil, common.UnavailableError("async ingestion is not enabled")
	}
	validator := common.NewValidator()
	validator.Field("root_path", dr.RootPath, common.Required)
	validator.Field("out_dir", dr.OutDir, common.Required)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	if err := s.queue.Enqueue(ctx, async.Job{BatchID: batchID, Request: dr}); err != nil {
		s.logger.Error("failed to enqueue ingest", "batch_id", batchID, "error", err)
		return nil, common.UnavailableError(err.Error())
	}
	return newStruct(map[string]any{"batch_id": batchID, "queued": true})
}

package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/filter"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/services/report"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

// QueryService exposes the report service over gRPC.
type QueryService struct {
	svc    *report.Service
	policy filter.BoundPolicy
	logger *slog.Logger
}

var _ InvoiceQueryServer = (*QueryService)(nil)

func NewQueryService(svc *report.Service, policy filter.BoundPolicy, logger *slog.Logger) *QueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryService{svc: svc, policy: policy, logger: logger}
}

func (s *QueryService) ListInvoices(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c, err := filter.ParseCriteria(filterInput(req), entity.DateFieldDue, s.policy)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	rows, err := s.svc.Table(ctx, c)
	if err != nil {
		s.logger.Error("failed to list invoices", "request_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{"invoices": rowsValue(rows)})
}

func (s *QueryService) GetInvoiceDetail(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	d, err := s.svc.Detail(ctx, getString(req, "invoice_number"))
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(detailValue(d))
}

func (s *QueryService) SpendByProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	validator := common.NewValidator()
	validator.Field("start_date", getString(req, "start_date"), common.DateYMD)
	validator.Field("end_date", getString(req, "end_date"), common.DateYMD)
	if err := validator.FilterError(); err != nil {
		return nil, common.ToStatus(err)
	}
	start := parseOptionalDate(getString(req, "start_date"))
	end := parseOptionalDate(getString(req, "end_date"))

	spend, err := s.svc.SpendByProduct(ctx, start, end)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{"products": spendValue(spend)})
}

// ExportTable re-runs the table query for the criteria and writes it out.
func (s *QueryService) ExportTable(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c, err := filter.ParseCriteria(filterInput(req), entity.DateFieldDue, filter.BoundsRequired)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	rows, err := s.svc.Table(ctx, c)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	path, err := s.svc.ExportTable(ctx, c, rows)
	if err != nil {
		s.logger.Error("export.table.failed", "request_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{"path": path, "rows": len(rows)})
}

func (s *QueryService) GenerateReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c, err := filter.ParseCriteria(filterInput(req), entity.DateFieldIssued, filter.BoundsRequired)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	res, err := s.svc.Generate(ctx, c)
	if err != nil {
		s.logger.Error("report.generate.failed", "request_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, common.ToStatus(err)
	}
	return newStruct(reportValue(res))
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := utils.ParseYMD(s)
	if err != nil {
		return nil
	}
	return &t
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

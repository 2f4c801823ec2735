package report

import (
	"context"
	"errors"
	"image/color"
	"log/slog"
	"strings"
	"time"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/aggregate"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/export"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/filter"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/repository"
)

// Service answers table queries and produces exports and chart reports.
type Service struct {
	repo        repository.InvoiceRepository
	sink        export.Sink
	renderer    export.ChartRenderer
	tableFormat string
	logger      *slog.Logger
}

// NewService creates a new report service. tableFormat is "csv" or "xlsx".
func NewService(repo repository.InvoiceRepository, sink export.Sink, renderer export.ChartRenderer, tableFormat string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if renderer == nil {
		renderer = export.NewPlotRenderer()
	}
	return &Service{
		repo:        repo,
		sink:        sink,
		renderer:    renderer,
		tableFormat: tableFormat,
		logger:      logger,
	}
}

// Result is the outcome of a generated report.
type Result struct {
	Views    entity.AggregateViews
	Invoices int
	Written  []string
	// Skipped lists charts that had nothing to draw.
	Skipped []string
}

// Table returns the invoice table for c, filtering dates on due_date. On a
// repository failure the rows are empty and the error is returned.
func (s *Service) Table(ctx context.Context, c entity.FilterCriteria) ([]entity.InvoiceRow, error) {
	c.DateField = entity.DateFieldDue
	if err := filter.Validate(c); err != nil {
		return []entity.InvoiceRow{}, err
	}
	invoices, err := s.repo.ListInvoices(ctx, c)
	if err != nil {
		s.logger.Warn("report.table.failed", "status", c.Status.String(), "error", err)
		return []entity.InvoiceRow{}, err
	}
	return entity.Rows(invoices), nil
}

// Detail returns the detail view of one invoice.
func (s *Service) Detail(ctx context.Context, invoiceNumber string) (*entity.InvoiceDetail, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	validator := common.NewValidator()
	validator.Field("invoice_number", invoiceNumber, common.Required)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	return s.repo.GetInvoiceDetail(ctx, invoiceNumber)
}

// ExportTable writes rows through the sink under a name derived from the
// criteria. Both date bounds are required to name the file.
func (s *Service) ExportTable(ctx context.Context, c entity.FilterCriteria, rows []entity.InvoiceRow) (string, error) {
	span, err := requireRange(c)
	if err != nil {
		return "", err
	}
	name := export.TableFileName(*span, c.Status, s.tableFormat)
	path, err := s.sink.WriteTable(ctx, name, rows, s.tableFormat)
	if err != nil {
		return "", common.WrapError(err, "export table")
	}
	return path, nil
}

// Generate lists invoices issued within the range, aggregates them and writes
// the three report charts.
func (s *Service) Generate(ctx context.Context, c entity.FilterCriteria) (*Result, error) {
	start := time.Now()
	c.DateField = entity.DateFieldIssued
	span, err := requireRange(c)
	if err != nil {
		return nil, err
	}
	if err := filter.Validate(c); err != nil {
		return nil, err
	}

	listed, err := s.repo.ListInvoices(ctx, c)
	if err != nil {
		s.logger.Warn("report.generate.failed", "status", c.Status.String(), "error", err)
		return nil, err
	}
	invoices := filter.Apply(listed, c)
	views := aggregate.Aggregate(invoices, span)

	res := &Result{Views: views, Invoices: len(invoices)}
	for _, chart := range charts(views) {
		png, err := s.renderer.Render(chart.Chart)
		if errors.Is(err, export.ErrNoData) {
			s.logger.Info("report.chart.skipped", "chart", chart.name)
			res.Skipped = append(res.Skipped, chart.name)
			continue
		}
		if err != nil {
			return nil, common.WrapError(err, "render "+chart.name)
		}
		path, err := s.sink.WriteImage(ctx, export.ReportFileName(*span, c.Status, chart.name), png)
		if err != nil {
			return nil, common.WrapError(err, "write "+chart.name)
		}
		res.Written = append(res.Written, path)
	}

	s.logger.Info("report.generate.ok",
		"status", c.Status.String(),
		"invoices", res.Invoices,
		"written", len(res.Written),
		"skipped", len(res.Skipped),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// SpendByProduct passes through to the repository.
func (s *Service) SpendByProduct(ctx context.Context, start, end *time.Time) ([]entity.ProductSpend, error) {
	if start != nil && end != nil && start.After(*end) {
		return []entity.ProductSpend{}, common.InvalidFilterInput("start date is after end date")
	}
	return s.repo.SpendByProduct(ctx, start, end)
}

func requireRange(c entity.FilterCriteria) (*entity.DateRange, error) {
	span := c.Range()
	if span == nil {
		return nil, common.InvalidFilterInput("start and end dates are required")
	}
	if span.Start.After(span.End) {
		return nil, common.InvalidFilterInput("start date is after end date")
	}
	return span, nil
}

type namedChart struct {
	export.Chart
	name string
}

var statusColors = []color.Color{
	color.RGBA{R: 135, G: 206, B: 235, A: 255}, // skyblue
	color.RGBA{R: 255, G: 127, B: 80, A: 255},  // coral
	color.RGBA{R: 255, G: 215, B: 0, A: 255},   // gold
}

func charts(v entity.AggregateViews) []namedChart {
	byProduct := export.Chart{Kind: export.BarChart, Title: "Total Spending by Category", XLabel: "Category", YLabel: "Total Spending"}
	for _, p := range v.ByProduct {
		byProduct.Labels = append(byProduct.Labels, p.ProductName)
		byProduct.Values = append(byProduct.Values, p.Total.InexactFloat64())
	}

	byStatus := export.Chart{Kind: export.BarChart, Title: "Total Spending by Invoice Status", XLabel: "Invoice Status", YLabel: "Total Spending", Colors: statusColors}
	for _, st := range v.ByStatus {
		byStatus.Labels = append(byStatus.Labels, string(st.Status))
		byStatus.Values = append(byStatus.Values, st.Total.InexactFloat64())
	}

	byDay := export.Chart{Kind: export.LineChart, Title: "Daily Spending", XLabel: "Date", YLabel: "Total Spending"}
	for _, d := range v.ByDay {
		byDay.Days = append(byDay.Days, d.Date)
		byDay.Values = append(byDay.Values, d.Total.InexactFloat64())
	}

	return []namedChart{
		{Chart: byProduct, name: export.ChartByProduct},
		{Chart: byStatus, name: export.ChartByStatus},
		{Chart: byDay, name: export.ChartByDay},
	}
}

package server

import (
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/filter"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/ingest"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/services/report"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

func getString(in *structpb.Struct, key string) string {
	return strings.TrimSpace(in.GetFields()[key].GetStringValue())
}

func getBool(in *structpb.Struct, key string) bool {
	return in.GetFields()[key].GetBoolValue()
}

func filterInput(in *structpb.Struct) filter.Input {
	return filter.Input{
		Status: getString(in, "status"),
		Search: getString(in, "search"),
		Start:  getString(in, "start_date"),
		End:    getString(in, "end_date"),
	}
}

// Money is sent as fixed two-decimal strings so no precision is lost.
func rowValue(r entity.InvoiceRow) map[string]any {
	return map[string]any{
		"invoice_number": r.InvoiceNumber,
		"vendor_name":    r.VendorName,
		"line_total":     r.LineTotal.StringFixed(2),
		"invoice_status": string(r.Status),
		"issued_date":    utils.FormatYMD(r.IssuedDate),
		"due_date":       utils.FormatYMD(r.DueDate),
	}
}

func rowsValue(rows []entity.InvoiceRow) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = rowValue(r)
	}
	return out
}

func detailValue(d *entity.InvoiceDetail) map[string]any {
	return map[string]any{
		"invoice_number": d.InvoiceNumber,
		"vendor_name":    d.VendorName,
		"address":        d.Address,
		"invoice_status": string(d.Status),
		"issued_date":    utils.FormatYMD(d.IssuedDate),
		"due_date":       utils.FormatYMD(d.DueDate),
		"product_name":   d.ProductName,
		"line_total":     d.LineTotal.StringFixed(2),
	}
}

func spendValue(spend []entity.ProductSpend) []any {
	out := make([]any, len(spend))
	for i, ps := range spend {
		out[i] = map[string]any{
			"product_name":   ps.ProductName,
			"total_spending": ps.TotalSpending.StringFixed(2),
		}
	}
	return out
}

func viewsValue(v entity.AggregateViews) map[string]any {
	byProduct := make([]any, len(v.ByProduct))
	for i, p := range v.ByProduct {
		byProduct[i] = map[string]any{"product_name": p.ProductName, "total": p.Total.StringFixed(2)}
	}
	byStatus := make([]any, len(v.ByStatus))
	for i, s := range v.ByStatus {
		byStatus[i] = map[string]any{"invoice_status": string(s.Status), "total": s.Total.StringFixed(2)}
	}
	byDay := make([]any, len(v.ByDay))
	for i, d := range v.ByDay {
		byDay[i] = map[string]any{"date": utils.FormatYMD(d.Date), "total": d.Total.StringFixed(2)}
	}
	return map[string]any{
		"by_product": byProduct,
		"by_status":  byStatus,
		"by_day":     byDay,
	}
}

func reportValue(r *report.Result) map[string]any {
	return map[string]any{
		"invoices": r.Invoices,
		"written":  stringsValue(r.Written),
		"skipped":  stringsValue(r.Skipped),
		"views":    viewsValue(r.Views),
	}
}

func fileResultValue(r ingest.FileResult) map[string]any {
	rep := r.Report
	return map[string]any{
		"source_path":         r.SourcePath,
		"output_path":         r.OutputPath,
		"variant":             string(r.Variant),
		"rows_read":           rep.RowsRead,
		"full_row_duplicates": rep.FullRowDuplicates,
		"identity_collisions": rep.IdentityCollisions,
		"schema_mismatches":   rep.SchemaMismatches,
		"invalid_values":      rep.InvalidValues,
		"due_before_issued":   rep.DueBeforeIssued,
		"rows_written":        rep.RowsWritten,
		"error":               r.Err,
	}
}

func stringsValue(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/observability"
)

const rawHeader = "id_invoice,issuedDate,client,country,service,total,invoiceStatus,dueDate\n"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessFile_DuplicatesAndCollisions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "customer_invoices_dataset.csv", rawHeader+
		"A1,2023-01-05,Acme Corp,PL,Hosting,100.00,Paid,2023-02-05\n"+
		"A1,2023-01-05,Acme Corp,PL,Hosting,100.00,Paid,2023-02-05\n"+
		"A1,2023-01-05,Acme Company,DE,Support,5,Pending,2023-02-05\n"+
		"A2,not-a-date,Globex,US,Hosting,1,Paid,2023-02-05\n"+
		",2023-01-07,Initech,US,Hosting,1,Paid,2023-02-05\n"+
		"A4,2023-03-01,Umbrella,UK,Storage,7.5,Overdue,2023-02-01\n")

	ing := NewFSIngestor(quietLogger())
	res, err := ing.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}

	r := res.Report
	if r.RowsRead != 6 || r.FullRowDuplicates != 1 || r.IdentityCollisions != 1 ||
		r.InvalidValues != 1 || r.SchemaMismatches != 1 || r.RowsWritten != 2 {
		t.Fatalf("unexpected report: %+v", r)
	}
	if r.DueBeforeIssued != 1 {
		t.Errorf("due_before_issued = %d, want 1", r.DueBeforeIssued)
	}
	if r.BatchID == "" {
		t.Error("batch id not set")
	}
	if res.Invoices[0].InvoiceNumber != "A1-2023-01-05-Ac" || res.Invoices[0].VendorName != "Acme Corp" {
		t.Errorf("first occurrence not kept: %+v", res.Invoices[0])
	}
	if strings.Join(res.Header, ",") != "invoice_number,vendor_name,address,issued_date,due_date,invoice_status,product_name,quantity,unit_price" {
		t.Errorf("header = %v", res.Header)
	}
}

func TestProcessFile_Passthrough(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vendors.csv", "vendor_id,name\n1,Acme\n1,Acme\n2,Globex\n")

	res, err := NewFSIngestor(quietLogger()).ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Variant != constants.VariantPassthrough {
		t.Fatalf("variant = %q", res.Variant)
	}
	if res.Report.FullRowDuplicates != 1 || len(res.Records) != 2 {
		t.Errorf("report = %+v, records = %d", res.Report, len(res.Records))
	}
	if strings.Join(res.Header, ",") != "vendor_id,name" {
		t.Errorf("header changed: %v", res.Header)
	}
}

func TestProcessFile_MissingColumnsCountsEveryRow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "customer_invoices_dataset.csv", "id_invoice,issuedDate,client\nA1,2023-01-05,Acme\nA2,2023-01-06,Acme\n")

	res, err := NewFSIngestor(quietLogger()).ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Report.SchemaMismatches != 2 || res.Report.RowsWritten != 0 {
		t.Errorf("report = %+v", res.Report)
	}
}

func TestProcessDirectory_Scopes(t *testing.T) {
	row := "A1,2023-01-05,Acme Corp,PL,Hosting,100.00,Paid,2023-02-05\n"
	other := "B1,2023-01-06,Globex,US,Support,50,Pending,2023-02-06\n"

	tests := []struct {
		name        string
		scope       constants.DedupScope
		wantWritten int
	}{
		{"per file keeps cross-file repeats", constants.DedupPerFile, 3},
		{"global drops cross-file repeats", constants.DedupGlobal, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := t.TempDir()
			out := t.TempDir()
			writeFile(t, raw, "a_customer_invoices_dataset.csv", rawHeader+row)
			writeFile(t, raw, "b_customer_invoices_dataset.csv", rawHeader+row+other)
			writeFile(t, raw, ".hidden/c_customer_invoices_dataset.csv", rawHeader+other)
			writeFile(t, raw, "notes.txt", "ignored")

			metrics := observability.NewMetrics()
			ing := NewFSIngestor(quietLogger(), WithDedupScope(tt.scope), WithWorkers(2), WithMetrics(metrics))
			results, stats, err := ing.ProcessDirectory(context.Background(), raw, out)
			if err != nil {
				t.Fatalf("ProcessDirectory: %v", err)
			}
			if len(results) != 2 || stats.Matched != 2 || stats.Succeeded != 2 {
				t.Fatalf("results = %d, stats = %+v", len(results), stats)
			}
			if stats.RowsWritten != tt.wantWritten {
				t.Errorf("rows written = %d, want %d", stats.RowsWritten, tt.wantWritten)
			}
			if results[0].Report.BatchID == "" || results[0].Report.BatchID != results[1].Report.BatchID {
				t.Errorf("batch ids differ: %q %q", results[0].Report.BatchID, results[1].Report.BatchID)
			}
			for _, r := range results {
				if _, err := os.Stat(r.OutputPath); err != nil {
					t.Errorf("output for %s: %v", r.SourcePath, err)
				}
			}
			families, err := metrics.Registry.Gather()
			if err != nil || len(families) == 0 {
				t.Errorf("no metrics gathered: %v", err)
			}
		})
	}
}

func TestProcessDirectory_Idempotent(t *testing.T) {
	raw := t.TempDir()
	writeFile(t, raw, "customer_invoices_dataset.csv", rawHeader+
		"A1,2023-01-05,Acme Corp,PL,Hosting,100.00,Paid,2023-02-05\n"+
		"A1,2023-01-05,Acme Corp,PL,Hosting,100.00,Paid,2023-02-05\n"+
		"B1,2023-01-06,Globex,US,Support,50,Pending,2023-02-06\n")

	ing := NewFSIngestor(quietLogger())
	var outputs []string
	for i := 0; i < 2; i++ {
		out := t.TempDir()
		if _, _, err := ing.ProcessDirectory(context.Background(), raw, out); err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(out, "customer_invoices_dataset.csv"))
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, string(b))
	}
	if outputs[0] != outputs[1] {
		t.Errorf("runs differ:\n%s\n---\n%s", outputs[0], outputs[1])
	}
	want := "invoice_number,vendor_name,address,issued_date,due_date,invoice_status,product_name,quantity,unit_price\n" +
		"A1-2023-01-05-Ac,Acme Corp,PL,2023-01-05,2023-02-05,Paid,Hosting,1,100.00\n" +
		"B1-2023-01-06-Gl,Globex,US,2023-01-06,2023-02-06,Pending,Support,1,50.00\n"
	if outputs[0] != want {
		t.Errorf("output =\n%s\nwant\n%s", outputs[0], want)
	}
}

func TestProcessDirectory_RequiresPaths(t *testing.T) {
	ing := NewFSIngestor(quietLogger())
	if _, _, err := ing.ProcessDirectory(context.Background(), "", t.TempDir()); err == nil {
		t.Error("expected error for empty root")
	}
	if _, _, err := ing.ProcessDirectory(context.Background(), t.TempDir(), " "); err == nil {
		t.Error("expected error for empty output dir")
	}
	if _, _, err := ing.ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir()); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestProcessDirectory_SameNameInSubdirectories(t *testing.T) {
	for _, scope := range []constants.DedupScope{constants.DedupPerFile, constants.DedupGlobal} {
		t.Run(string(scope), func(t *testing.T) {
			raw := t.TempDir()
			out := t.TempDir()
			writeFile(t, raw, "jan/customer_invoices_dataset.csv", rawHeader+"A1,2023-01-05,Acme Corp,PL,Hosting,100.00,Paid,2023-02-05\n")
			writeFile(t, raw, "feb/customer_invoices_dataset.csv", rawHeader+"B2,2023-02-05,Globex,US,Support,50,Pending,2023-03-05\n")

			results, stats, err := NewFSIngestor(quietLogger(), WithDedupScope(scope), WithWorkers(2)).ProcessDirectory(context.Background(), raw, out)
			if err != nil {
				t.Fatalf("ProcessDirectory: %v", err)
			}
			if stats.Succeeded != 2 || len(results) != 2 {
				t.Fatalf("stats = %+v", stats)
			}
			if results[0].Report.Source != filepath.Join("feb", "customer_invoices_dataset.csv") {
				t.Errorf("source = %q", results[0].Report.Source)
			}
			if results[0].OutputPath == results[1].OutputPath {
				t.Fatalf("both sources written to %s", results[0].OutputPath)
			}

			want := map[string]string{
				filepath.Join(out, "feb", "customer_invoices_dataset.csv"): "B2-2023-02-05-Gl",
				filepath.Join(out, "jan", "customer_invoices_dataset.csv"): "A1-2023-01-05-Ac",
			}
			for path, id := range want {
				b, err := os.ReadFile(path)
				if err != nil {
					t.Fatalf("read %s: %v", path, err)
				}
				lines := strings.Split(strings.TrimSpace(string(b)), "\n")
				if len(lines) != 2 || !strings.HasPrefix(lines[1], id+",") {
					t.Errorf("%s =\n%s", path, b)
				}
			}
		})
	}
}

func TestProcessFile_PassthroughRepeatedHeader(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	path := writeFile(t, dir, "other.csv", "id,amount,amount\nX,1,2\nX,3,2\nX,1,2\n")

	ing := NewFSIngestor(quietLogger())
	res, err := ing.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Report.FullRowDuplicates != 1 || res.Report.RowsWritten != 2 {
		t.Fatalf("report = %+v", res.Report)
	}
	if err := ing.WriteResult(&res, dir, out); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(out, "other.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "id,amount,amount\nX,1,2\nX,3,2\n"; string(b) != want {
		t.Errorf("output =\n%s\nwant\n%s", b, want)
	}
}

package report

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/export"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

type fakeRepo struct {
	invoices []entity.Invoice
	err      error
	lastList entity.FilterCriteria
}

func (f *fakeRepo) ListInvoices(ctx context.Context, c entity.FilterCriteria) ([]entity.Invoice, error) {
	f.lastList = c
	if f.err != nil {
		return []entity.Invoice{}, f.err
	}
	// criteria are ignored so the in-memory filter pass does the work
	return f.invoices, nil
}

func (f *fakeRepo) GetInvoiceDetail(ctx context.Context, n string) (*entity.InvoiceDetail, error) {
	for _, inv := range f.invoices {
		if inv.InvoiceNumber == n {
			d := inv.Detail()
			return &d, nil
		}
	}
	return nil, common.NewAppError("NOT_FOUND", n, common.ErrNotFound)
}

func (f *fakeRepo) SpendByProduct(ctx context.Context, start, end *time.Time) ([]entity.ProductSpend, error) {
	return []entity.ProductSpend{{ProductName: "Hosting", TotalSpending: decimal.NewFromInt(1)}}, f.err
}

type fakeSink struct {
	tables map[string]int
	images map[string][]byte
	err    error
}

func newFakeSink() *fakeSink {
	return &fakeSink{tables: map[string]int{}, images: map[string][]byte{}}
}

func (f *fakeSink) WriteTable(ctx context.Context, name string, rows []entity.InvoiceRow, format string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.tables[name] = len(rows)
	return filepath.Join("tables", name), nil
}

func (f *fakeSink) WriteImage(ctx context.Context, name string, png []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.images[name] = png
	return filepath.Join("reports", name), nil
}

// stubRenderer skips empty charts like the real one but does not draw.
type stubRenderer struct{}

func (stubRenderer) Render(c export.Chart) ([]byte, error) {
	if len(c.Values) == 0 {
		return nil, export.ErrNoData
	}
	return []byte("png"), nil
}

func invoices() []entity.Invoice {
	return []entity.Invoice{
		{InvoiceNumber: "A1-2023-01-05-Ac", VendorName: "Acme Corp", Status: constants.StatusPaid, ProductName: "Consulting", IssuedDate: day("2023-01-05"), DueDate: day("2023-02-05"), Quantity: 1, UnitPrice: decimal.RequireFromString("1000.50")},
		{InvoiceNumber: "B7-2023-01-10-Gl", VendorName: "Globex", Status: constants.StatusPending, ProductName: "Hosting", IssuedDate: day("2023-01-10"), DueDate: day("2023-01-20"), Quantity: 2, UnitPrice: decimal.RequireFromString("100.25")},
		{InvoiceNumber: "C3-2023-03-01-Ac", VendorName: "Acme Corp", Status: constants.StatusOverdue, ProductName: "Consulting", IssuedDate: day("2023-03-01"), DueDate: day("2023-03-15"), Quantity: 1, UnitPrice: decimal.RequireFromString("34.27")},
	}
}

func TestTable(t *testing.T) {
	repo := &fakeRepo{invoices: invoices()}
	svc := NewService(repo, newFakeSink(), stubRenderer{}, "csv", nil)

	rows, err := svc.Table(context.Background(), entity.FilterCriteria{DateField: entity.DateFieldIssued})
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("rows = %d, want 3", len(rows))
	}
	if repo.lastList.DateField != entity.DateFieldDue {
		t.Errorf("table queried %q, want due_date", repo.lastList.DateField)
	}
	if !rows[1].LineTotal.Equal(decimal.RequireFromString("200.50")) {
		t.Errorf("line total = %s", rows[1].LineTotal)
	}
}

func TestTableRepositoryUnavailable(t *testing.T) {
	repo := &fakeRepo{err: common.RepositoryUnavailable("list_invoices", errors.New("down"))}
	svc := NewService(repo, newFakeSink(), stubRenderer{}, "csv", nil)

	rows, err := svc.Table(context.Background(), entity.FilterCriteria{})
	if !errors.Is(err, common.ErrRepositoryUnavailable) {
		t.Fatalf("error = %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("rows = %#v, want empty non-nil", rows)
	}
}

func TestTableRejectsInvertedRange(t *testing.T) {
	svc := NewService(&fakeRepo{}, newFakeSink(), stubRenderer{}, "csv", nil)
	_, err := svc.Table(context.Background(), entity.FilterCriteria{Start: dayPtr("2023-02-01"), End: dayPtr("2023-01-01")})
	if !errors.Is(err, common.ErrInvalidFilterInput) {
		t.Fatalf("error = %v, want InvalidFilterInput", err)
	}
}

func TestDetail(t *testing.T) {
	svc := NewService(&fakeRepo{invoices: invoices()}, newFakeSink(), stubRenderer{}, "csv", nil)

	d, err := svc.Detail(context.Background(), " A1-2023-01-05-Ac ")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if d.ProductName != "Consulting" {
		t.Errorf("detail = %+v", d)
	}
	if _, err := svc.Detail(context.Background(), "nope"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Detail(context.Background(), ""); err == nil {
		t.Error("expected error for empty invoice number")
	}
}

func TestExportTable(t *testing.T) {
	sink := newFakeSink()
	svc := NewService(&fakeRepo{}, sink, stubRenderer{}, "xlsx", nil)
	c := entity.FilterCriteria{Status: constants.StatusFilter(constants.StatusPaid), Start: dayPtr("2023-01-01"), End: dayPtr("2023-01-31")}

	path, err := svc.ExportTable(context.Background(), c, entity.Rows(invoices()))
	if err != nil {
		t.Fatalf("ExportTable: %v", err)
	}
	if filepath.Base(path) != "2023_01_01-2023_01_31-Paid.xlsx" {
		t.Errorf("path = %s", path)
	}
	if sink.tables["2023_01_01-2023_01_31-Paid.xlsx"] != 3 {
		t.Errorf("tables = %v", sink.tables)
	}

	if _, err := svc.ExportTable(context.Background(), entity.FilterCriteria{}, nil); !errors.Is(err, common.ErrInvalidFilterInput) {
		t.Errorf("error = %v, want InvalidFilterInput", err)
	}

	sink.err = errors.New("disk full")
	if _, err := svc.ExportTable(context.Background(), c, nil); err == nil {
		t.Error("expected sink error to surface")
	}
}

func TestGenerate(t *testing.T) {
	sink := newFakeSink()
	repo := &fakeRepo{invoices: invoices()}
	svc := NewService(repo, sink, stubRenderer{}, "csv", nil)
	c := entity.FilterCriteria{Status: constants.StatusFilter(constants.StatusAll), Start: dayPtr("2023-01-01"), End: dayPtr("2023-01-31")}

	res, err := svc.Generate(context.Background(), c)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if repo.lastList.DateField != entity.DateFieldIssued {
		t.Errorf("report queried %q, want issued_date", repo.lastList.DateField)
	}
	// March invoice is outside the issued range and filtered in memory
	if res.Invoices != 2 {
		t.Errorf("invoices = %d, want 2", res.Invoices)
	}
	if len(res.Views.ByDay) != 31 {
		t.Errorf("byDay = %d buckets, want 31", len(res.Views.ByDay))
	}
	total := decimal.Zero
	for _, p := range res.Views.ByProduct {
		total = total.Add(p.Total)
	}
	if !total.Equal(decimal.RequireFromString("1201.00")) {
		t.Errorf("byProduct total = %s", total)
	}
	for _, name := range []string{
		"2023_01_01-2023_01_31-All_spending_by_category.png",
		"2023_01_01-2023_01_31-All_total_spending_by_status.png",
		"2023_01_01-2023_01_31-All_daily_spending.png",
	} {
		if _, ok := sink.images[name]; !ok {
			t.Errorf("missing %s in %v", name, sink.images)
		}
	}
	if len(res.Written) != 3 || len(res.Skipped) != 0 {
		t.Errorf("written = %v, skipped = %v", res.Written, res.Skipped)
	}
}

func TestGenerateSkipsEmptyCharts(t *testing.T) {
	sink := newFakeSink()
	svc := NewService(&fakeRepo{}, sink, stubRenderer{}, "csv", nil)
	c := entity.FilterCriteria{Status: constants.StatusFilter(constants.StatusPaid), Start: dayPtr("2023-01-01"), End: dayPtr("2023-01-02")}

	res, err := svc.Generate(context.Background(), c)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != export.ChartByProduct {
		t.Errorf("skipped = %v", res.Skipped)
	}
	if len(res.Written) != 2 {
		t.Errorf("written = %v", res.Written)
	}
}

func TestGenerateRequiresRange(t *testing.T) {
	svc := NewService(&fakeRepo{}, newFakeSink(), stubRenderer{}, "csv", nil)
	_, err := svc.Generate(context.Background(), entity.FilterCriteria{Start: dayPtr("2023-01-01")})
	if !errors.Is(err, common.ErrInvalidFilterInput) {
		t.Fatalf("error = %v, want InvalidFilterInput", err)
	}
}

func TestGenerateRepositoryUnavailable(t *testing.T) {
	sink := newFakeSink()
	repo := &fakeRepo{err: common.RepositoryUnavailable("list_invoices", errors.New("down"))}
	svc := NewService(repo, sink, stubRenderer{}, "csv", nil)
	c := entity.FilterCriteria{Start: dayPtr("2023-01-01"), End: dayPtr("2023-01-31")}

	if _, err := svc.Generate(context.Background(), c); !errors.Is(err, common.ErrRepositoryUnavailable) {
		t.Fatalf("error = %v", err)
	}
	if len(sink.images) != 0 {
		t.Errorf("images written on failure: %v", sink.images)
	}
}

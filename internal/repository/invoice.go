package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"
	"unicode"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/shopspring/decimal"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/filter"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

// InvoiceRepository is the read side of the invoice store.
type InvoiceRepository interface {
	// ListInvoices returns invoice lines matching c, ordered by issued date
	// and invoice number.
	ListInvoices(ctx context.Context, c entity.FilterCriteria) ([]entity.Invoice, error)
	// GetInvoiceDetail returns one invoice or an error wrapping common.ErrNotFound.
	GetInvoiceDetail(ctx context.Context, invoiceNumber string) (*entity.InvoiceDetail, error)
	// SpendByProduct sums line totals per product over issued dates in [start, end].
	SpendByProduct(ctx context.Context, start, end *time.Time) ([]entity.ProductSpend, error)
}

type invoiceRepository struct {
	db      *sql.DB
	dialect string
	logger  *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{
		db:      db.SQL(),
		dialect: db.Dialect(),
		logger:  logger,
	}
}

type invoiceTables struct {
	b   *entsql.DialectBuilder
	inv *entsql.SelectTable
	vnd *entsql.SelectTable
	itm *entsql.SelectTable
	prd *entsql.SelectTable
}

func tablesFor(d string) invoiceTables {
	b := entsql.Dialect(d)
	return invoiceTables{
		b:   b,
		inv: b.Table("invoices").As("i"),
		vnd: b.Table("vendors").As("v"),
		itm: b.Table("invoice_items").As("ii"),
		prd: b.Table("products").As("p"),
	}
}

// joined selects columns from invoices joined with vendors, items and products.
func (t invoiceTables) joined(columns ...string) *entsql.Selector {
	return t.b.Select(columns...).
		From(t.inv).
		Join(t.vnd).On(t.inv.C("vendor_id"), t.vnd.C("vendor_id")).
		Join(t.itm).On(t.inv.C("invoice_id"), t.itm.C("invoice_id")).
		Join(t.prd).On(t.itm.C("product_id"), t.prd.C("product_id"))
}

// dateColumn maps a date field onto its qualified column.
func (t invoiceTables) dateColumn(f entity.DateField) string {
	if f == entity.DateFieldIssued {
		return t.inv.C("issued_date")
	}
	return t.inv.C("due_date")
}

func whereRange(sel *entsql.Selector, column string, start, end *time.Time) {
	if start != nil {
		sel.Where(entsql.GTE(column, utils.FormatYMD(*start)))
	}
	if end != nil {
		sel.Where(entsql.LTE(column, utils.FormatYMD(*end)))
	}
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func (r *invoiceRepository) ListInvoices(ctx context.Context, c entity.FilterCriteria) ([]entity.Invoice, error) {
	t := tablesFor(r.dialect)
	sel := t.joined(
		t.inv.C("invoice_number"),
		t.vnd.C("vendor_name"),
		t.vnd.C("address"),
		t.inv.C("issued_date"),
		t.inv.C("due_date"),
		t.inv.C("invoice_status"),
		t.prd.C("product_name"),
		t.itm.C("quantity"),
		t.itm.C("unit_price"),
	)
	if !c.Status.IsAll() {
		sel.Where(entsql.EQ(t.inv.C("invoice_status"), string(c.Status)))
	}
	// SQLite's LOWER only folds ASCII, so other terms are matched after the
	// scan with the same folding the in-memory filter uses.
	foldAfterScan := r.dialect == dialect.SQLite && !isASCII(c.SearchTerm)
	if c.SearchTerm != "" && !foldAfterScan {
		sel.Where(entsql.Or(
			entsql.ContainsFold(t.inv.C("invoice_number"), c.SearchTerm),
			entsql.ContainsFold(t.vnd.C("vendor_name"), c.SearchTerm),
		))
	}
	whereRange(sel, t.dateColumn(c.DateField), c.Start, c.End)
	sel.OrderBy(t.inv.C("issued_date"), t.inv.C("invoice_number"), t.prd.C("product_name"))

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list invoices", "status", c.Status, "search", c.SearchTerm, "error", err)
		return nil, common.WrapError(errors.Join(common.ErrDatabase, err), "list invoices")
	}
	defer rows.Close()

	out := make([]entity.Invoice, 0)
	for rows.Next() {
		var (
			inv         entity.Invoice
			issued, due any
			status      string
			quantity    int64
			unitPrice   decimal.Decimal
		)
		if err := rows.Scan(&inv.InvoiceNumber, &inv.VendorName, &inv.Address, &issued, &due, &status, &inv.ProductName, &quantity, &unitPrice); err != nil {
			r.logger.Error("failed to scan invoice row", "error", err)
			return nil, common.WrapError(errors.Join(common.ErrDatabase, err), "scan invoice")
		}
		if inv.IssuedDate, err = utils.DateValue(issued); err != nil {
			return nil, common.WrapError(errors.Join(common.ErrDatabase, err), "issued_date of "+inv.InvoiceNumber)
		}
		if inv.DueDate, err = utils.DateValue(due); err != nil {
			return nil, common.WrapError(errors.Join(common.ErrDatabase, err), "due_date of "+inv.InvoiceNumber)
		}
		inv.Status = constants.InvoiceStatus(status)
		inv.Quantity = int(quantity)
		inv.UnitPrice = unitPrice.Round(2)
		if foldAfterScan && !filter.Matches(inv, entity.FilterCriteria{SearchTerm: c.SearchTerm}) {
			continue
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("failed to iterate invoices", "error", err)
		return nil, common.WrapError(errors.Join(common.ErrDatabase, err), "list invoices")
	}
	return out, nil
}

func (r *invoiceRepository) GetInvoiceDetail(ctx context.Context, invoiceNumber string) (*entity.InvoiceDetail, error) {
	t := tablesFor(r.dialect)
	sel := t.joined(
		t.inv.C("invoice_number"),
		t.vnd.C("vendor_name"),
		t.vnd.C("address"),
		t.inv.C("invoice_status"),
		t.inv.C("issued_date"),
		t.inv.C("due_date"),
		t.prd.C("product_name"),
		t.itm.C("line_total"),
	).
		Where(entsql.EQ(t.inv.C("invoice_number"), invoiceNumber)).
		OrderBy(t.prd.C("product_name")).
		Limit(1)

	query, args := sel.Query()
	var (
		d           entity.InvoiceDetail
		status      string
		issued, due any
		lineTotal   decimal.Decimal
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&d.InvoiceNumber, &d.VendorName, &d.Address, &status, &issued, &due, &d.ProductName, &lineTotal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "invoice "+invoiceNumber, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get invoice detail", "invoice_number", invoiceNumber, "error", err)
		return nil, common.WrapError(errors.Join(common.ErrDatabase, err), "get invoice detail")
	}
	if d.IssuedDate, err = utils.DateValue(issued); err != nil {
		return nil, common.WrapError(errors.Join(common.ErrDatabase, err), "issued_date")
	}
	if d.DueDate, err = utils.DateValue(due); err != nil {
		return nil, common.WrapError(errors.Join(common.ErrDatabase, err), "due_date")
	}
	d.Status = constants.InvoiceStatus(status)
	d.LineTotal = lineTotal.Round(2)
	return &d, nil
}

func (r *invoiceRepository) SpendByProduct(ctx context.Context, start, end *time.Time) ([]entity.ProductSpend, error) {
	t := tablesFor(r.dialect)
	sel := t.b.Select(
		t.prd.C("product_name"),
		entsql.As(entsql.Sum(t.itm.C("line_total")), "total_spending"),
	).
		From(t.inv).
		Join(t.itm).On(t.inv.C("invoice_id"), t.itm.C("invoice_id")).
		Join(t.prd).On(t.itm.C("product_id"), t.prd.C("product_id"))
	whereRange(sel, t.inv.C("issued_date"), start, end)
	sel.GroupBy(t.prd.C("product_name")).OrderBy(t.prd.C("product_name"))

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to sum spend by product", "error", err)
		return nil, common.WrapError(errors.Join(common.ErrDatabase, err), "spend by product")
	}
	defer rows.Close()

	out := make([]entity.ProductSpend, 0)
	for rows.Next() {
		var (
			ps    entity.ProductSpend
			total decimal.Decimal
		)
		if err := rows.Scan(&ps.ProductName, &total); err != nil {
			return nil, common.WrapError(errors.Join(common.ErrDatabase, err), "scan spend by product")
		}
		ps.TotalSpending = total.Round(2)
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(errors.Join(common.ErrDatabase, err), "spend by product")
	}
	return out, nil
}

// TableCounts returns the row count of every invoice table.
func TableCounts(ctx context.Context, db *DB) (map[string]int64, error) {
	b := entsql.Dialect(db.Dialect())
	counts := make(map[string]int64, 4)
	for _, table := range []string{"vendors", "products", "invoices", "invoice_items"} {
		query, args := b.Select(entsql.Count("*")).From(b.Table(table)).Query()
		var n int64
		if err := db.SQL().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return nil, common.WrapError(err, "count "+table)
		}
		counts[table] = n
	}
	return counts, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

// InvoiceStore is the write side of the invoice store.
type InvoiceStore interface {
	// SaveInvoices upserts vendors, products, invoices and their items in a
	// single transaction and returns the number of lines written.
	SaveInvoices(ctx context.Context, invoices []entity.Invoice) (int, error)
}

type invoiceStore struct {
	db      *sql.DB
	dialect string
	logger  *slog.Logger
}

func NewInvoiceStore(db *DB, logger *slog.Logger) InvoiceStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceStore{db: db.SQL(), dialect: db.Dialect(), logger: logger}
}

func (s *invoiceStore) SaveInvoices(ctx context.Context, invoices []entity.Invoice) (int, error) {
	if len(invoices) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, common.WrapError(errors.Join(common.ErrDatabase, err), "begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	b := entsql.Dialect(s.dialect)
	vendors := map[string]int64{}
	products := map[string]int64{}
	for _, inv := range invoices {
		vendorID, ok := vendors[inv.VendorName]
		if !ok {
			vendorID, err = upsertID(ctx, tx, b,
				b.Insert("vendors").Columns("vendor_name", "address").Values(inv.VendorName, inv.Address).
					OnConflict(entsql.ConflictColumns("vendor_name"), entsql.ResolveWithNewValues()),
				"vendors", "vendor_id", "vendor_name", inv.VendorName)
			if err != nil {
				return 0, s.fail("vendor", inv, err)
			}
			vendors[inv.VendorName] = vendorID
		}

		productID, ok := products[inv.ProductName]
		if !ok {
			productID, err = upsertID(ctx, tx, b,
				b.Insert("products").Columns("product_name").Values(inv.ProductName).
					OnConflict(entsql.ConflictColumns("product_name"), entsql.ResolveWithIgnore()),
				"products", "product_id", "product_name", inv.ProductName)
			if err != nil {
				return 0, s.fail("product", inv, err)
			}
			products[inv.ProductName] = productID
		}

		invoiceID, err := upsertID(ctx, tx, b,
			b.Insert("invoices").
				Columns("invoice_number", "vendor_id", "issued_date", "due_date", "invoice_status").
				Values(inv.InvoiceNumber, vendorID, utils.FormatYMD(inv.IssuedDate), utils.FormatYMD(inv.DueDate), string(inv.Status)).
				OnConflict(entsql.ConflictColumns("invoice_number"), entsql.ResolveWithNewValues()),
			"invoices", "invoice_id", "invoice_number", inv.InvoiceNumber)
		if err != nil {
			return 0, s.fail("invoice", inv, err)
		}

		// One line per invoice: a reload replaces whatever line it had.
		query, args := b.Delete("invoice_items").Where(entsql.EQ("invoice_id", invoiceID)).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, s.fail("invoice item", inv, err)
		}
		query, args = b.Insert("invoice_items").
			Columns("invoice_id", "product_id", "quantity", "unit_price", "line_total").
			Values(invoiceID, productID, inv.Quantity, inv.UnitPrice.StringFixed(2), inv.LineTotal().StringFixed(2)).
			OnConflict(entsql.ConflictColumns("invoice_id", "product_id"), entsql.ResolveWithNewValues()).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, s.fail("invoice item", inv, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, common.WrapError(errors.Join(common.ErrDatabase, err), "commit transaction")
	}
	s.logger.Info("invoices saved", "lines", len(invoices), "vendors", len(vendors), "products", len(products))
	return len(invoices), nil
}

func (s *invoiceStore) fail(what string, inv entity.Invoice, err error) error {
	s.logger.Error("failed to save "+what, "invoice_number", inv.InvoiceNumber, "error", err)
	return common.WrapError(errors.Join(common.ErrDatabase, err), "save "+what+" "+inv.InvoiceNumber)
}

// upsertID runs ins and reads back the surrogate key by its natural key.
func upsertID(ctx context.Context, tx *sql.Tx, b *entsql.DialectBuilder, ins *entsql.InsertBuilder, table, idColumn, keyColumn string, key any) (int64, error) {
	query, args := ins.Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, err
	}
	query, args = b.Select(idColumn).From(b.Table(table)).Where(entsql.EQ(keyColumn, key)).Query()
	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

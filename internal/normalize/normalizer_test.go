package normalize

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
)

var rawHeader = []string{"id_invoice", "issuedDate", "client", "country", "service", "total", "invoiceStatus", "dueDate"}

func rawRecord(cells ...string) entity.RawRecord {
	return entity.NewRawRecord("customer_invoices_dataset.csv", 2, rawHeader, cells)
}

func TestNormalize_CustomerInvoices(t *testing.T) {
	n := New()
	rec := rawRecord("A1", "2023-01-05", "Acme Corp", "PL", "Hosting", "100.00", "Paid", "2023-02-05")

	inv, err := n.Normalize(constants.VariantCustomerInvoices, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inv.InvoiceNumber != "A1-2023-01-05-Ac" {
		t.Errorf("invoice number = %q, want %q", inv.InvoiceNumber, "A1-2023-01-05-Ac")
	}
	if inv.VendorName != "Acme Corp" || inv.Address != "PL" || inv.ProductName != "Hosting" {
		t.Errorf("unexpected remap: %+v", inv)
	}
	if inv.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", inv.Quantity)
	}
	if !inv.UnitPrice.Equal(decimal.RequireFromString("100")) {
		t.Errorf("unit price = %s, want 100", inv.UnitPrice)
	}
	if inv.Status != constants.StatusPaid {
		t.Errorf("status = %q, want Paid", inv.Status)
	}
	if got := inv.IssuedDate.Format("2006-01-02"); got != "2023-01-05" {
		t.Errorf("issued date = %s", got)
	}
	if got := inv.DueDate.Format("2006-01-02"); got != "2023-02-05" {
		t.Errorf("due date = %s", got)
	}
}

func TestNormalize_Errors(t *testing.T) {
	n := New()

	tests := []struct {
		name    string
		rec     entity.RawRecord
		wantErr error
	}{
		{
			name:    "missing column",
			rec:     entity.NewRawRecord("x.csv", 2, []string{"id_invoice", "issuedDate", "client"}, []string{"A1", "2023-01-05", "Acme"}),
			wantErr: common.ErrSchemaMismatch,
		},
		{
			name:    "empty required value",
			rec:     rawRecord("", "2023-01-05", "Acme", "PL", "Hosting", "1", "Paid", "2023-02-05"),
			wantErr: common.ErrSchemaMismatch,
		},
		{
			name:    "bad date",
			rec:     rawRecord("A1", "yesterday", "Acme", "PL", "Hosting", "1", "Paid", "2023-02-05"),
			wantErr: common.ErrInvalidValue,
		},
		{
			name:    "bad amount",
			rec:     rawRecord("A1", "2023-01-05", "Acme", "PL", "Hosting", "abc", "Paid", "2023-02-05"),
			wantErr: common.ErrInvalidValue,
		},
		{
			name:    "negative amount",
			rec:     rawRecord("A1", "2023-01-05", "Acme", "PL", "Hosting", "-5", "Paid", "2023-02-05"),
			wantErr: common.ErrInvalidValue,
		},
		{
			name:    "unknown status",
			rec:     rawRecord("A1", "2023-01-05", "Acme", "PL", "Hosting", "1", "Refunded", "2023-02-05"),
			wantErr: common.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(constants.VariantCustomerInvoices, tt.rec)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalize_UnknownVariant(t *testing.T) {
	_, err := New().Normalize(constants.VariantPassthrough, rawRecord("A1", "2023-01-05", "Acme", "PL", "Hosting", "1", "Paid", "2023-02-05"))
	if !errors.Is(err, common.ErrSchemaMismatch) {
		t.Fatalf("error = %v, want schema mismatch", err)
	}
}

func TestNormalize_EmptyOptionalColumns(t *testing.T) {
	inv, err := New().Normalize(constants.VariantCustomerInvoices, rawRecord("A1", "2023-01-05", "Acme", "", "", "1", "paid", "2023-02-05"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Address != "" || inv.ProductName != "" {
		t.Errorf("expected empty address and product, got %+v", inv)
	}
}

func TestNormalize_QuantityColumn(t *testing.T) {
	m := CustomerInvoices
	m.QuantityColumn = "qty"
	n := New(m)

	header := append(append([]string{}, rawHeader...), "qty")
	tests := []struct {
		name    string
		header  []string
		cells   []string
		want    int
		wantErr bool
	}{
		{"explicit", header, []string{"A1", "2023-01-05", "Acme", "PL", "Hosting", "2.50", "Paid", "2023-02-05", "4"}, 4, false},
		{"blank falls back", header, []string{"A1", "2023-01-05", "Acme", "PL", "Hosting", "2.50", "Paid", "2023-02-05", ""}, 1, false},
		{"column absent", rawHeader, []string{"A1", "2023-01-05", "Acme", "PL", "Hosting", "2.50", "Paid", "2023-02-05"}, 1, false},
		{"zero", header, []string{"A1", "2023-01-05", "Acme", "PL", "Hosting", "2.50", "Paid", "2023-02-05", "0"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := n.Normalize(constants.VariantCustomerInvoices, entity.NewRawRecord("q.csv", 2, tt.header, tt.cells))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if inv.Quantity != tt.want {
				t.Errorf("quantity = %d, want %d", inv.Quantity, tt.want)
			}
			if !inv.LineTotal().Equal(inv.UnitPrice.Mul(decimal.NewFromInt(int64(tt.want)))) {
				t.Errorf("line total = %s", inv.LineTotal())
			}
		})
	}
}

func TestIdentityKey_ShortAndMultibyteNames(t *testing.T) {
	tests := []struct {
		client string
		want   string
	}{
		{"A", "X-2023-01-01-A"},
		{"Łódź Ltd", "X-2023-01-01-Łó"},
		{"", "X-2023-01-01-"},
	}
	for _, tt := range tests {
		rec := rawRecord("X", "2023-01-01", tt.client, "", "", "1", "Paid", "2023-01-02")
		if got := IdentityKey(CustomerInvoices, rec); got != tt.want {
			t.Errorf("IdentityKey(%q) = %q, want %q", tt.client, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"100", "100", false},
		{" 1,234.50 ", "1234.5", false},
		{"$19.99", "19.99", false},
		{"€0", "0", false},
		{"", "", true},
		{"ten", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMissingColumns(t *testing.T) {
	missing := CustomerInvoices.MissingColumns([]string{"id_invoice", "client"})
	if len(missing) != 6 {
		t.Fatalf("missing = %v, want 6 columns", missing)
	}
	if got := CustomerInvoices.MissingColumns(rawHeader); len(got) != 0 {
		t.Errorf("expected no missing columns, got %v", got)
	}
}

func TestNormalize_RoundsUnitPriceToCents(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"12.345", "12.35"},
		{"12.344", "12.34"},
		{"0.005", "0.01"},
		{"7", "7.00"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			inv, err := New().Normalize(constants.VariantCustomerInvoices,
				rawRecord("A1", "2023-01-05", "Acme Corp", "PL", "Hosting", tt.raw, "Paid", "2023-02-05"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := inv.UnitPrice.StringFixed(2); got != tt.want || !inv.UnitPrice.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("unit price = %s, want %s", inv.UnitPrice, tt.want)
			}
		})
	}
}

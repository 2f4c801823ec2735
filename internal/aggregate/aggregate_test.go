package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func inv(number, product string, status constants.InvoiceStatus, issued, price string) entity.Invoice {
	return entity.Invoice{
		InvoiceNumber: number,
		ProductName:   product,
		Status:        status,
		IssuedDate:    day(issued),
		DueDate:       day(issued),
		Quantity:      1,
		UnitPrice:     decimal.RequireFromString(price),
	}
}

func TestAggregate_SingleInvoiceSingleDay(t *testing.T) {
	invoices := []entity.Invoice{inv("A1", "Hosting", constants.StatusPaid, "2023-01-01", "100.00")}
	span := &entity.DateRange{Start: day("2023-01-01"), End: day("2023-01-01")}

	v := Aggregate(invoices, span)

	if len(v.ByStatus) != 3 {
		t.Fatalf("byStatus has %d entries, want 3", len(v.ByStatus))
	}
	want := map[constants.InvoiceStatus]string{
		constants.StatusPending: "0",
		constants.StatusOverdue: "0",
		constants.StatusPaid:    "100",
	}
	for _, st := range v.ByStatus {
		if !st.Total.Equal(decimal.RequireFromString(want[st.Status])) {
			t.Errorf("%s total = %s, want %s", st.Status, st.Total, want[st.Status])
		}
	}
	if len(v.ByDay) != 1 || !v.ByDay[0].Total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("byDay = %+v, want one bucket of 100", v.ByDay)
	}
	if len(v.ByProduct) != 1 || v.ByProduct[0].ProductName != "Hosting" {
		t.Errorf("byProduct = %+v", v.ByProduct)
	}
}

func TestByStatus_FixedOrder(t *testing.T) {
	got := ByStatus(nil)
	order := []constants.InvoiceStatus{constants.StatusPending, constants.StatusOverdue, constants.StatusPaid}
	for i, st := range got {
		if st.Status != order[i] || !st.Total.IsZero() {
			t.Errorf("byStatus[%d] = %+v", i, st)
		}
	}
}

func TestByDay_Dense(t *testing.T) {
	invoices := []entity.Invoice{
		inv("A", "X", constants.StatusPaid, "2023-01-03", "5"),
		inv("B", "X", constants.StatusPaid, "2023-01-03", "7"),
		inv("C", "Y", constants.StatusPending, "2023-01-06", "1"),
	}

	tests := []struct {
		name      string
		span      *entity.DateRange
		wantLen   int
		wantFirst string
	}{
		{"data extent", nil, 4, "2023-01-03"},
		{"explicit range", &entity.DateRange{Start: day("2023-01-01"), End: day("2023-01-31")}, 31, "2023-01-01"},
		{"range narrower than data widens", &entity.DateRange{Start: day("2023-01-04"), End: day("2023-01-05")}, 4, "2023-01-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ByDay(invoices, tt.span)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if f := got[0].Date.Format("2006-01-02"); f != tt.wantFirst {
				t.Errorf("first day = %s, want %s", f, tt.wantFirst)
			}
			for i := 1; i < len(got); i++ {
				if !got[i].Date.Equal(got[i-1].Date.AddDate(0, 0, 1)) {
					t.Fatalf("gap between %s and %s", got[i-1].Date, got[i].Date)
				}
			}
			sum := decimal.Zero
			for _, d := range got {
				sum = sum.Add(d.Total)
			}
			if !sum.Equal(decimal.NewFromInt(13)) {
				t.Errorf("sum = %s, want 13", sum)
			}
		})
	}
}

func TestByDay_Empty(t *testing.T) {
	if got := ByDay(nil, nil); len(got) != 0 {
		t.Errorf("expected empty series, got %v", got)
	}
	span := &entity.DateRange{Start: day("2024-02-27"), End: day("2024-03-01")}
	if got := ByDay(nil, span); len(got) != 4 {
		t.Errorf("leap year span: len = %d, want 4", len(got))
	}
}

func TestAggregate_Conservation(t *testing.T) {
	invoices := []entity.Invoice{
		inv("A", "Hosting", constants.StatusPaid, "2023-01-01", "0.10"),
		inv("B", "Hosting", constants.StatusOverdue, "2023-01-02", "0.20"),
		inv("C", "Support", constants.StatusPending, "2023-01-09", "1234.56"),
		inv("D", "", constants.StatusPaid, "2023-01-05", "0.01"),
	}
	invoices[1].Quantity = 3

	total := Total(invoices)
	v := Aggregate(invoices, nil)

	sums := map[string]decimal.Decimal{}
	for _, p := range v.ByProduct {
		sums["product"] = sums["product"].Add(p.Total)
	}
	for _, s := range v.ByStatus {
		sums["status"] = sums["status"].Add(s.Total)
	}
	for _, d := range v.ByDay {
		sums["day"] = sums["day"].Add(d.Total)
	}
	for view, sum := range sums {
		if !sum.Equal(total) {
			t.Errorf("%s view sums to %s, want %s", view, sum, total)
		}
	}
	if !total.Equal(decimal.RequireFromString("1235.27")) {
		t.Errorf("total = %s, want 1235.27", total)
	}
}

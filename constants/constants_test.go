package constants

import "testing"

func TestCanonicalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want InvoiceStatus
		ok   bool
	}{
		{"Paid", StatusPaid, true},
		{"  overdue ", StatusOverdue, true},
		{"PENDING", StatusPending, true},
		{"unpaid", StatusPending, true},
		{"settled", StatusPaid, true},
		{"Refunded", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CanonicalizeStatus(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("CanonicalizeStatus(%q) = %q, %v", tt.in, got, ok)
			}
		})
	}
}

func TestStatusFilter(t *testing.T) {
	all, ok := ParseStatusFilter("")
	if !ok || !all.IsAll() || all.String() != StatusAll {
		t.Fatalf("empty filter = %q", all)
	}
	if f, ok := ParseStatusFilter("all"); !ok || !f.IsAll() {
		t.Errorf("all = %q", f)
	}
	paid, ok := ParseStatusFilter("paid")
	if !ok || paid.IsAll() {
		t.Fatalf("paid = %q", paid)
	}
	if !paid.Matches(StatusPaid) || paid.Matches(StatusOverdue) {
		t.Error("paid filter matched the wrong statuses")
	}
	for _, s := range Statuses() {
		if !all.Matches(s) {
			t.Errorf("All should match %s", s)
		}
	}
	if _, ok := ParseStatusFilter("Refunded"); ok {
		t.Error("unknown status accepted")
	}
}

func TestStatusesOrderIsStable(t *testing.T) {
	got := StatusStrings()
	want := []string{"Pending", "Overdue", "Paid"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("StatusStrings() = %v", got)
		}
	}
	s := Statuses()
	s[0] = "mutated"
	if Statuses()[0] != StatusPending {
		t.Error("Statuses exposes internal slice")
	}
}

func TestParseVariantAndScope(t *testing.T) {
	if v, ok := ParseVariant(" Customer_Invoices_Dataset "); !ok || v != VariantCustomerInvoices {
		t.Errorf("variant = %q, %v", v, ok)
	}
	if v, ok := ParseVariant("ledger"); ok || v != VariantPassthrough {
		t.Errorf("unknown variant = %q, %v", v, ok)
	}

	scopes := map[string]DedupScope{"": DedupPerFile, "per-file": DedupPerFile, "GLOBAL": DedupGlobal}
	for in, want := range scopes {
		if got, ok := ParseDedupScope(in); !ok || got != want {
			t.Errorf("ParseDedupScope(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseDedupScope("batch"); ok {
		t.Error("unknown scope accepted")
	}
	if NormalizeExt(" .CSV") != "csv" {
		t.Error("NormalizeExt")
	}
}

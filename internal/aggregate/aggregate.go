// Package aggregate computes the spend-by-product, spend-by-status and daily
// spend views over a set of invoices.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

// Aggregate builds all three views. When span is given the daily series
// covers at least span; it always covers every issued date in invoices.
func Aggregate(invoices []entity.Invoice, span *entity.DateRange) entity.AggregateViews {
	return entity.AggregateViews{
		ByProduct: ByProduct(invoices),
		ByStatus:  ByStatus(invoices),
		ByDay:     ByDay(invoices, span),
	}
}

// ByProduct sums line totals per product name, sorted by name.
func ByProduct(invoices []entity.Invoice) []entity.ProductTotal {
	totals := map[string]decimal.Decimal{}
	for _, inv := range invoices {
		totals[inv.ProductName] = totals[inv.ProductName].Add(inv.LineTotal())
	}
	out := make([]entity.ProductTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, entity.ProductTotal{ProductName: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out
}

// ByStatus sums line totals per status. Every status is present, zero-filled.
func ByStatus(invoices []entity.Invoice) []entity.StatusTotal {
	totals := map[constants.InvoiceStatus]decimal.Decimal{}
	for _, inv := range invoices {
		totals[inv.Status] = totals[inv.Status].Add(inv.LineTotal())
	}
	out := make([]entity.StatusTotal, 0, len(constants.Statuses()))
	for _, s := range constants.Statuses() {
		out = append(out, entity.StatusTotal{Status: s, Total: totals[s]})
	}
	return out
}

// ByDay sums line totals per issued date over a dense run of days.
func ByDay(invoices []entity.Invoice, span *entity.DateRange) []entity.DayTotal {
	first, last, ok := extent(invoices, span)
	if !ok {
		return []entity.DayTotal{}
	}

	totals := map[time.Time]decimal.Decimal{}
	for _, inv := range invoices {
		d := utils.DateOnly(inv.IssuedDate)
		totals[d] = totals[d].Add(inv.LineTotal())
	}

	out := make([]entity.DayTotal, 0, utils.DaysBetween(first, last))
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, entity.DayTotal{Date: d, Total: totals[d]})
	}
	return out
}

func extent(invoices []entity.Invoice, span *entity.DateRange) (time.Time, time.Time, bool) {
	var first, last time.Time
	ok := false
	widen := func(d time.Time) {
		d = utils.DateOnly(d)
		if !ok {
			first, last, ok = d, d, true
			return
		}
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	if span != nil {
		widen(span.Start)
		widen(span.End)
	}
	for _, inv := range invoices {
		widen(inv.IssuedDate)
	}
	return first, last, ok
}

// Total sums the line totals of invoices.
func Total(invoices []entity.Invoice) decimal.Decimal {
	sum := decimal.Zero
	for _, inv := range invoices {
		sum = sum.Add(inv.LineTotal())
	}
	return sum
}

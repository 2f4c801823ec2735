package entity

import (
	"time"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
)

// DateField selects which invoice date a range filter applies to.
type DateField string

const (
	// DateFieldDue is used by the invoice table.
	DateFieldDue DateField = "due_date"
	// DateFieldIssued is used by reports.
	DateFieldIssued DateField = "issued_date"
)

// FilterCriteria selects invoices by status, search term and date range.
// Nil bounds are open.
type FilterCriteria struct {
	Status     constants.StatusFilter
	SearchTerm string
	Start      *time.Time
	End        *time.Time
	DateField  DateField
}

// DateOf returns the date of inv the criteria compare against.
func (c FilterCriteria) DateOf(inv Invoice) time.Time {
	if c.DateField == DateFieldIssued {
		return inv.IssuedDate
	}
	return inv.DueDate
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Range returns the criteria bounds when both are set.
func (c FilterCriteria) Range() *DateRange {
	if c.Start == nil || c.End == nil {
		return nil
	}
	return &DateRange{Start: *c.Start, End: *c.End}
}

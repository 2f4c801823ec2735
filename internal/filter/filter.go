// Package filter selects invoices by status, search term and date range.
package filter

import (
	"strings"
	"time"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

// BoundPolicy decides what an empty date bound means.
type BoundPolicy string

const (
	// BoundsOpen skips the comparison for an empty bound.
	BoundsOpen BoundPolicy = "open"
	// BoundsRequired rejects criteria with an empty bound.
	BoundsRequired BoundPolicy = "required"
)

func ParseBoundPolicy(s string) (BoundPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(BoundsOpen):
		return BoundsOpen, true
	case string(BoundsRequired):
		return BoundsRequired, true
	}
	return BoundsOpen, false
}

// Input is filter criteria as typed by a user.
type Input struct {
	Status string
	Search string
	Start  string
	End    string
}

// ParseCriteria validates raw input. Unknown statuses, malformed dates and
// inverted ranges fail with common.ErrInvalidFilterInput.
func ParseCriteria(in Input, field entity.DateField, policy BoundPolicy) (entity.FilterCriteria, error) {
	v := common.NewValidator()

	status, ok := constants.ParseStatusFilter(in.Status)
	if !ok {
		v.Add("status", in.Status, "must be one of All, "+strings.Join(constants.StatusStrings(), ", "))
	}

	rules := []common.ValidationRule{common.DateYMD}
	if policy == BoundsRequired {
		rules = append([]common.ValidationRule{common.Required}, rules...)
	}
	v.Field("start_date", in.Start, rules...)
	v.Field("end_date", in.End, rules...)
	if v.HasErrors() {
		return entity.FilterCriteria{}, v.FilterError()
	}

	c := entity.FilterCriteria{
		Status:     status,
		SearchTerm: strings.TrimSpace(in.Search),
		DateField:  field,
	}
	if s := strings.TrimSpace(in.Start); s != "" {
		t, _ := utils.ParseYMD(s)
		c.Start = &t
	}
	if e := strings.TrimSpace(in.End); e != "" {
		t, _ := utils.ParseYMD(e)
		c.End = &t
	}
	if err := Validate(c); err != nil {
		return entity.FilterCriteria{}, err
	}
	return c, nil
}

// Validate checks criteria built in code rather than parsed from input.
func Validate(c entity.FilterCriteria) error {
	if !c.Status.IsAll() {
		if _, ok := constants.CanonicalizeStatus(string(c.Status)); !ok {
			return common.InvalidFilterInput("unknown status %q", c.Status)
		}
	}
	if c.Start != nil && c.End != nil && c.Start.After(*c.End) {
		return common.InvalidFilterInput("start date %s is after end date %s", utils.FormatYMD(*c.Start), utils.FormatYMD(*c.End))
	}
	return nil
}

// Matches reports whether inv satisfies every predicate of c.
func Matches(inv entity.Invoice, c entity.FilterCriteria) bool {
	if !c.Status.Matches(inv.Status) {
		return false
	}
	if c.SearchTerm != "" {
		term := strings.ToLower(c.SearchTerm)
		if !strings.Contains(strings.ToLower(inv.InvoiceNumber), term) &&
			!strings.Contains(strings.ToLower(inv.VendorName), term) {
			return false
		}
	}
	return inRange(c.DateOf(inv), c.Start, c.End)
}

func inRange(d time.Time, start, end *time.Time) bool {
	d = utils.DateOnly(d)
	if start != nil && d.Before(utils.DateOnly(*start)) {
		return false
	}
	if end != nil && d.After(utils.DateOnly(*end)) {
		return false
	}
	return true
}

// Apply returns the invoices matching c in input order.
func Apply(invoices []entity.Invoice, c entity.FilterCriteria) []entity.Invoice {
	out := make([]entity.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if Matches(inv, c) {
			out = append(out, inv)
		}
	}
	return out
}

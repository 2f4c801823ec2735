package export

import (
	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

// Report chart names.
const (
	ChartByProduct = "spending_by_category.png"
	ChartByStatus  = "total_spending_by_status.png"
	ChartByDay     = "daily_spending.png"
)

// FilePrefix is "{start}-{end}-{status}" with dates as YYYY_MM_DD.
func FilePrefix(r entity.DateRange, status constants.StatusFilter) string {
	return utils.FormatFileDate(r.Start) + "-" + utils.FormatFileDate(r.End) + "-" + status.String()
}

// TableFileName names an exported invoice table.
func TableFileName(r entity.DateRange, status constants.StatusFilter, format string) string {
	ext := constants.NormalizeExt(format)
	if ext == "" {
		ext = constants.FormatCSV
	}
	return FilePrefix(r, status) + "." + ext
}

// ReportFileName names one chart of a generated report.
func ReportFileName(r entity.DateRange, status constants.StatusFilter, chart string) string {
	return FilePrefix(r, status) + "_" + chart
}

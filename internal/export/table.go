package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

// EncodeTable renders invoice rows in the given format ("csv" or "xlsx").
func EncodeTable(rows []entity.InvoiceRow, format string) ([]byte, error) {
	switch constants.NormalizeExt(format) {
	case constants.FormatCSV, "":
		return encodeCSV(rows)
	case constants.FormatXLSX:
		return encodeXLSX(rows)
	default:
		return nil, fmt.Errorf("unsupported table format %q", format)
	}
}

func tableRecord(r entity.InvoiceRow) []string {
	return []string{
		r.InvoiceNumber,
		r.VendorName,
		r.LineTotal.StringFixed(2),
		string(r.Status),
		utils.FormatYMD(r.IssuedDate),
		utils.FormatYMD(r.DueDate),
	}
}

func encodeCSV(rows []entity.InvoiceRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(entity.TableColumns); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(tableRecord(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeXLSX(rows []entity.InvoiceRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range entity.TableColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.InvoiceNumber)
		write(2, r.VendorName)
		// numeric cell so spreadsheet sums work
		amount, _ := r.LineTotal.Round(2).Float64()
		write(3, amount)
		write(4, string(r.Status))
		write(5, xlsxDate(r.IssuedDate))
		write(6, xlsxDate(r.DueDate))
	}

	_ = f.SetColWidth(sheet, "A", "A", 22) // invoice number
	_ = f.SetColWidth(sheet, "B", "B", 28) // vendor
	_ = f.SetColWidth(sheet, "C", "C", 14) // amount
	_ = f.SetColWidth(sheet, "D", "F", 14) // status, dates

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func xlsxDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return utils.FormatYMD(t)
}

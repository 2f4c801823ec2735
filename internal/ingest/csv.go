package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

const utf8BOM = "\ufeff"

// ReadRecords reads a CSV file with a header row. An empty file yields no
// header and no records.
func ReadRecords(path string) ([]string, []entity.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return readRecords(path, f)
}

func readRecords(source string, r io.Reader) ([]string, []entity.RawRecord, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var records []entity.RawRecord
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return header, records, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, entity.NewRawRecord(source, line, header, cells))
	}
	return header, records, nil
}

// WriteCSV writes header and rows to path atomically.
func WriteCSV(path string, header []string, rows [][]string) error {
	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
}

func canonicalCells(inv entity.Invoice) []string {
	return []string{
		inv.InvoiceNumber,
		inv.VendorName,
		inv.Address,
		utils.FormatYMD(inv.IssuedDate),
		utils.FormatYMD(inv.DueDate),
		string(inv.Status),
		inv.ProductName,
		fmt.Sprintf("%d", inv.Quantity),
		inv.UnitPrice.StringFixed(2),
	}
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
)

// CanonicalColumns is the column order of a cleaned invoice file.
var CanonicalColumns = []string{
	"invoice_number",
	"vendor_name",
	"address",
	"issued_date",
	"due_date",
	"invoice_status",
	"product_name",
	"quantity",
	"unit_price",
}

// TableColumns is the column order of the invoice table view and its export.
var TableColumns = []string{
	"invoice_number",
	"vendor_name",
	"line_total",
	"invoice_status",
	"issued_date",
	"due_date",
}

// Invoice is one canonical invoice line.
type Invoice struct {
	InvoiceNumber string                  `json:"invoice_number"`
	VendorName    string                  `json:"vendor_name"`
	Address       string                  `json:"address"`
	IssuedDate    time.Time               `json:"issued_date"`
	DueDate       time.Time               `json:"due_date"`
	Status        constants.InvoiceStatus `json:"invoice_status"`
	ProductName   string                  `json:"product_name"`
	Quantity      int                     `json:"quantity"`
	UnitPrice     decimal.Decimal         `json:"unit_price"`
}

// LineTotal is quantity times unit price.
func (i Invoice) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Row projects the invoice onto the table view.
func (i Invoice) Row() InvoiceRow {
	return InvoiceRow{
		InvoiceNumber: i.InvoiceNumber,
		VendorName:    i.VendorName,
		LineTotal:     i.LineTotal(),
		Status:        i.Status,
		IssuedDate:    i.IssuedDate,
		DueDate:       i.DueDate,
	}
}

// Detail projects the invoice onto the detail view.
func (i Invoice) Detail() InvoiceDetail {
	return InvoiceDetail{
		InvoiceNumber: i.InvoiceNumber,
		VendorName:    i.VendorName,
		Address:       i.Address,
		Status:        i.Status,
		IssuedDate:    i.IssuedDate,
		DueDate:       i.DueDate,
		ProductName:   i.ProductName,
		LineTotal:     i.LineTotal(),
	}
}

// InvoiceRow is a row of the invoice table view.
type InvoiceRow struct {
	InvoiceNumber string                  `json:"invoice_number"`
	VendorName    string                  `json:"vendor_name"`
	LineTotal     decimal.Decimal         `json:"line_total"`
	Status        constants.InvoiceStatus `json:"invoice_status"`
	IssuedDate    time.Time               `json:"issued_date"`
	DueDate       time.Time               `json:"due_date"`
}

// InvoiceDetail is the single-invoice view.
type InvoiceDetail struct {
	InvoiceNumber string                  `json:"invoice_number"`
	VendorName    string                  `json:"vendor_name"`
	Address       string                  `json:"address"`
	Status        constants.InvoiceStatus `json:"invoice_status"`
	IssuedDate    time.Time               `json:"issued_date"`
	DueDate       time.Time               `json:"due_date"`
	ProductName   string                  `json:"product_name"`
	LineTotal     decimal.Decimal         `json:"line_total"`
}

// ProductSpend is the total spent on one product.
type ProductSpend struct {
	ProductName   string          `json:"product_name"`
	TotalSpending decimal.Decimal `json:"total_spending"`
}

// Rows projects a slice of invoices onto the table view.
func Rows(invoices []Invoice) []InvoiceRow {
	out := make([]InvoiceRow, len(invoices))
	for i, inv := range invoices {
		out[i] = inv.Row()
	}
	return out
}

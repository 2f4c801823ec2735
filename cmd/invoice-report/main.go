package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/export"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/filter"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/ingest"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/observability"
	repo "github.com/tymoteuszmilek/Invoice-Automation/internal/repository"
	ingestsvc "github.com/tymoteuszmilek/Invoice-Automation/internal/services/ingest"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/services/report"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	var (
		status   = flag.String("status", "All", "invoice status: All, Pending, Overdue or Paid")
		search   = flag.String("search", "", "substring of invoice number or vendor name")
		fromStr  = flag.String("from", "", "start date YYYY-MM-DD")
		toStr    = flag.String("to", "", "end date YYYY-MM-DD")
		detail   = flag.String("detail", "", "show one invoice by number")
		doExport = flag.Bool("export", false, "export the table (needs -from and -to)")
		doReport = flag.Bool("report", false, "generate report charts (needs -from and -to)")
		spend    = flag.Bool("spend-by-product", false, "print spend per product over issued dates")
		format   = flag.String("format", cfg.Export.TableFormat, "export format: csv or xlsx")
		inmem    = flag.Bool("inmem", false, "use in-memory SQLite database")
		seed     = flag.String("seed", "", "clean and load a raw CSV directory before querying")
	)
	flag.Parse()

	cfg.Export.TableFormat = *format
	if *inmem {
		cfg.Database.Driver = repo.DriverSQLite
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	policy, _ := filter.ParseBoundPolicy(cfg.Filter.BoundPolicy)

	logger := common.NewLogger(os.Stderr, cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.InitDatabase(ctx, cfg.Database, *inmem, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *seed != "" {
		ingestor := ingest.NewFSIngestor(logger, ingest.WithWorkers(cfg.Ingest.Workers))
		res, err := ingestsvc.NewService(ingestor, repo.NewInvoiceStore(db, logger), logger).
			IngestDirectory(ctx, ingestsvc.DirectoryRequest{RootPath: *seed, OutDir: cfg.Ingest.CleanDir, Load: true})
		if err != nil {
			logger.Error("failed to seed database", "dir", *seed, "error", err)
			os.Exit(1)
		}
		logger.Info("database seeded", "dir", *seed, "invoices", res.Loaded)
	}

	metrics := observability.NewMetrics()
	invoices := repo.NewResilient(repo.NewInvoiceRepository(db, logger), cfg.Resilience.MaxRetries, cfg.Resilience.InitialBackoff, metrics, logger)
	sink := export.NewDirSink(cfg.Export.TableDir, cfg.Export.ReportDir, metrics, logger)
	svc := report.NewService(invoices, sink, export.NewPlotRenderer(), cfg.Export.TableFormat, logger)

	if *detail != "" {
		d, err := svc.Detail(ctx, *detail)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		printDetail(d)
		return
	}

	in := filter.Input{Status: *status, Search: *search, Start: *fromStr, End: *toStr}
	if *spend {
		c, err := filter.ParseCriteria(in, entity.DateFieldIssued, policy)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		rows, err := svc.SpendByProduct(ctx, c.Start, c.End)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "product_name\ttotal_spending")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\n", r.ProductName, r.TotalSpending.StringFixed(2))
		}
		_ = w.Flush()
		return
	}

	c, err := filter.ParseCriteria(in, entity.DateFieldDue, policy)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	rows, err := svc.Table(ctx, c)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	printTable(rows)

	if *doExport {
		path, err := svc.ExportTable(ctx, c, rows)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported data to %s\n", path)
	}
	if *doReport {
		res, err := svc.Generate(ctx, c)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		for _, p := range res.Written {
			fmt.Printf("Report written to %s\n", p)
		}
		for _, s := range res.Skipped {
			fmt.Printf("No data available for %s\n", s)
		}
	}
}

func printTable(rows []entity.InvoiceRow) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "invoice_number\tvendor_name\tline_total\tinvoice_status\tissued_date\tdue_date")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.InvoiceNumber, r.VendorName, r.LineTotal.StringFixed(2),
			r.Status, utils.FormatYMD(r.IssuedDate), utils.FormatYMD(r.DueDate))
	}
	_ = w.Flush()
	fmt.Printf("%d invoices\n", len(rows))
}

func printDetail(d *entity.InvoiceDetail) {
	fmt.Printf("Invoice Number: %s\n", d.InvoiceNumber)
	fmt.Printf("Vendor: %s\n", d.VendorName)
	fmt.Printf("Address: %s\n", d.Address)
	fmt.Printf("Status: %s\n", d.Status)
	fmt.Printf("Issued Date: %s\n", d.IssuedDate.Format(time.DateOnly))
	fmt.Printf("Due Date: %s\n", d.DueDate.Format(time.DateOnly))
	fmt.Printf("Product: %s\n", d.ProductName)
	fmt.Printf("Line Total: %s\n", d.LineTotal.StringFixed(2))
}

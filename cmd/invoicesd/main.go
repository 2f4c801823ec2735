package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/async"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/export"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/filter"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/ingest"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/observability"
	repo "github.com/tymoteuszmilek/Invoice-Automation/internal/repository"
	svc "github.com/tymoteuszmilek/Invoice-Automation/internal/server"
	ingestsvc "github.com/tymoteuszmilek/Invoice-Automation/internal/services/ingest"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/services/report"
)

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	logger := common.NewLogger(os.Stdout, cfg.Log.Format, cfg.Log.Level)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.InitDatabase(ctx, cfg.Database, false, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer db.Close()

	// Ping DB to ensure connectivity
	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	policy, _ := filter.ParseBoundPolicy(cfg.Filter.BoundPolicy)

	invoices := repo.NewResilient(repo.NewInvoiceRepository(db, logger), cfg.Resilience.MaxRetries, cfg.Resilience.InitialBackoff, metrics, logger)
	sink := export.NewDirSink(cfg.Export.TableDir, cfg.Export.ReportDir, metrics, logger)
	reports := report.NewService(invoices, sink, export.NewPlotRenderer(), cfg.Export.TableFormat, logger)

	ingestOpts := []ingest.Option{
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithMetrics(metrics),
	}
	if s, ok := constants.ParseDedupScope(cfg.Ingest.DedupScope); ok {
		ingestOpts = append(ingestOpts, ingest.WithDedupScope(s))
	}
	if cfg.Ingest.ManifestPath != "" {
		m, err := ingest.LoadManifest(cfg.Ingest.ManifestPath)
		if err != nil {
			logger.Error("failed to load source manifest", "path", cfg.Ingest.ManifestPath, "error", err)
			os.Exit(1)
		}
		ingestOpts = append(ingestOpts, ingest.WithManifest(m))
	}
	ingestor := ingest.NewFSIngestor(logger, ingestOpts...)
	ingestion := ingestsvc.NewService(ingestor, repo.NewInvoiceStore(db, logger), logger)

	// Background ingestion queue; INGEST_QUEUE_WORKERS=0 disables async requests.
	var queue async.Queue
	if cfg.Ingest.QueueWorkers > 0 {
		queue = async.NewIngestQueue(ingestion, logger,
			async.WithWorkers(cfg.Ingest.QueueWorkers),
			async.WithQueueSize(cfg.Ingest.QueueSize),
			async.WithProcessTimeout(cfg.Ingest.JobTimeout),
		)
	}

	// gRPC server
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(svc.UnaryInterceptor(metrics, logger)))
	svc.RegisterInvoiceQueryServer(grpcServer, svc.NewQueryService(reports, policy, logger))
	svc.RegisterIngestionServer(grpcServer, svc.NewIngestionService(ingestion, queue, logger))

	// Register gRPC health service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(svc.QueryServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if cfg.Server.MetricsAddr != "" {
		go func() {
			logger.Info("metrics listening", "addr", cfg.Server.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics serve error", "error", err)
			}
		}()
	}

	logger.Info("invoicesd listening", "addr", addr)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
}

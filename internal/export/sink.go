package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/observability"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/utils"
)

// Sink persists exported tables and report images. Both methods return the
// location written.
type Sink interface {
	WriteTable(ctx context.Context, name string, rows []entity.InvoiceRow, format string) (string, error)
	WriteImage(ctx context.Context, name string, png []byte) (string, error)
}

// DirSink writes tables and images into two explicit directories.
type DirSink struct {
	TableDir  string
	ReportDir string
	metrics   *observability.Metrics
	logger    *slog.Logger
}

var _ Sink = (*DirSink)(nil)

func NewDirSink(tableDir, reportDir string, metrics *observability.Metrics, logger *slog.Logger) *DirSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirSink{TableDir: tableDir, ReportDir: reportDir, metrics: metrics, logger: logger}
}

func (s *DirSink) WriteTable(ctx context.Context, name string, rows []entity.InvoiceRow, format string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := EncodeTable(rows, format)
	if err != nil {
		return "", err
	}
	path, err := s.write(s.TableDir, name, data)
	if err != nil {
		s.logger.Error("export.table.failed", "file", name, "error", err)
		return "", err
	}
	s.metrics.IncrExport("table")
	s.logger.Info("export.table.ok", "file", path, "rows", len(rows), "format", format)
	return path, nil
}

func (s *DirSink) WriteImage(ctx context.Context, name string, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.write(s.ReportDir, name, png)
	if err != nil {
		s.logger.Error("export.image.failed", "file", name, "error", err)
		return "", err
	}
	s.metrics.IncrExport("image")
	s.logger.Info("export.image.ok", "file", path, "bytes", len(png))
	return path, nil
}

func (s *DirSink) write(dir, name string, data []byte) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("no output directory configured for %s", name)
	}
	if filepath.Base(name) != name {
		return "", fmt.Errorf("invalid export file name %q", name)
	}
	path := filepath.Join(dir, name)
	err := utils.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

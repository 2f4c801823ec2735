package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/observability"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/resilience"
)

// Resilient retries repository calls behind a circuit breaker. A call that
// still fails comes back as an empty result and a RepositoryUnavailable error.
type Resilient struct {
	next    InvoiceRepository
	cb      *gobreaker.CircuitBreaker
	cfg     resilience.Config
	metrics *observability.Metrics
	logger  *slog.Logger
}

var _ InvoiceRepository = (*Resilient)(nil)

func NewResilient(next InvoiceRepository, maxRetries int, initialBackoff time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resilient{
		next: next,
		cb:   resilience.NewCircuitBreaker("invoice-repository"),
		cfg: resilience.Config{
			MaxRetries:     maxRetries,
			InitialBackoff: initialBackoff,
			Retryable:      retryable,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// retryable excludes outcomes that a second attempt cannot change.
func retryable(err error) bool {
	return !errors.Is(err, common.ErrNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func (r *Resilient) call(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	err := resilience.Execute(ctx, r.cb, r.cfg, fn)
	r.metrics.RecordRepoCall(operation, time.Since(start), err)
	if err == nil || errors.Is(err, common.ErrNotFound) {
		return err
	}
	r.logger.Warn("repository.call.failed", "operation", operation, "breaker", r.cb.State().String(), "error", err)
	return common.RepositoryUnavailable(operation, err)
}

func (r *Resilient) ListInvoices(ctx context.Context, c entity.FilterCriteria) ([]entity.Invoice, error) {
	var out []entity.Invoice
	err := r.call(ctx, "list_invoices", func() error {
		var err error
		out, err = r.next.ListInvoices(ctx, c)
		return err
	})
	if err != nil {
		return []entity.Invoice{}, err
	}
	return out, nil
}

func (r *Resilient) GetInvoiceDetail(ctx context.Context, invoiceNumber string) (*entity.InvoiceDetail, error) {
	var out *entity.InvoiceDetail
	err := r.call(ctx, "get_invoice_detail", func() error {
		var err error
		out, err = r.next.GetInvoiceDetail(ctx, invoiceNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resilient) SpendByProduct(ctx context.Context, start, end *time.Time) ([]entity.ProductSpend, error) {
	var out []entity.ProductSpend
	err := r.call(ctx, "spend_by_product", func() error {
		var err error
		out, err = r.next.SpendByProduct(ctx, start, end)
		return err
	})
	if err != nil {
		return []entity.ProductSpend{}, err
	}
	return out, nil
}

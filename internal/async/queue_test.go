package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	ingestsvc "github.com/tymoteuszmilek/Invoice-Automation/internal/services/ingest"
)

type recordingRunner struct {
	mu      sync.Mutex
	roots   []string
	batches []string
	delay   time.Duration
	err     error
}

func (r *recordingRunner) IngestDirectory(ctx context.Context, req ingestsvc.DirectoryRequest) (*ingestsvc.DirectoryResult, error) {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	r.roots = append(r.roots, req.RootPath)
	r.batches = append(r.batches, common.BatchIDFromContext(ctx))
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return &ingestsvc.DirectoryResult{BatchID: common.BatchIDFromContext(ctx)}, nil
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.roots)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueueRunsEveryJob(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		jobs    int
		err     error
	}{
		{"single worker", 1, 3, nil},
		{"pool", 4, 10, nil},
		{"failing runner", 2, 4, errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordingRunner{err: tt.err}
			q := NewIngestQueue(runner, quietLogger(), WithWorkers(tt.workers), WithQueueSize(tt.jobs))
			for i := 0; i < tt.jobs; i++ {
				job := Job{BatchID: "b", Request: ingestsvc.DirectoryRequest{RootPath: "raw"}}
				if err := q.Enqueue(context.Background(), job); err != nil {
					t.Fatalf("Enqueue: %v", err)
				}
			}
			q.Shutdown(context.Background())
			if got := runner.count(); got != tt.jobs {
				t.Errorf("ran %d jobs, want %d", got, tt.jobs)
			}
		})
	}
}

func TestQueuePropagatesBatchID(t *testing.T) {
	runner := &recordingRunner{}
	q := NewIngestQueue(runner, quietLogger(), WithWorkers(1))
	if err := q.Enqueue(context.Background(), Job{BatchID: "batch-42"}); err != nil {
		t.Fatal(err)
	}
	q.Shutdown(context.Background())
	if len(runner.batches) != 1 || runner.batches[0] != "batch-42" {
		t.Errorf("batches = %v", runner.batches)
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q := NewIngestQueue(&recordingRunner{}, quietLogger())
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	if err := q.Enqueue(context.Background(), Job{BatchID: "late"}); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestEnqueueBackpressure(t *testing.T) {
	runner := &recordingRunner{delay: 200 * time.Millisecond}
	q := NewIngestQueue(runner, quietLogger(), WithWorkers(1), WithQueueSize(1))
	defer q.Shutdown(context.Background())

	// One job in flight, one buffered; the third must wait.
	for i := 0; i < 2; i++ {
		if err := q.Enqueue(context.Background(), Job{BatchID: "b"}); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(20 * time.Millisecond)
	if err := q.Enqueue(context.Background(), Job{BatchID: "b"}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(ctx, Job{BatchID: "b"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

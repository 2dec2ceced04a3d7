package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/paperpoint/invoice-extractor/internal/entity"
)

// RecordProcessor is what the pool runs per document.
type RecordProcessor interface {
	ProcessFile(ctx context.Context, path string) *entity.Record
}

// ProcessorPool fans a batch of documents out over a fixed set of workers
// and fans the records back in, in input order. Each document gets its own
// timeout; one slow or broken document never stalls the batch.
type ProcessorPool struct {
	proc    RecordProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration
}

type Option func(*ProcessorPool)

func WithWorkers(n int) Option {
	return func(p *ProcessorPool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(p *ProcessorPool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewProcessorPool(proc RecordProcessor, logger *slog.Logger, opts ...Option) *ProcessorPool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &ProcessorPool{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type job struct {
	index int
	path  string
}

// ProcessBatch blocks until every document has a record. Results hold input
// order regardless of which worker finished first. Cancelling ctx stops the
// feed; documents already picked up still finish under their own timeout.
func (p *ProcessorPool) ProcessBatch(ctx context.Context, paths []string) []*entity.Record {
	out := make([]*entity.Record, len(paths))
	if len(paths) == 0 {
		return out
	}

	workers := p.workers
	if workers > len(paths) {
		workers = len(paths)
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.logger.Debug("worker started", "worker_id", workerID)
			for j := range jobs {
				jctx, cancel := context.WithTimeout(ctx, p.timeout)
				rec := p.proc.ProcessFile(jctx, j.path)
				cancel()
				out[j.index] = rec
				p.logger.Debug("worker processed document",
					"worker_id", workerID, "file", rec.FileName, "status", string(rec.Status))
			}
			p.logger.Debug("worker stopped", "worker_id", workerID)
		}(i + 1)
	}

feed:
	for i, path := range paths {
		select {
		case jobs <- job{index: i, path: path}:
		case <-ctx.Done():
			p.logger.Warn("batch cancelled", "queued", i, "total", len(paths))
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	// Documents never fed (cancellation) still need a record.
	for i, rec := range out {
		if rec == nil {
			r := entity.NewRecord(paths[i])
			r.Skip("batch cancelled before processing")
			out[i] = r
		}
	}
	return out
}

// Package processing runs lead archives on a small in-process worker pool.
// It stands in for the asynq worker when no Redis address is configured.
package processing

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pqui/archstudio/internal/model"
)

// ErrQueueFull is returned by Dispatch when every buffered slot is taken.
var ErrQueueFull = errors.New("processing queue full")

// ArchiveFunc does the work for one submission; worker.Archiver.Archive.
type ArchiveFunc func(ctx context.Context, sub model.ContactSubmission) error

// Processor consumes submissions on a fixed number of goroutines.
type Processor struct {
	archive ArchiveFunc
	queue   chan model.ContactSubmission
	workers int
	log     logrus.FieldLogger
	wg      sync.WaitGroup
}

// New builds a Processor with queue capacity tied to worker count.
func New(archive ArchiveFunc, workers int, log logrus.FieldLogger) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{
		archive: archive,
		queue:   make(chan model.ContactSubmission, workers*4),
		workers: workers,
		log:     log,
	}
}

// Start launches worker goroutines. They exit when ctx is cancelled.
func (p *Processor) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Wait blocks until every worker has exited.
func (p *Processor) Wait() { p.wg.Wait() }

// Dispatch queues a submission. It never blocks the request that submitted
// the form; a full queue drops the job.
func (p *Processor) Dispatch(_ context.Context, sub model.ContactSubmission) error {
	select {
	case p.queue <- sub:
		return nil
	default:
		p.log.WithField("submission", sub.ID).Warn("processor queue full, dropping archive job")
		return ErrQueueFull
	}
}

func (p *Processor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-p.queue:
			// Archive errors are logged by the archiver itself.
			_ = p.archive(context.WithoutCancel(ctx), sub)
		}
	}
}

package mail

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Dispatcher runs mail jobs on a small worker pool so request handlers never
// block on SMTP. Job errors are logged inside the worker and never reach the
// request that enqueued them.
type Dispatcher struct {
	jobs   chan func() error
	group  *errgroup.Group
	logger *logrus.Logger
}

// NewDispatcher starts workers goroutines draining the job queue.
func NewDispatcher(workers, queueSize int, logger *logrus.Logger) *Dispatcher {
	d := &Dispatcher{
		jobs:   make(chan func() error, queueSize),
		group:  &errgroup.Group{},
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		d.group.Go(d.work)
	}
	return d
}

func (d *Dispatcher) work() error {
	for job := range d.jobs {
		if err := job(); err != nil {
			d.logger.Errorf("Background mail job failed: %v", err)
		}
	}
	return nil
}

// Enqueue submits a job without blocking the caller. When the queue is full
// the job is dropped and logged; mail is best-effort.
func (d *Dispatcher) Enqueue(job func() error) {
	select {
	case d.jobs <- job:
	default:
		d.logger.Warn("Mail queue full, dropping message")
	}
}

// Shutdown stops accepting jobs and waits for in-flight ones, or returns when
// the context expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	close(d.jobs)

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

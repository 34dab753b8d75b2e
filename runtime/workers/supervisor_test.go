package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingWorker struct {
	runs    atomic.Int32
	behave  func(run int32) error
	started chan struct{}
}

func (w *countingWorker) Run(ctx context.Context) error {
	run := w.runs.Add(1)
	select {
	case w.started <- struct{}{}:
	default:
	}
	return w.behave(run)
}

func newCountingWorker(behave func(run int32) error) *countingWorker {
	return &countingWorker{behave: behave, started: make(chan struct{}, 16)}
}

func TestSupervisor_Worker_Finishing_Cleanly_Is_Not_Restarted(t *testing.T) {
	req := require.New(t)
	worker := newCountingWorker(func(int32) error { return nil })
	sup := NewSupervisor(slog.Default())
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not finish")
	}
	req.Equal(int32(1), worker.runs.Load())
}

func TestSupervisor_Restarts_Failing_Worker(t *testing.T) {
	req := require.New(t)

	// Given a worker that fails twice before settling
	worker := newCountingWorker(func(run int32) error {
		if run < 3 {
			return fmt.Errorf("boom %d", run)
		}
		return nil
	})
	sup := NewSupervisor(slog.Default())
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not finish")
	}
	req.Equal(int32(3), worker.runs.Load())
}

func TestSupervisor_Recovers_Panicking_Worker(t *testing.T) {
	req := require.New(t)
	worker := newCountingWorker(func(run int32) error {
		if run == 1 {
			panic("worker exploded")
		}
		return nil
	})
	sup := NewSupervisor(slog.Default())
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not survive the panic")
	}
	req.Equal(int32(2), worker.runs.Load())
}

func TestSupervisor_Stop_Cancels_Workers(t *testing.T) {
	req := require.New(t)

	// Given a worker that only returns on cancellation
	blocking := &blockingWorker{started: make(chan struct{})}
	sup := NewSupervisor(slog.Default())
	sup.Add(blocking)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	<-blocking.started
	sup.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop")
	}
	req.NotNil(sup.Cancel)
}

type blockingWorker struct {
	started chan struct{}
}

func (w *blockingWorker) Run(ctx context.Context) error {
	close(w.started)
	<-ctx.Done()
	return nil
}

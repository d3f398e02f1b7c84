package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	ran chan struct{}
}

func (f *fakeRunner) Run(context.Context) (*RunReport, error) {
	f.ran <- struct{}{}
	return &RunReport{}, nil
}

func TestWorker_RunsImmediatelyOnStart(t *testing.T) {
	runner := &fakeRunner{ran: make(chan struct{}, 1)}
	worker := NewWorker(WorkerConfig{Interval: time.Hour}, runner)

	worker.Start(context.Background())
	defer worker.Stop()

	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not run on start")
	}
}

func TestWorker_StopReturns(t *testing.T) {
	runner := &fakeRunner{ran: make(chan struct{}, 10)}
	worker := NewWorker(WorkerConfig{Interval: time.Hour}, runner)

	worker.Start(context.Background())
	<-runner.ran

	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_TicksOnInterval(t *testing.T) {
	runner := &fakeRunner{ran: make(chan struct{}, 10)}
	worker := NewWorker(WorkerConfig{Interval: 20 * time.Millisecond}, runner)

	worker.Start(context.Background())
	defer worker.Stop()

	for i := 0; i < 3; i++ {
		select {
		case <-runner.ran:
		case <-time.After(2 * time.Second):
			require.FailNow(t, "expected scheduled run", "run %d never happened", i)
		}
	}
}

package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDispatcher_RunsSubmittedTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(4, zerolog.Nop())
	d.Start(ctx)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ran := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		d.Submit("key", func(ctx context.Context) error {
			defer wg.Done()
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("tasks did not complete")
	}

	mu.Lock()
	defer mu.Unlock()
	if ran != 20 {
		t.Fatalf("expected 20 tasks to run, got %d", ran)
	}
}

func TestDispatcher_SameKeyRunsInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(8, zerolog.Nop())
	d.Start(ctx)

	const n = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	var order []int

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		d.Submit("adventure_42", func(ctx context.Context) error {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("tasks did not complete")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, got := range order {
		if got != i {
			t.Fatalf("tasks with the same key ran out of order: position %d got %d", i, got)
		}
	}
}

func TestDispatcher_TaskErrorDoesNotStopWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(1, zerolog.Nop())
	d.Start(ctx)

	d.Submit("k", func(ctx context.Context) error {
		return errors.New("boom")
	})

	done := make(chan struct{})
	d.Submit("k", func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("worker stopped after a task error")
	}
}

func TestDispatcher_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDispatcher(1, zerolog.Nop())
	d.Start(ctx)

	ran := make(chan struct{})
	d.Submit("k", func(ctx context.Context) error {
		close(ran)
		return nil
	})
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("task did not run before cancel")
	}

	cancel()
	time.Sleep(50 * time.Millisecond)

	// Tasks submitted after cancellation are buffered but never executed.
	executed := make(chan struct{}, 1)
	d.Submit("k", func(ctx context.Context) error {
		executed <- struct{}{}
		return nil
	})
	select {
	case <-executed:
		t.Fatalf("task executed after worker shutdown")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewDispatcher(0, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}

package closer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	tests := []struct {
		name           string
		numTasks       int
		numWorkers     int
		expectedErrors int
	}{
		{
			name:           "Test worker pool with simple tasks",
			numTasks:       5,
			numWorkers:     2,
			expectedErrors: 0,
		},
		{
			name:           "Test worker pool with error in task",
			numTasks:       2,
			numWorkers:     2,
			expectedErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wp := NewWorkerPool(tt.numWorkers)
			defer wp.Close()

			var mu sync.Mutex
			var taskExecutionCount int
			var errorCount int
			var wg sync.WaitGroup

			for i := 0; i < tt.numTasks; i++ {
				wg.Add(1)
				task := func() error {
					defer wg.Done()
					if i == tt.numTasks-1 && tt.expectedErrors > 0 {
						mu.Lock()
						errorCount++
						mu.Unlock()
						return assert.AnError
					}
					time.Sleep(20 * time.Millisecond)
					mu.Lock()
					taskExecutionCount++
					mu.Unlock()
					return nil
				}

				err := wp.AddTask(context.Background(), task)
				require.NoError(t, err, "failed to add task to pool")
			}

			wg.Wait()

			assert.Equal(t, tt.numTasks-tt.expectedErrors, taskExecutionCount, "number of executed tasks does not match")
			assert.Equal(t, tt.expectedErrors, errorCount, "number of errors does not match")
		})
	}
}

func TestWorkerPoolCancelledContext(t *testing.T) {
	wp := NewWorkerPool(1)
	defer wp.Close()

	block := make(chan struct{})
	defer close(block)
	// occupy the worker and the single queue slot
	require.NoError(t, wp.AddTask(context.Background(), func() error { <-block; return nil }))
	require.NoError(t, wp.AddTask(context.Background(), func() error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := wp.AddTask(ctx, func() error {
		t.Error("task should not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerPoolCloseTwice(t *testing.T) {
	wp := NewWorkerPool(2)
	wp.Close()
	assert.NotPanics(t, wp.Close)
}

func TestWorkerPoolCloseDrainsQueue(t *testing.T) {
	wp := NewWorkerPool(1)

	var mu sync.Mutex
	done := 0
	for i := 0; i < 3; i++ {
		require.NoError(t, wp.AddTask(context.Background(), func() error {
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			done++
			mu.Unlock()
			return nil
		}))
	}

	wp.Close()

	assert.Equal(t, 3, done)
	assert.ErrorIs(t, wp.AddTask(context.Background(), func() error { return nil }), ErrPoolClosed)
}

func TestWorkerPoolSurvivesPanic(t *testing.T) {
	wp := NewWorkerPool(1)
	defer wp.Close()

	require.NoError(t, wp.AddTask(context.Background(), func() error { panic("boom") }))

	ran := make(chan struct{})
	require.NoError(t, wp.AddTask(context.Background(), func() error {
		close(ran)
		return nil
	}))

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("worker did not recover from panic")
	}
}

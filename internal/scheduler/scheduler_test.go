package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStartRunsImmediately(t *testing.T) {
	ran := make(chan struct{})
	s := New(func(context.Context) error {
		close(ran)
		return nil
	}, time.Hour, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("initial harvest cycle never ran")
	}
}

func TestOverlappingCyclesAreSkipped(t *testing.T) {
	var calls atomic.Int32
	block := make(chan struct{})
	s := New(func(context.Context) error {
		calls.Add(1)
		<-block
		return nil
	}, time.Hour, zap.NewNop())

	go s.runCycle(context.Background())
	// Give the first cycle time to take the slot.
	time.Sleep(50 * time.Millisecond)
	s.runCycle(context.Background())
	assert.EqualValues(t, 1, calls.Load(), "second tick must be skipped while the first runs")

	close(block)
}

func TestCycleErrorDoesNotStickRunningFlag(t *testing.T) {
	var calls atomic.Int32
	s := New(func(context.Context) error {
		calls.Add(1)
		return assert.AnError
	}, time.Hour, zap.NewNop())

	s.runCycle(context.Background())
	s.runCycle(context.Background())
	assert.EqualValues(t, 2, calls.Load())
}

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votetopics/pkg/pipeline"
)

type countingRunner struct {
	calls   atomic.Int32
	block   chan struct{}
	err     error
	sawDead atomic.Bool
}

func (r *countingRunner) Run(ctx context.Context) (pipeline.Result, error) {
	r.calls.Add(1)
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			r.sawDead.Store(true)
			return pipeline.Result{}, ctx.Err()
		}
	}
	return pipeline.Result{Processed: 1}, r.err
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	_, err := New("not a cron", &countingRunner{}, 0, zerolog.Nop())
	assert.Error(t, err)
}

func TestTickRunsRunner(t *testing.T) {
	runner := &countingRunner{err: errors.New("store down")}
	s, err := New("@every 1h", runner, time.Second, zerolog.Nop())
	require.NoError(t, err)

	s.tick()
	s.tick()
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestTickSkipsOverlappingRuns(t *testing.T) {
	runner := &countingRunner{block: make(chan struct{})}
	s, err := New("@every 1h", runner, 0, zerolog.Nop())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.tick()
		close(done)
	}()
	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, time.Millisecond)

	s.tick()
	assert.Equal(t, int32(1), runner.calls.Load())

	close(runner.block)
	<-done
}

func TestTickAppliesTimeout(t *testing.T) {
	runner := &countingRunner{block: make(chan struct{})}
	s, err := New("@every 1h", runner, 10*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	s.tick()
	assert.True(t, runner.sawDead.Load())
}

func TestStartAndStop(t *testing.T) {
	s, err := New("@every 1h", &countingRunner{}, 0, zerolog.Nop())
	require.NoError(t, err)

	s.Start()
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.Next(), time.Minute)
	s.Stop()
}

package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransient(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(eris.New("conn busy"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanent := eris.New("syntax error at or near SELECT")
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	transient := NewTransientError(eris.New("deadlock detected"))
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return transient
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, fastConfig(), func(context.Context) error {
		calls++
		cancel()
		return NewTransientError(eris.New("conn closed"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "no retry after the context is cancelled")
}

func TestDoCustomShouldRetry(t *testing.T) {
	cfg := fastConfig()
	cfg.ShouldRetry = func(error) bool { return true }

	calls := 0
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return eris.New("anything retries with a custom predicate")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit wrapper", NewTransientError(eris.New("x")), true},
		{"wrapped explicit", eris.Wrap(NewTransientError(eris.New("x")), "outer"), true},
		{"driver conn busy", eris.New("pgx: conn busy"), true},
		{"pool exhausted", eris.New("FATAL: sorry, too many clients already"), true},
		{"deadlock", eris.New("ERROR: deadlock detected"), true},
		{"startup", eris.New("the database system is starting up"), true},
		{"syntax error", eris.New("syntax error at or near"), false},
		{"constraint", eris.New("duplicate key value violates unique constraint"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestComputeBackoffCapped(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     2 * time.Second,
		Multiplier:     10,
		JitterFraction: 0,
	})

	assert.Equal(t, time.Second, computeBackoff(0, cfg))
	assert.Equal(t, 2*time.Second, computeBackoff(1, cfg))
	assert.Equal(t, 2*time.Second, computeBackoff(5, cfg))
}

package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errUpstream = errors.New("upstream 503")
	errClient   = errors.New("client error")
)

func fail(context.Context) error { return errUpstream }
func pass(context.Context) error { return nil }

func newClockedBreaker(name string, config Config) (*Breaker, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	breaker := NewBreaker(name, config, nil)
	breaker.now = func() time.Time { return now }
	return breaker, &now
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	var transitions []State
	breaker, _ := newClockedBreaker("products", Config{
		Threshold: 3,
		Timeout:   time.Second,
		OnStateChange: func(_ string, _, to State) {
			transitions = append(transitions, to)
		},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, breaker.Execute(ctx, fail), errUpstream)
	}

	assert.Equal(t, StateOpen, breaker.State())
	assert.ErrorIs(t, breaker.Execute(ctx, pass), ErrCircuitOpen)
	assert.Equal(t, []State{StateOpen}, transitions)
}

func TestBreaker_SuccessResetsFailureRun(t *testing.T) {
	breaker, _ := newClockedBreaker("products", Config{Threshold: 2, Timeout: time.Hour})
	ctx := context.Background()

	_ = breaker.Execute(ctx, fail)
	require.NoError(t, breaker.Execute(ctx, pass))
	_ = breaker.Execute(ctx, fail)

	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, 1, breaker.Snapshot().Failures)
}

func TestBreaker_IgnoresNonFailures(t *testing.T) {
	breaker, _ := newClockedBreaker("auth", Config{
		Threshold: 1,
		Timeout:   time.Hour,
		IsFailure: func(err error) bool { return !errors.Is(err, errClient) },
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, breaker.Execute(ctx, func(context.Context) error { return errClient }), errClient)
	}
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreaker_HalfOpenProbes(t *testing.T) {
	breaker, now := newClockedBreaker("purchases", Config{
		Threshold:        1,
		Timeout:          time.Minute,
		SuccessThreshold: 2,
		MaxHalfOpen:      1,
	})
	ctx := context.Background()

	_ = breaker.Execute(ctx, fail)
	opened := breaker.Snapshot().OpenedAt
	assert.False(t, opened.IsZero())

	*now = now.Add(time.Minute)

	// The first call after the timeout is the probe; a second concurrent
	// caller is turned away.
	err := breaker.Execute(ctx, func(context.Context) error {
		assert.Equal(t, StateHalfOpen, breaker.State())
		assert.ErrorIs(t, breaker.Execute(ctx, pass), ErrTooManyRequests)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateHalfOpen, breaker.State())

	require.NoError(t, breaker.Execute(ctx, pass))
	assert.Equal(t, StateClosed, breaker.State())
	assert.True(t, breaker.Snapshot().OpenedAt.IsZero())
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	breaker, now := newClockedBreaker("purchases", Config{Threshold: 3, Timeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = breaker.Execute(ctx, fail)
	}
	*now = now.Add(2 * time.Minute)

	assert.ErrorIs(t, breaker.Execute(ctx, fail), errUpstream)
	assert.Equal(t, StateOpen, breaker.State())
	assert.Equal(t, *now, breaker.Snapshot().OpenedAt)
}

func TestBreaker_ExecuteCancelledIsNotFailure(t *testing.T) {
	breaker, _ := newClockedBreaker("products", Config{Threshold: 1, Timeout: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := breaker.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(Config{Threshold: 1, Timeout: time.Hour}, nil)
	ctx := context.Background()

	products := registry.Get("products")
	auth := registry.Get("auth")

	assert.Same(t, products, registry.Get("products"))
	assert.NotSame(t, products, auth)

	_ = auth.Execute(ctx, fail)
	assert.Equal(t, StateClosed, products.State())

	snapshots := registry.Snapshots()
	require.Len(t, snapshots, 2)
	assert.Equal(t, "auth", snapshots[0].Name)
	assert.Equal(t, StateOpen, snapshots[0].State)
	assert.Equal(t, "products", snapshots[1].Name)
	assert.Equal(t, StateClosed, snapshots[1].State)
}

func TestState_MarshalText(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half_open"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		text, err := tt.state.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(text))
	}
}

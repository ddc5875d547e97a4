package delay

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomNextWithinBounds(t *testing.T) {
	r := NewRandom(3, 5).WithSource(rand.NewPCG(1, 2))

	seen := make(map[time.Duration]int)
	for i := 0; i < 300; i++ {
		d := r.Next()
		require.GreaterOrEqual(t, d, 3*time.Second)
		require.LessOrEqual(t, d, 5*time.Second)
		require.Zero(t, d%time.Second, "delay must be whole seconds")
		seen[d]++
	}

	assert.Len(t, seen, 3)
}

func TestNewRandomSwapsBounds(t *testing.T) {
	r := NewRandom(5, 3)
	assert.Equal(t, 3, r.Min)
	assert.Equal(t, 5, r.Max)
}

func TestRandomEqualBounds(t *testing.T) {
	r := NewRandom(0, 0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, time.Duration(0), r.Next())
	}

	r = NewRandom(2, 2)
	assert.Equal(t, 2*time.Second, r.Next())
}

func TestRandomPauseUsesSleep(t *testing.T) {
	var slept []time.Duration
	r := NewRandom(3, 5).
		WithSource(rand.NewPCG(7, 7)).
		WithSleep(func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		})

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Pause(context.Background()))
	}

	require.Len(t, slept, 5)
	for _, d := range slept {
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)
	}
}

func TestSleep(t *testing.T) {
	t.Run("completes", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, Sleep(context.Background(), 20*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := Sleep(ctx, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("zero duration", func(t *testing.T) {
		assert.NoError(t, Sleep(context.Background(), 0))
	})
}

func TestNone(t *testing.T) {
	var p Pacer = None{}
	assert.NoError(t, p.Pause(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Pause(ctx))
}

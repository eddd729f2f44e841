package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunIsolatesFailures(t *testing.T) {
	pool := NewPool("test", PoolConfig{Workers: 3})
	var calls int32

	errs := pool.Run(context.Background(), 6, func(ctx context.Context, i int) error {
		atomic.AddInt32(&calls, 1)
		switch i {
		case 2:
			return errors.New("boom")
		case 4:
			panic("kaboom")
		}
		return nil
	})

	require.Len(t, errs, 6)
	assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
	for i, err := range errs {
		if i == 2 || i == 4 {
			assert.Error(t, err, "index %d", i)
			continue
		}
		assert.NoError(t, err, "index %d", i)
	}
}

func TestPoolRunEmptyBatch(t *testing.T) {
	pool := NewPool("test", PoolConfig{})
	assert.Empty(t, pool.Run(context.Background(), 0, nil))
	assert.Equal(t, 1, pool.Workers())
}

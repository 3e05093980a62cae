package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 同一个 key 下临界区互斥
func TestLocalLockerMutualExclusion(t *testing.T) {
	locker := NewLocalLocker()

	const workers = 20
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := locker.Acquire(context.Background(), "user:1", "owner")
			require.NoError(t, err)
			defer l.Unlock(context.Background())

			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

// 不同 key 互不阻塞
func TestLocalLockerIndependentKeys(t *testing.T) {
	locker := NewLocalLocker()

	l1, err := locker.Acquire(context.Background(), "user:1", "a")
	require.NoError(t, err)
	defer l1.Unlock(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	l2, err := locker.Acquire(ctx, "user:2", "b")
	require.NoError(t, err)
	l2.Unlock(context.Background())
}

// 锁被占用时 ctx 取消要能退出等待
func TestLocalLockerContextCancel(t *testing.T) {
	locker := NewLocalLocker()

	l, err := locker.Acquire(context.Background(), "user:1", "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "user:1", "b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 释放后可以重新获取
	require.NoError(t, l.Unlock(context.Background()))
	l2, err := locker.Acquire(context.Background(), "user:1", "b")
	require.NoError(t, err)
	l2.Unlock(context.Background())
}

// Unlock 重复调用是安全的
func TestLocalLockUnlockIdempotent(t *testing.T) {
	locker := NewLocalLocker()

	l, err := locker.Acquire(context.Background(), "user:1", "a")
	require.NoError(t, err)
	require.NoError(t, l.Unlock(context.Background()))
	require.NoError(t, l.Unlock(context.Background()))

	l2, err := locker.Acquire(context.Background(), "user:1", "b")
	require.NoError(t, err)
	l2.Unlock(context.Background())
}

func TestTradeLockKey(t *testing.T) {
	assert.Equal(t, "trade:lock:user:42", TradeLockKey(42))
}

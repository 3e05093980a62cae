package lock

import (
	"context"
	"sync"
)

// LocalLocker 进程内的 Locker 实现
// 单实例部署不需要 Redis 也能保证同一用户的操作串行，测试也用它
type LocalLocker struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		sems: make(map[string]chan struct{}),
	}
}

// Acquire 阻塞式获取锁，ctx 取消时放弃等待
func (l *LocalLocker) Acquire(ctx context.Context, key, owner string) (Lock, error) {
	sem := l.sem(key)
	select {
	case sem <- struct{}{}:
		return &localLock{sem: sem}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// sem 每个 key 一个容量为1的信号量
func (l *LocalLocker) sem(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.sems[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.sems[key] = sem
	}
	return sem
}

type localLock struct {
	sem  chan struct{}
	once sync.Once
}

func (l *localLock) Unlock(ctx context.Context) error {
	l.once.Do(func() {
		<-l.sem
	})
	return nil
}

package lock

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// Redis 分布式锁实现
// ============================================================================
//
// 【为什么需要分布式锁？】
//
// 场景：用户A连点两次"卖出"，两笔请求打到不同实例
//
// 如果没有锁：
//   请求1: 查询持仓=5股 -> 卖出5股 -> 持仓=0     OK
//   请求2: 查询持仓=5股 -> 卖出5股 -> 持仓=-5    超卖了！
//
// 加了锁：
//   请求1: 获取锁 -> 查询持仓=5股 -> 卖出5股 -> 释放锁
//   请求2: 等锁... -> 获取锁 -> 查询持仓=0 -> 持仓不足，拒绝
//
// 【Redis 分布式锁原理】
//
// 加锁：SET key value NX EX timeout
//   - NX: 只有 key 不存在时才设置（保证互斥）
//   - EX: 设置过期时间（防止死锁）
//   - value: 锁持有者标识（释放时验证，防止误删别人的锁）
//
// 释放锁：使用 Lua 脚本保证"检查+删除"的原子性
//
// ============================================================================

// RedisLocker 基于 Redis 的 Locker 实现
type RedisLocker struct {
	client        *redis.Client
	expiration    time.Duration // 锁的过期时间
	retryInterval time.Duration // 抢锁失败后的重试间隔
	maxRetries    int           // 最大重试次数
}

func NewRedisLocker(client *redis.Client, expiration, retryInterval time.Duration, maxRetries int) *RedisLocker {
	return &RedisLocker{
		client:        client,
		expiration:    expiration,
		retryInterval: retryInterval,
		maxRetries:    maxRetries,
	}
}

// Acquire 阻塞式获取锁（带重试）
func (l *RedisLocker) Acquire(ctx context.Context, key, owner string) (Lock, error) {
	for i := 0; i < l.maxRetries; i++ {
		// SET key value NX EX timeout
		// NX: 只有 key 不存在时才设置
		// EX: 设置过期时间，防止死锁（持有锁的进程崩溃时，锁会自动释放）
		success, err := l.client.SetNX(ctx, key, owner, l.expiration).Result()
		if err != nil {
			return nil, err
		}
		if success {
			return &redisLock{client: l.client, key: key, owner: owner}, nil
		}
		// 等待一段时间后重试
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryInterval):
			// 继续重试
		}
	}
	return nil, ErrLockFailed
}

type redisLock struct {
	client *redis.Client
	key    string
	owner  string
}

// Unlock 释放锁
//
// 为什么要检查 owner？
//
//	场景：A 获取锁 -> A 处理超时，锁自动过期 -> B 获取锁 -> A 执行完毕，调用 Unlock
//	如果不检查 owner，A 会把 B 的锁删掉！
func (l *redisLock) Unlock(ctx context.Context) error {
	// Lua 脚本：检查 value 是否匹配，匹配则删除
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.owner).Result()
	return err
}

package lock

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrLockFailed = errors.New("获取锁失败")
)

// Lock 已持有的锁，用完必须释放
type Lock interface {
	Unlock(ctx context.Context) error
}

// Locker 按 key 派发互斥锁
//
// 【设计思考】为什么抽象成接口？
// 交易引擎只关心"同一用户的读-校验-写过程必须串行"，
// 不关心锁是 Redis 实现（多实例部署）还是进程内实现（单机/测试）。
// 两种实现都按 key 互斥，不同 key 之间互不阻塞。
type Locker interface {
	// Acquire 阻塞式获取锁，获取失败或 ctx 取消时返回错误
	Acquire(ctx context.Context, key, owner string) (Lock, error)
}

// TradeLockKey 交易锁的 key（按用户维度）
//
// 方案1：全局锁（所有用户共用一把锁）
//   - 实现简单，但用户A下单时用户B也要等，并发度不可接受
//
// 方案2：按用户加锁（每个用户独立一把锁）  <-- 我们的选择
//   - 不同用户可以并发下单
//   - 同一用户不能并发（这正是防止超卖/超扣需要的）
func TradeLockKey(userID int64) string {
	return fmt.Sprintf("trade:lock:user:%d", userID)
}

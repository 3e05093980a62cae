package quote

import (
	"context"
	"strings"
	"sync"
)

// Static 内存行情表，本地联调和测试用
type Static struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewStatic(quotes map[string]Quote) *Static {
	m := make(map[string]Quote, len(quotes))
	for symbol, q := range quotes {
		m[strings.ToUpper(symbol)] = q
	}
	return &Static{quotes: m}
}

func (s *Static) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[strings.ToUpper(symbol)]
	if !ok {
		return nil, ErrSymbolNotFound
	}
	return &q, nil
}

// Set 更新一只股票的价格（测试里模拟价格变动）
func (s *Static) Set(q Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[strings.ToUpper(q.Symbol)] = q
}

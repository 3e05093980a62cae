package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUnique(t *testing.T) {
	s := &Snowflake{workerID: 1}

	const n = 10000
	seen := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		id := s.Generate()
		assert.False(t, seen[id], "重复ID: %d", id)
		seen[id] = true
	}
}

func TestGenerateMonotonic(t *testing.T) {
	s := &Snowflake{workerID: 1}

	prev := s.Generate()
	for i := 0; i < 1000; i++ {
		id := s.Generate()
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestGenerateConcurrentUnique(t *testing.T) {
	s := &Snowflake{workerID: 1}

	const workers = 10
	const perWorker = 1000

	ids := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- s.Generate()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, workers*perWorker)
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestGenerateTradeNo(t *testing.T) {
	no := GenerateTradeNo()
	assert.True(t, strings.HasPrefix(no, "TRD"))
	assert.Len(t, no, 3+14+8)

	assert.NotEqual(t, no, GenerateTradeNo())
}

func TestGenerateEventNo(t *testing.T) {
	no := GenerateEventNo()
	assert.True(t, strings.HasPrefix(no, "EVT"))
	assert.Len(t, no, 3+14+8)
}

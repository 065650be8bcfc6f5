package lock

import (
	"hash/maphash"
	"sync"
)

// Striped 按 key 哈希到固定数量的互斥锁上.
// 同一个 key 总是落在同一把锁, 不同 key 可能共享锁.
type Striped struct {
	seed  maphash.Seed
	locks []sync.Mutex
}

func NewStriped(stripes int) *Striped {
	if stripes <= 0 {
		stripes = 1
	}
	return &Striped{
		seed:  maphash.MakeSeed(),
		locks: make([]sync.Mutex, stripes),
	}
}

// Lock 加锁并返回对应的解锁函数
func (s *Striped) Lock(key string) (unlock func()) {
	mu := &s.locks[maphash.String(s.seed, key)%uint64(len(s.locks))]
	mu.Lock()
	return mu.Unlock
}

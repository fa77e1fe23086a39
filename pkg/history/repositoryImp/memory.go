package repositoryImp

import (
	"sync"

	"agriyield/pkg/history/repository"
)

type memoryKV struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemory() repository.KVStore { return &memoryKV{m: map[string][]byte{}} }

func (r *memoryKV) Get(key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (r *memoryKV) Set(key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = append([]byte(nil), value...)
	return nil
}

func (r *memoryKV) Remove(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
	return nil
}

package kvstore

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore implements Store in process memory. Data does not survive a
// restart; use it for development and tests.
type MemoryStore struct {
	mu     sync.Mutex
	items  map[string]*memoryItem
	queues map[string][][]byte
	stats  Stats
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

type memoryItem struct {
	value  []byte
	expiry time.Time
}

func (i *memoryItem) expired(now time.Time) bool {
	return !i.expiry.IsZero() && now.After(i.expiry)
}

// NewMemoryStore creates a new in-memory store with a background sweeper
func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		items:  make(map[string]*memoryItem),
		queues: make(map[string][][]byte),
		stopCh: make(chan struct{}),
	}

	ms.wg.Add(1)
	go ms.cleanupExpired()

	return ms
}

// Get retrieves a value from the store
func (ms *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, ok := ms.live(key)
	if !ok {
		atomic.AddInt64(&ms.stats.Misses, 1)
		return nil, ErrNotFound
	}

	atomic.AddInt64(&ms.stats.Hits, 1)
	return bytes.Clone(item.value), nil
}

// Set stores a value with a TTL
func (ms *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ms.mu.Lock()
	ms.items[key] = newItem(value, ttl)
	ms.mu.Unlock()

	atomic.AddInt64(&ms.stats.Sets, 1)
	return nil
}

// SetNX stores a value only if the key is absent or expired
func (ms *MemoryStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.live(key); ok {
		return false, nil
	}
	ms.items[key] = newItem(value, ttl)
	atomic.AddInt64(&ms.stats.Sets, 1)
	return true, nil
}

// Delete removes a key
func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	if _, ok := ms.items[key]; ok {
		delete(ms.items, key)
		atomic.AddInt64(&ms.stats.Deletes, 1)
	}
	ms.mu.Unlock()
	return nil
}

// DeleteIfEquals removes a key only while it holds value
func (ms *MemoryStore) DeleteIfEquals(ctx context.Context, key string, value []byte) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, ok := ms.live(key)
	if !ok || !bytes.Equal(item.value, value) {
		return false, nil
	}
	delete(ms.items, key)
	atomic.AddInt64(&ms.stats.Deletes, 1)
	return true, nil
}

// Push appends to a queue
func (ms *MemoryStore) Push(ctx context.Context, queue string, value []byte) error {
	ms.mu.Lock()
	ms.queues[queue] = append(ms.queues[queue], bytes.Clone(value))
	ms.mu.Unlock()
	return nil
}

// Pop removes the head of a queue
func (ms *MemoryStore) Pop(ctx context.Context, queue string) ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	q := ms.queues[queue]
	if len(q) == 0 {
		return nil, ErrNotFound
	}
	head := q[0]
	ms.queues[queue] = q[1:]
	return head, nil
}

// Ping always succeeds for the in-memory store
func (ms *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Stats returns store statistics
func (ms *MemoryStore) Stats() Stats {
	ms.mu.Lock()
	keys := int64(len(ms.items))
	ms.mu.Unlock()

	return Stats{
		Hits:      atomic.LoadInt64(&ms.stats.Hits),
		Misses:    atomic.LoadInt64(&ms.stats.Misses),
		Sets:      atomic.LoadInt64(&ms.stats.Sets),
		Deletes:   atomic.LoadInt64(&ms.stats.Deletes),
		Evictions: atomic.LoadInt64(&ms.stats.Evictions),
		Keys:      keys,
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (ms *MemoryStore) Close() error {
	ms.once.Do(func() {
		close(ms.stopCh)
	})
	ms.wg.Wait()
	return nil
}

// live returns an unexpired item, evicting it if it has expired. Callers hold mu.
func (ms *MemoryStore) live(key string) (*memoryItem, bool) {
	item, ok := ms.items[key]
	if !ok {
		return nil, false
	}
	if item.expired(time.Now()) {
		delete(ms.items, key)
		atomic.AddInt64(&ms.stats.Evictions, 1)
		return nil, false
	}
	return item, true
}

// cleanupExpired removes expired items periodically
func (ms *MemoryStore) cleanupExpired() {
	defer ms.wg.Done()
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.removeExpired()
		case <-ms.stopCh:
			return
		}
	}
}

func (ms *MemoryStore) removeExpired() {
	now := time.Now()
	ms.mu.Lock()
	for key, item := range ms.items {
		if item.expired(now) {
			delete(ms.items, key)
			atomic.AddInt64(&ms.stats.Evictions, 1)
		}
	}
	ms.mu.Unlock()
}

func newItem(value []byte, ttl time.Duration) *memoryItem {
	item := &memoryItem{value: bytes.Clone(value)}
	if ttl > 0 {
		item.expiry = time.Now().Add(ttl)
	}
	return item
}

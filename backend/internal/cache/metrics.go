package cache

import "sync"

// CacheMetrics counts cache activity for the stats endpoints.
type CacheMetrics struct {
	mu      sync.Mutex
	hits    int64
	misses  int64
	sets    int64
	deletes int64
	errors  int64
}

type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Sets    int64 `json:"sets"`
	Deletes int64 `json:"deletes"`
	Errors  int64 `json:"errors"`
}

func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{}
}

func (m *CacheMetrics) RecordHit() {
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
}

func (m *CacheMetrics) RecordMiss() {
	m.mu.Lock()
	m.misses++
	m.mu.Unlock()
}

func (m *CacheMetrics) RecordSet() {
	m.mu.Lock()
	m.sets++
	m.mu.Unlock()
}

func (m *CacheMetrics) RecordDelete() {
	m.mu.Lock()
	m.deletes++
	m.mu.Unlock()
}

func (m *CacheMetrics) RecordError() {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
}

func (m *CacheMetrics) GetStats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CacheStats{
		Hits:    m.hits,
		Misses:  m.misses,
		Sets:    m.sets,
		Deletes: m.deletes,
		Errors:  m.errors,
	}
}

// HitRate returns the hit percentage over all lookups, 0 when idle.
func (m *CacheMetrics) HitRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := m.hits + m.misses
	if total == 0 {
		return 0.0
	}
	return float64(m.hits) / float64(total) * 100.0
}

func (m *CacheMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits, m.misses, m.sets, m.deletes, m.errors = 0, 0, 0, 0, 0
}

package domain

import "time"

// CacheEntry is one fetched payload and the moment its fetch completed.
// Entries are replaced, never mutated.
type CacheEntry[T any] struct {
	Data      T      `json:"data"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	Seq       uint64 `json:"seq"`
}

// NewCacheEntry stamps data with now
func NewCacheEntry[T any](data T, now time.Time, seq uint64) *CacheEntry[T] {
	return &CacheEntry[T]{Data: data, Timestamp: now.UnixMilli(), Seq: seq}
}

// Fresh reports whether the entry is younger than ttl at now
func (e *CacheEntry[T]) Fresh(now time.Time, ttl time.Duration) bool {
	if e == nil {
		return false
	}
	return now.UnixMilli()-e.Timestamp < ttl.Milliseconds()
}

// Sequenced is implemented by every CacheEntry instantiation
type Sequenced interface {
	Sequence() uint64
}

// Sequence returns the request sequence number that produced the entry
func (e *CacheEntry[T]) Sequence() uint64 {
	if e == nil {
		return 0
	}
	return e.Seq
}

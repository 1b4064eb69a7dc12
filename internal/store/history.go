// Package store keeps a bounded in-memory history of verified like states.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// LikeHistory remembers the last verified liked state per track. It is used for
// display only: the remote library stays the source of truth.
//
// Now-playing lookups for tracks never recorded are answered by the bloom
// filter alone. The filter only grows, so evicted tracks pass it and miss in
// the LRU.
type LikeHistory struct {
	bloomMutex sync.RWMutex
	bloom      *bloom.BloomFilter
	lru        *lru.Cache[string, bool]
}

// NewLikeHistory creates a history holding at most maxTracks entries.
func NewLikeHistory(maxTracks int, bloomFalsePositiveRate float64) *LikeHistory {
	if maxTracks < 1 {
		maxTracks = 1
	}
	lruCache, _ := lru.New[string, bool](maxTracks)

	return &LikeHistory{
		bloom: bloom.NewWithEstimates(uint(maxTracks), bloomFalsePositiveRate),
		lru:   lruCache,
	}
}

// Record stores the verified liked state of trackID, evicting the least
// recently used entry when full.
func (h *LikeHistory) Record(trackID string, liked bool) {
	if trackID == "" {
		return
	}

	h.bloomMutex.Lock()
	h.bloom.AddString(trackID)
	h.bloomMutex.Unlock()

	h.lru.Add(trackID, liked)
}

// Lookup returns the recorded state of trackID and whether one is known.
func (h *LikeHistory) Lookup(trackID string) (liked, known bool) {
	if !h.mightContain(trackID) {
		return false, false
	}
	return h.lru.Peek(trackID)
}

// mightContain reports whether trackID was ever recorded, with false positives.
func (h *LikeHistory) mightContain(trackID string) bool {
	h.bloomMutex.RLock()
	defer h.bloomMutex.RUnlock()
	return h.bloom.TestString(trackID)
}

// Size returns the number of tracks currently stored.
func (h *LikeHistory) Size() int {
	return h.lru.Len()
}

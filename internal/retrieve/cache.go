package retrieve

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultFrameCacheSize is the default decoded-frame LRU capacity.
const DefaultFrameCacheSize = 50

// frameKey identifies one decoded frame. The key is the pair
// (video_path, frame_number), not the frame number alone, so the same
// retriever can serve multiple artifacts without collisions.
type frameKey struct {
	videoPath   string
	frameNumber int
}

// CacheStats exposes the cache's size and capacity for observability.
type CacheStats struct {
	Size     int
	Capacity int
}

// frameCache is a bounded LRU from (video_path, frame_number) to decoded
// chunk text. Decode failures are never inserted, so a transiently
// corrupted frame does not poison future queries.
type frameCache struct {
	lru      *lru.Cache[frameKey, string]
	capacity int
}

func newFrameCache(capacity int) *frameCache {
	if capacity <= 0 {
		capacity = DefaultFrameCacheSize
	}
	c, _ := lru.New[frameKey, string](capacity)
	return &frameCache{lru: c, capacity: capacity}
}

func (c *frameCache) get(videoPath string, frameNumber int) (string, bool) {
	return c.lru.Get(frameKey{videoPath: videoPath, frameNumber: frameNumber})
}

func (c *frameCache) add(videoPath string, frameNumber int, text string) {
	c.lru.Add(frameKey{videoPath: videoPath, frameNumber: frameNumber}, text)
}

func (c *frameCache) clear() {
	c.lru.Purge()
}

func (c *frameCache) stats() CacheStats {
	return CacheStats{Size: c.lru.Len(), Capacity: c.capacity}
}

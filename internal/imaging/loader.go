package imaging

import (
	"crypto/sha256"
	"encoding/hex"
	"image"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DecodeCache keeps decoded rasters for a while so that analysing and then
// redacting the same upload decodes it once.
//
// Entries are keyed by the SHA-256 of the encoded bytes, never by file name,
// so two documents can only share an entry when their bytes are identical.
// Only pixels are cached; detections always travel with the request.
//
// # Memory Management
//
// Entries expire after the TTL and the cache holds at most capacity images.
// Call Start in a goroutine to purge expired entries in the background and
// Stop when done.
type DecodeCache struct {
	cache *ttlcache.Cache[string, image.Image]
}

// NewDecodeCache creates a cache with the given TTL and capacity. A zero
// capacity means unbounded.
func NewDecodeCache(ttl time.Duration, capacity uint64) *DecodeCache {
	opts := []ttlcache.Option[string, image.Image]{
		ttlcache.WithTTL[string, image.Image](ttl),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, image.Image](capacity))
	}
	return &DecodeCache{cache: ttlcache.New[string, image.Image](opts...)}
}

// Decode returns the cached image for data, decoding and caching it on a miss.
//
// Returns:
//   - image.Image: The orientation-corrected image. Shared; do not modify.
//   - error: Non-nil if data cannot be decoded. Failures are not cached.
func (c *DecodeCache) Decode(data []byte) (image.Image, error) {
	key := contentKey(data)
	if item := c.cache.Get(key); item != nil {
		return item.Value(), nil
	}
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, img, ttlcache.DefaultTTL)
	return img, nil
}

// Len returns the number of cached images.
func (c *DecodeCache) Len() int {
	return c.cache.Len()
}

// Clear removes every entry.
func (c *DecodeCache) Clear() {
	c.cache.DeleteAll()
}

// Start purges expired entries until Stop is called. It blocks.
func (c *DecodeCache) Start() {
	c.cache.Start()
}

// Stop ends a running Start.
func (c *DecodeCache) Stop() {
	c.cache.Stop()
}

func contentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

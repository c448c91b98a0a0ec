package providers

import (
	"github.com/coocood/freecache"
	"translit/internal/structures"
	"unsafe"
)

// CacheProviderInterface is the byte cache behind conditional GETs. Keys
// are request paths, values are encoded response entries.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
}

type CacheProvider struct {
	cache      *freecache.Cache
	compressor CompressorInterface
	logger     Logger
}

func NewCacheProvider(conf *structures.Config, logger Logger, compressor CompressorInterface) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Response cache disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Cache.Size * 1024 * 1024
	logger.Infof(TypeApp, "Response cache initialized: %dMB", conf.Cache.Size)

	return &CacheProvider{
		cache:      freecache.NewCache(sizeBytes),
		compressor: compressor,
		logger:     logger,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// Safe when the result is only read (not modified), which is the case
// for freecache, which copies keys internally.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	raw, err := c.compressor.Decompress(val)
	if err != nil {
		c.logger.Warnf(TypeQuery, "Dropping unreadable cache entry %s: %s", key, err)
		c.cache.Del(unsafeStringToBytes(key))
		return nil, false
	}
	return raw, true
}

// Set stores value without expiry; entries leave only by eviction or Del.
func (c *CacheProvider) Set(key string, value []byte) {
	packed, err := c.compressor.Compress(value)
	if err != nil {
		c.logger.Warnf(TypeQuery, "Skipping cache entry %s: %s", key, err)
		return
	}
	_ = c.cache.Set(unsafeStringToBytes(key), packed, 0)
}

func (c *CacheProvider) Del(key string) {
	c.cache.Del(unsafeStringToBytes(key))
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}
func (n *noopCache) Del(_ string)                {}

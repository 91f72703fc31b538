package storage

import "github.com/yaaawww/bustub-private/logger"

// Config bundles the knobs Engine needs to open a database file: pool
// sizing, the replacer's history length, and the per-tree fanout. The
// functional-options pattern below is grounded on the fredb package's
// DBOptions/DBOption pair.
type Config struct {
	poolSize    int
	replacerK   int
	leafMax     int
	internalMax int
	dataFile    string
	inMemory    bool
	log         logger.Logger
}

// DefaultConfig returns a configuration suitable for a small database
// held in memory (no data file): a modest buffer pool, LRU-2
// replacement, and page-sized
// fanout bounds comfortably under a 4 KiB page.
func DefaultConfig() Config {
	return Config{
		poolSize:    256,
		replacerK:   2,
		leafMax:     128,
		internalMax: 128,
		dataFile:    "",
		inMemory:    true,
		log:         logger.NopLogger,
	}
}

// Option configures a Config using the functional options pattern.
type Option func(*Config)

// WithPoolSize sets the number of frames the buffer pool manages.
func WithPoolSize(frames int) Option {
	return func(c *Config) { c.poolSize = frames }
}

// WithReplacerK records an LRU-K history length in the Config. Open
// does not pass it on: the buffer pool's replacer always uses K = 2.
func WithReplacerK(k int) Option {
	return func(c *Config) { c.replacerK = k }
}

// WithLeafMax sets the maximum entries a leaf page may hold before it
// must split.
func WithLeafMax(n int) Option {
	return func(c *Config) { c.leafMax = n }
}

// WithInternalMax sets the maximum keys (one fewer than its children)
// an internal page may hold before it must split.
func WithInternalMax(n int) Option {
	return func(c *Config) { c.internalMax = n }
}

// WithDataFile points the engine at an mmap-backed file on disk,
// rather than the default in-memory disk manager. Intended for tests
// and embedding, not a general-purpose persistence guarantee (spec
// §1, Non-goals: "no crash recovery / WAL").
func WithDataFile(path string) Option {
	return func(c *Config) {
		c.dataFile = path
		c.inMemory = false
	}
}

// WithLogger overrides the engine's logger. Defaults to logger.NopLogger.
func WithLogger(log logger.Logger) Option {
	return func(c *Config) { c.log = log }
}

func buildConfig(opts []Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

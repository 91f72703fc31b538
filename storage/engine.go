package storage

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/yaaawww/bustub-private/btree"
	"github.com/yaaawww/bustub-private/bufferpool"
	"github.com/yaaawww/bustub-private/logger"
)

// Engine is the top-level handle on a database: one buffer pool over
// one disk manager, and a registry of named clustered indexes opened
// against it. It is the collaborator spec §6 calls out as owning "the
// buffer pool and disk manager for their process lifetime" (SPEC_FULL,
// Global state), grounded on how fredb.DB wires its own pager, cache,
// and WAL together behind a single handle.
type Engine struct {
	mu     sync.Mutex
	pool   *bufferpool.BufferPool
	disk   bufferpool.DiskManager
	cfg    Config
	trees  map[string]*btree.Tree
	log    logger.Logger
}

// Open creates or attaches to a database according to opts. With no
// WithDataFile option the engine runs entirely in memory (useful for
// tests and short-lived embedding); otherwise it mmaps the given file.
func Open(opts ...Option) (*Engine, error) {
	cfg := buildConfig(opts)

	var disk bufferpool.DiskManager
	var err error
	if cfg.inMemory {
		disk = bufferpool.NewMemDiskManager()
	} else {
		disk, err = bufferpool.OpenMMapDiskManager(cfg.dataFile)
		if err != nil {
			return nil, errors.Wrapf(err, "opening data file %q", cfg.dataFile)
		}
	}

	pool := bufferpool.NewBufferPool(cfg.poolSize, disk, cfg.log)

	return &Engine{
		pool:  pool,
		disk:  disk,
		cfg:   cfg,
		trees: make(map[string]*btree.Tree),
		log:   cfg.log,
	}, nil
}

// Index returns the named clustered index, opening (and, on first use,
// creating) it against the engine's shared buffer pool if it hasn't
// been opened yet this session. cmp orders the index's keys; pass nil
// to use btree.DefaultComparator.
func (e *Engine) Index(name string, cmp btree.Comparator) (*btree.Tree, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tree, ok := e.trees[name]; ok {
		return tree, nil
	}

	tree, err := btree.Open(name, e.pool, cmp, e.cfg.leafMax, e.cfg.internalMax, e.log)
	if err != nil {
		return nil, errors.Wrapf(err, "opening index %q", name)
	}
	e.trees[name] = tree
	return tree, nil
}

// Stats reports current buffer pool occupancy (SPEC_FULL, supplemented
// diagnostics).
func (e *Engine) Stats() bufferpool.Stats {
	return e.pool.Stats()
}

// Flush writes every dirty resident page to disk without closing the
// engine.
func (e *Engine) Flush() error {
	return e.pool.FlushAllPages()
}

// Close flushes all dirty pages and releases the underlying disk
// manager. The engine must not be used afterward (spec §9, "Global
// state": teardown is flush-then-close, in that order, so a reader
// opening the file immediately after Close sees a consistent image).
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.pool.FlushAllPages(); err != nil {
		return errors.Wrap(err, "flushing pages on close")
	}
	return e.disk.Close()
}

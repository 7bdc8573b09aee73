package utils

import (
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// DiskCache is a small persistent key/value cache on top of badger, with an
// in-memory read-through layer.
type DiskCache struct {
	db    *badger.DB
	cache sync.Map
}

// OpenDiskCache opens (or creates) a cache at path. An empty path keeps the
// cache in memory only.
func OpenDiskCache(path string) (*DiskCache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	// Decrease logging verbosity
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &DiskCache{db: db}, nil
}

func (c *DiskCache) Close() error {
	return c.db.Close()
}

func (c *DiskCache) Set(key string, value []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err == nil {
		c.cache.Store(key, value)
	}
	return err
}

// BatchSet writes many entries in one batch.
func (c *DiskCache) BatchSet(entries map[string][]byte) error {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for k, v := range entries {
		if err := wb.Set([]byte(k), v); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}
	for k, v := range entries {
		c.cache.Store(k, v)
	}
	return nil
}

// Get returns the value for key, or nil if it is absent.
func (c *DiskCache) Get(key string) ([]byte, error) {
	if v, ok := c.cache.Load(key); ok {
		return v.([]byte), nil
	}
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err == nil {
		c.cache.Store(key, val)
	}
	return val, err
}

// ForEachPrefix calls fn for every entry whose key starts with prefix.
func (c *DiskCache) ForEachPrefix(prefix string, fn func(k []byte, v []byte) error) error {
	return c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			k := item.Key()
			err := item.Value(func(v []byte) error {
				return fn(k, v)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

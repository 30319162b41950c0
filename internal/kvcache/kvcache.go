// Package kvcache provides a read-mostly, in-process cache for the Pact
// registry and authority session snapshots, backed by
// github.com/cometbft/cometbft-db. Adapted from pkg/kvdb/adapter.go, which
// wraps the same dbm.DB interface to back the teacher's LedgerStore; here
// the cache explicitly never backs the ledger's entries table — Postgres
// under SERIALIZABLE isolation remains the sole correctness mechanism for
// append (spec.md §9), this is purely the "in-process optimisation" the
// spec allows for read-mostly global state.
package kvcache

import (
	dbm "github.com/cometbft/cometbft-db"
)

// Cache wraps a CometBFT dbm.DB for byte-keyed snapshot storage.
type Cache struct {
	db dbm.DB
}

// Open opens (creating if absent) a GoLevelDB-backed cache at dir/name.
// An empty dir opens an in-memory-only database, useful for tests.
func Open(name, dir string) (*Cache, error) {
	var db dbm.DB
	var err error
	if dir == "" {
		db, err = dbm.NewDB(name, dbm.MemDBBackend, dir)
	} else {
		db, err = dbm.NewDB(name, dbm.GoLevelDBBackend, dir)
	}
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Get returns the cached value for key, or nil if absent. A nil, nil
// result means "not present" by convention, matching the KVAdapter this
// is grounded on.
func (c *Cache) Get(key []byte) ([]byte, error) {
	if c.db == nil {
		return nil, nil
	}
	return c.db.Get(key)
}

// Set stores key/value durably (SetSync), used when refreshing the cache
// after a pact registration or session resolution.
func (c *Cache) Set(key, value []byte) error {
	if c.db == nil {
		return nil
	}
	return c.db.SetSync(key, value)
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

var (
	pactKeyPrefix    = []byte("pact/")
	sessionKeyPrefix = []byte("session/")
)

// PactKey builds the cache key for a pact_id.
func PactKey(pactID string) []byte {
	return append(append([]byte{}, pactKeyPrefix...), pactID...)
}

// SessionKey builds the cache key for a session id.
func SessionKey(sid string) []byte {
	return append(append([]byte{}, sessionKeyPrefix...), sid...)
}

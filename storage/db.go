package storage

import (
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	bolt "go.etcd.io/bbolt"
)

// Database is a generic interface for a key-value store. The ledger can run
// against any backend (in-memory for tests, persistent for deployments).
//
// Write applies all staged puts as a single atomic unit: either every entry
// in the batch becomes visible or none of them do. Multi-account ledger
// mutations rely on this to avoid partially applied transfers.
type Database interface {
	Get(key []byte) ([]byte, bool, error)
	Put(key []byte, value []byte) error
	Write(batch *Batch) error
	Close() error
}

type kv struct {
	key   []byte
	value []byte
}

// Batch stages a set of puts for an atomic write.
type Batch struct {
	puts []kv
}

// Put stages a key-value pair. Later puts for the same key win.
func (b *Batch) Put(key, value []byte) {
	b.puts = append(b.puts, kv{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	})
}

// Len returns the number of staged puts.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.puts)
}

// --- In-Memory DB (for testing) ---

type MemDB struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemDB() *MemDB {
	return &MemDB{
		data: make(map[string][]byte),
	}
}

func (db *MemDB) Get(key []byte) ([]byte, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, ok := db.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (db *MemDB) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (db *MemDB) Write(batch *Batch) error {
	if batch == nil {
		return nil
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, entry := range batch.puts {
		db.data[string(entry.key)] = append([]byte(nil), entry.value...)
	}
	return nil
}

// Close satisfies the Database interface for MemDB.
func (db *MemDB) Close() error {
	return nil
}

// --- Persistent DB (LevelDB) ---

// LevelDB is a persistent key-value store backed by goleveldb.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open leveldb at %s: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

func (ldb *LevelDB) Get(key []byte) ([]byte, bool, error) {
	value, err := ldb.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (ldb *LevelDB) Put(key []byte, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

func (ldb *LevelDB) Write(batch *Batch) error {
	if batch == nil {
		return nil
	}
	lb := new(leveldb.Batch)
	for _, entry := range batch.puts {
		lb.Put(entry.key, entry.value)
	}
	return ldb.db.Write(lb, nil)
}

func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

// --- Persistent DB (Bolt) ---

var boltBucket = []byte("state")

// BoltDB is a persistent key-value store backed by bbolt. Each Write runs in
// a single update transaction.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB creates or opens a bbolt database file at the specified path.
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open bolt at %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create bucket: %w", err)
	}
	return &BoltDB{db: db}, nil
}

func (bdb *BoltDB) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	err := bdb.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(boltBucket).Get(key)
		if raw != nil {
			value = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if value == nil {
		return nil, false, nil
	}
	return value, true, nil
}

func (bdb *BoltDB) Put(key []byte, value []byte) error {
	return bdb.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(key, value)
	})
}

func (bdb *BoltDB) Write(batch *Batch) error {
	if batch == nil {
		return nil
	}
	return bdb.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		for _, entry := range batch.puts {
			if err := bucket.Put(entry.key, entry.value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (bdb *BoltDB) Close() error {
	return bdb.db.Close()
}

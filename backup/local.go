// ABOUTME: Badger-backed backup store on the local disk
// ABOUTME: Keeps snapshots outside the SQLite file for quick local restores
package backup

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v3"
)

type badgerKV struct {
	db *badger.DB
}

func (b *badgerKV) Get(key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

func (b *badgerKV) Set(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *badgerKV) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *badgerKV) KeysWithPrefix(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, bytes.Clone(it.Item().Key()))
		}
		return nil
	})
	return keys, err
}

// OpenLocalStore opens (or creates) a Badger backup store in dir.
func OpenLocalStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open local backup store: %w", err)
	}
	return newLocalStore(db), nil
}

// OpenMemoryStore is a Badger store that lives only in memory.
func OpenMemoryStore() (Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory backup store: %w", err)
	}
	return newLocalStore(db), nil
}

func newLocalStore(db *badger.DB) Store {
	return &kvStore{name: "local", kv: &badgerKV{db: db}, close: db.Close, now: time.Now}
}

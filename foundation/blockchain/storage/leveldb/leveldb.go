// Package leveldb implements the ability to read and write the ledger
// documents to a LevelDB database. Each document is a key prefix and every
// write replaces the prefix with one synced batch.
package leveldb

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Set of key prefixes used inside the database.
const (
	chainPrefix   = "chain:"
	usersPrefix   = "user:"
	pendingPrefix = "pending:"
)

// LevelDB represents the serialization implementation for reading and
// storing the ledger documents in LevelDB. This implements the
// database.Serializer interface.
type LevelDB struct {
	db *leveldb.DB
}

// New opens or creates the LevelDB database inside the specified directory.
func New(dbPath string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(filepath.Join(dbPath, "ledger.ldb"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &LevelDB{db: db}, nil
}

// Close releases the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// ReadChain reads the blocks in index order.
func (l *LevelDB) ReadChain() ([]database.Block, error) {
	var blocks []database.Block

	f := func(_ []byte, v []byte) error {
		var block database.Block
		if err := json.Unmarshal(v, &block); err != nil {
			return err
		}
		blocks = append(blocks, block)
		return nil
	}

	if err := l.forEach(chainPrefix, f); err != nil {
		return nil, err
	}

	return blocks, nil
}

// WriteChain replaces the stored chain. Blocks are keyed by position so
// the stored order is the order written, whatever the block index says.
func (l *LevelDB) WriteChain(blocks []database.Block) error {
	kvs := make(map[string][]byte, len(blocks))
	for i, block := range blocks {
		data, err := json.Marshal(block)
		if err != nil {
			return err
		}
		kvs[seqKey(chainPrefix, uint64(i))] = data
	}

	return l.replace(chainPrefix, kvs)
}

// ReadUsers reads all the stored accounts.
func (l *LevelDB) ReadUsers() (map[string]database.AccountData, error) {
	users := make(map[string]database.AccountData)

	f := func(k []byte, v []byte) error {
		var data database.AccountData
		if err := json.Unmarshal(v, &data); err != nil {
			return err
		}
		users[string(k[len(usersPrefix):])] = data
		return nil
	}

	if err := l.forEach(usersPrefix, f); err != nil {
		return nil, err
	}

	return users, nil
}

// WriteUsers replaces the stored accounts.
func (l *LevelDB) WriteUsers(users map[string]database.AccountData) error {
	kvs := make(map[string][]byte, len(users))
	for username, data := range users {
		value, err := json.Marshal(data)
		if err != nil {
			return err
		}
		kvs[usersPrefix+username] = value
	}

	return l.replace(usersPrefix, kvs)
}

// ReadPending reads the pending transactions in the order they were added.
func (l *LevelDB) ReadPending() ([]database.Tx, error) {
	var txs []database.Tx

	f := func(_ []byte, v []byte) error {
		var tx database.Tx
		if err := json.Unmarshal(v, &tx); err != nil {
			return err
		}
		txs = append(txs, tx)
		return nil
	}

	if err := l.forEach(pendingPrefix, f); err != nil {
		return nil, err
	}

	return txs, nil
}

// WritePending replaces the pending transactions.
func (l *LevelDB) WritePending(txs []database.Tx) error {
	kvs := make(map[string][]byte, len(txs))
	for i, tx := range txs {
		data, err := json.Marshal(tx)
		if err != nil {
			return err
		}
		kvs[seqKey(pendingPrefix, uint64(i))] = data
	}

	return l.replace(pendingPrefix, kvs)
}

// =============================================================================

// replace deletes every key under the prefix and writes the new content in
// a single synced batch.
func (l *LevelDB) replace(prefix string, kvs map[string][]byte) error {
	batch := new(leveldb.Batch)

	iter := l.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}

	for k, v := range kvs {
		batch.Put([]byte(k), v)
	}

	return l.db.Write(batch, &opt.WriteOptions{Sync: true})
}

// forEach walks the keys under the prefix in key order.
func (l *LevelDB) forEach(prefix string, f func(k []byte, v []byte) error) error {
	iter := l.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	for iter.Next() {
		if err := f(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}

	return iter.Error()
}

// seqKey forms a key that sorts in numeric order.
func seqKey(prefix string, n uint64) string {
	return fmt.Sprintf("%s%020d", prefix, n)
}

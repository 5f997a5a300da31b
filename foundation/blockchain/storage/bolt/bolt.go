// Package bolt implements the ability to read and write the ledger documents
// to a bbolt database file. Each document lives in its own bucket and every
// write replaces the bucket inside a single transaction.
package bolt

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	bolt "go.etcd.io/bbolt"
)

// Set of bucket names used inside the database file.
var (
	chainBucket   = []byte("chain")
	usersBucket   = []byte("users")
	pendingBucket = []byte("pending")
)

// Bolt represents the serialization implementation for reading and storing
// the ledger documents in a bbolt file. This implements the
// database.Serializer interface.
type Bolt struct {
	db *bolt.DB
}

// New opens or creates the bbolt file inside the specified directory.
func New(dbPath string) (*Bolt, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(dbPath, "ledger.db"), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	return &Bolt{db: db}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// ReadChain reads the blocks in index order.
func (b *Bolt) ReadChain() ([]database.Block, error) {
	var blocks []database.Block

	f := func(_ []byte, v []byte) error {
		var block database.Block
		if err := json.Unmarshal(v, &block); err != nil {
			return err
		}
		blocks = append(blocks, block)
		return nil
	}

	if err := b.forEach(chainBucket, f); err != nil {
		return nil, err
	}

	return blocks, nil
}

// WriteChain replaces the stored chain. Blocks are keyed by position so
// the stored order is the order written, whatever the block index says.
func (b *Bolt) WriteChain(blocks []database.Block) error {
	kvs := make([]kv, len(blocks))
	for i, block := range blocks {
		data, err := json.Marshal(block)
		if err != nil {
			return err
		}
		kvs[i] = kv{key: seqKey(uint64(i)), value: data}
	}

	return b.replace(chainBucket, kvs)
}

// ReadUsers reads all the stored accounts.
func (b *Bolt) ReadUsers() (map[string]database.AccountData, error) {
	users := make(map[string]database.AccountData)

	f := func(k []byte, v []byte) error {
		var data database.AccountData
		if err := json.Unmarshal(v, &data); err != nil {
			return err
		}
		users[string(k)] = data
		return nil
	}

	if err := b.forEach(usersBucket, f); err != nil {
		return nil, err
	}

	return users, nil
}

// WriteUsers replaces the stored accounts.
func (b *Bolt) WriteUsers(users map[string]database.AccountData) error {
	kvs := make([]kv, 0, len(users))
	for username, data := range users {
		value, err := json.Marshal(data)
		if err != nil {
			return err
		}
		kvs = append(kvs, kv{key: []byte(username), value: value})
	}

	return b.replace(usersBucket, kvs)
}

// ReadPending reads the pending transactions in the order they were added.
func (b *Bolt) ReadPending() ([]database.Tx, error) {
	var txs []database.Tx

	f := func(_ []byte, v []byte) error {
		var tx database.Tx
		if err := json.Unmarshal(v, &tx); err != nil {
			return err
		}
		txs = append(txs, tx)
		return nil
	}

	if err := b.forEach(pendingBucket, f); err != nil {
		return nil, err
	}

	return txs, nil
}

// WritePending replaces the pending transactions.
func (b *Bolt) WritePending(txs []database.Tx) error {
	kvs := make([]kv, len(txs))
	for i, tx := range txs {
		data, err := json.Marshal(tx)
		if err != nil {
			return err
		}
		kvs[i] = kv{key: seqKey(uint64(i)), value: data}
	}

	return b.replace(pendingBucket, kvs)
}

// =============================================================================

type kv struct {
	key   []byte
	value []byte
}

// replace drops the bucket and writes the new content in one transaction.
func (b *Bolt) replace(bucket []byte, kvs []kv) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucket) != nil {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
		}

		bkt, err := tx.CreateBucket(bucket)
		if err != nil {
			return err
		}

		for _, kv := range kvs {
			if err := bkt.Put(kv.key, kv.value); err != nil {
				return err
			}
		}

		return nil
	})
}

// forEach walks the bucket in key order. A missing bucket is empty.
func (b *Bolt) forEach(bucket []byte, f func(k []byte, v []byte) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)
		if bkt == nil {
			return nil
		}

		return bkt.ForEach(f)
	})
}

// seqKey encodes the number so keys sort in numeric order.
func seqKey(n uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, n)
	return key
}

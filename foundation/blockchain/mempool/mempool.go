// Package mempool maintains the transactions that have been applied to the
// ledger but not yet sealed into a block.
package mempool

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
)

// Mempool represents the ordered list of pending transactions. The order is
// the order the transactions were applied, which is the order they are
// sealed in.
type Mempool struct {
	mu         sync.RWMutex
	serializer database.PendingSerializer
	pool       []database.Tx
}

// New constructs a mempool from the pending document.
func New(serializer database.PendingSerializer) (*Mempool, error) {
	pool, err := serializer.ReadPending()
	if err != nil {
		return nil, fmt.Errorf("reading pending: %w", err)
	}

	mp := Mempool{
		serializer: serializer,
		pool:       pool,
	}

	return &mp, nil
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Copy returns a copy of the pending transactions in order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return copyTxs(mp.pool)
}

// With returns the pending transactions followed by the specified ones
// without changing the pool.
func (mp *Mempool) With(txs ...database.Tx) []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	pool := make([]database.Tx, 0, len(mp.pool)+len(txs))
	pool = append(pool, mp.pool...)
	pool = append(pool, txs...)

	return pool
}

// Persist writes the specified pool to storage without installing it.
func (mp *Mempool) Persist(pool []database.Tx) error {
	return mp.write(pool)
}

// Replace installs the specified pool.
func (mp *Mempool) Replace(pool []database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = copyTxs(pool)
}

// =============================================================================

func (mp *Mempool) write(pool []database.Tx) error {
	if pool == nil {
		pool = []database.Tx{}
	}

	if err := mp.serializer.WritePending(pool); err != nil {
		return fmt.Errorf("writing pending: %w: %w", database.ErrPersistence, err)
	}

	return nil
}

func copyTxs(txs []database.Tx) []database.Tx {
	out := make([]database.Tx, len(txs))
	copy(out, txs)
	return out
}

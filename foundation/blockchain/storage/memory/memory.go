// Package memory implements the ability to read and write the ledger
// documents to memory. It is used by tests and for running a throw away node.
package memory

import (
	"sync"

	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
)

// Set of document names that can be made to fail.
const (
	DocChain   = "chain"
	DocUsers   = "users"
	DocPending = "pending"
)

// Memory represents the serialization implementation for reading and storing
// the ledger documents in memory. Values are copied on the way in and out so
// callers never share backing arrays with the store. This implements the
// database.Serializer interface.
type Memory struct {
	mu       sync.RWMutex
	blocks   []database.Block
	users    map[string]database.AccountData
	pending  []database.Tx
	failures map[string]error
	writes   map[string]int
	hasChain bool
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{
		failures: make(map[string]error),
		writes:   make(map[string]int),
	}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// SetWriteError makes every write of the named document fail with the
// specified error. A nil error clears the failure.
func (m *Memory) SetWriteError(doc string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failures, doc)
		return
	}
	m.failures[doc] = err
}

// Writes returns the number of successful writes of the named document.
func (m *Memory) Writes(doc string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.writes[doc]
}

// ReadChain returns a copy of the stored chain.
func (m *Memory) ReadChain() ([]database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.hasChain {
		return nil, nil
	}

	return copyBlocks(m.blocks), nil
}

// WriteChain replaces the stored chain.
func (m *Memory) WriteChain(blocks []database.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failures[DocChain]; err != nil {
		return err
	}

	m.blocks = copyBlocks(blocks)
	m.hasChain = true
	m.writes[DocChain]++

	return nil
}

// ReadUsers returns a copy of the stored users.
func (m *Memory) ReadUsers() (map[string]database.AccountData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make(map[string]database.AccountData, len(m.users))
	for username, data := range m.users {
		users[username] = data
	}

	return users, nil
}

// WriteUsers replaces the stored users.
func (m *Memory) WriteUsers(users map[string]database.AccountData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failures[DocUsers]; err != nil {
		return err
	}

	m.users = make(map[string]database.AccountData, len(users))
	for username, data := range users {
		m.users[username] = data
	}
	m.writes[DocUsers]++

	return nil
}

// ReadPending returns a copy of the stored pending transactions.
func (m *Memory) ReadPending() ([]database.Tx, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := make([]database.Tx, len(m.pending))
	copy(txs, m.pending)

	return txs, nil
}

// WritePending replaces the stored pending transactions.
func (m *Memory) WritePending(txs []database.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failures[DocPending]; err != nil {
		return err
	}

	m.pending = make([]database.Tx, len(txs))
	copy(m.pending, txs)
	m.writes[DocPending]++

	return nil
}

// =============================================================================

// copyBlocks makes a deep copy of the blocks so the stored chain can't be
// changed through a slice held by the caller.
func copyBlocks(blocks []database.Block) []database.Block {
	out := make([]database.Block, len(blocks))
	for i, blk := range blocks {
		trans := make([]database.Tx, len(blk.Transactions))
		copy(trans, blk.Transactions)

		blk.Transactions = trans
		out[i] = blk
	}

	return out
}

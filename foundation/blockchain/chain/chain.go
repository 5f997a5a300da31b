// Package chain maintains the ordered list of hash linked blocks and keeps
// the chain document in storage in sync with memory.
package chain

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	"github.com/ardanlabs/minicoin/foundation/blockchain/genesis"
)

// CorruptPolicy decides what happens when a stored chain fails its
// integrity check at startup.
type CorruptPolicy string

// Set of policies for handling a corrupt chain.
const (
	PolicyReject CorruptPolicy = "reject"
	PolicyReinit CorruptPolicy = "reinit"
)

// ParsePolicy validates the policy by name.
func ParsePolicy(name string) (CorruptPolicy, error) {
	switch p := CorruptPolicy(name); p {
	case PolicyReject, PolicyReinit:
		return p, nil
	case "":
		return PolicyReject, nil
	}

	return "", fmt.Errorf("unknown corrupt chain policy %q", name)
}

// EventHandler defines a function that is called when events occur while
// loading and extending the chain.
type EventHandler func(v string, args ...any)

// Config represents the information needed to load the chain.
type Config struct {
	Serializer database.ChainSerializer
	Genesis    genesis.Genesis
	Policy     CorruptPolicy
	EvHandler  EventHandler
	Now        func() time.Time
}

// =============================================================================

// Chain manages the blocks of the ledger.
type Chain struct {
	mu         sync.RWMutex
	serializer database.ChainSerializer
	evHandler  EventHandler
	now        func() time.Time
	blocks     []database.Block
}

// LoadOrInit reads the stored chain. A missing chain is initialized with the
// genesis block. A chain that fails verification is handled according to the
// configured policy.
func LoadOrInit(cfg Config) (*Chain, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	c := Chain{
		serializer: cfg.Serializer,
		evHandler:  ev,
		now:        now,
	}

	blocks, err := cfg.Serializer.ReadChain()
	if err != nil {
		return nil, fmt.Errorf("reading chain: %w", err)
	}

	switch {
	case len(blocks) == 0:
		ev("chain: LoadOrInit: no chain found: writing genesis")
		if err := c.init(cfg.Genesis); err != nil {
			return nil, err
		}

	default:
		if err := Verify(blocks); err != nil {
			if cfg.Policy != PolicyReinit {
				return nil, fmt.Errorf("%w: %w", database.ErrChainCorrupt, err)
			}

			ev("chain: LoadOrInit: WARNING: CHAIN CORRUPT: %s", err)
			if err := c.reinit(cfg.Genesis); err != nil {
				return nil, err
			}
			break
		}

		c.blocks = blocks
		ev("chain: LoadOrInit: loaded: blocks[%d] tail[%s]", len(blocks), blocks[len(blocks)-1].Hash)
	}

	return &c, nil
}

// Append seals the transactions into exactly one new block linked to the
// current tail. The block is only added to memory once the chain has been
// written to storage.
func (c *Chain) Append(txs []database.Tx) (database.Block, error) {
	blocks := c.Extend(txs, 1)

	if err := c.Persist(blocks); err != nil {
		return database.Block{}, err
	}
	c.Install(blocks)

	return blocks[0], nil
}

// Extend builds count new blocks linked after the current tail without
// persisting or installing them. The first block carries the transactions
// and the rest are empty.
func (c *Chain) Extend(txs []database.Tx, count int) []database.Block {
	if count <= 0 {
		return nil
	}

	c.mu.RLock()
	prev := c.blocks[len(c.blocks)-1]
	c.mu.RUnlock()

	now := c.now()

	blocks := make([]database.Block, count)
	for i := range blocks {
		var trans []database.Tx
		if i == 0 {
			trans = txs
		}

		blocks[i] = database.NewBlock(prev, trans, now)
		prev = blocks[i]
	}

	return blocks
}

// Persist writes the current chain followed by the specified blocks to
// storage without installing them.
func (c *Chain) Persist(blocks []database.Block) error {
	c.mu.RLock()
	next := make([]database.Block, 0, len(c.blocks)+len(blocks))
	next = append(next, c.blocks...)
	c.mu.RUnlock()

	next = append(next, blocks...)

	return c.write(next)
}

// Restore writes the installed chain back to storage. It is used to undo a
// Persist that was never installed.
func (c *Chain) Restore() error {
	return c.Persist(nil)
}

// Install adds the blocks to the in-memory chain.
func (c *Chain) Install(blocks []database.Block) {
	if len(blocks) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.blocks = append(c.blocks, blocks...)

	for _, blk := range blocks {
		c.evHandler("chain: Install: sealed: blk[%d] hash[%s] numTrans[%d]", blk.Index, blk.Hash, len(blk.Transactions))
	}
}

// =============================================================================

// Blocks returns a copy of the chain.
func (c *Chain) Blocks() []database.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]database.Block, len(c.blocks))
	for i, blk := range c.blocks {
		blk.Transactions = copyTxs(blk.Transactions)
		blocks[i] = blk
	}

	return blocks
}

// Len returns the number of blocks including the genesis block.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Tail returns the most recently sealed block.
func (c *Chain) Tail() database.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blk := c.blocks[len(c.blocks)-1]
	blk.Transactions = copyTxs(blk.Transactions)

	return blk
}

// TailTransactions returns a copy of the transactions held by the most
// recently sealed block.
func (c *Chain) TailTransactions() []database.Tx {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return copyTxs(c.blocks[len(c.blocks)-1].Transactions)
}

// VerifyIntegrity reports whether the in-memory chain is hash linked.
func (c *Chain) VerifyIntegrity() bool {
	return c.Verify() == nil
}

// Verify checks the in-memory chain and reports the first failure.
func (c *Chain) Verify() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Verify(c.blocks)
}

// =============================================================================

// Verify checks that the blocks start with a valid genesis block and that
// every block is linked to the one before it.
func Verify(blocks []database.Block) error {
	if len(blocks) == 0 {
		return errors.New("chain has no blocks")
	}

	if err := blocks[0].ValidateGenesis(); err != nil {
		return err
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1]); err != nil {
			return err
		}
	}

	return nil
}

// =============================================================================

func (c *Chain) init(gen genesis.Genesis) error {
	blocks := []database.Block{database.NewGenesisBlock(gen.Date)}

	if err := c.write(blocks); err != nil {
		return err
	}
	c.blocks = blocks

	return nil
}

func (c *Chain) reinit(gen genesis.Genesis) error {
	if archiver, ok := c.serializer.(database.Archiver); ok {
		path, err := archiver.ArchiveChain()
		if err != nil {
			return fmt.Errorf("archiving corrupt chain: %w", err)
		}
		c.evHandler("chain: LoadOrInit: WARNING: corrupt chain archived: %s", path)
	}

	c.evHandler("chain: LoadOrInit: WARNING: reinitializing chain from genesis")

	return c.init(gen)
}

func (c *Chain) write(blocks []database.Block) error {
	if err := c.serializer.WriteChain(blocks); err != nil {
		return fmt.Errorf("writing chain: %w: %w", database.ErrPersistence, err)
	}

	return nil
}

func copyTxs(txs []database.Tx) []database.Tx {
	out := make([]database.Tx, len(txs))
	copy(out, txs)
	return out
}

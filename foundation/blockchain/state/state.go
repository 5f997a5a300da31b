// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/minicoin/foundation/blockchain/accounts"
	"github.com/ardanlabs/minicoin/foundation/blockchain/chain"
	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	"github.com/ardanlabs/minicoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/minicoin/foundation/blockchain/mempool"
	"github.com/ardanlabs/minicoin/foundation/blockchain/milestone"
)

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Storage       database.Serializer
	Genesis       genesis.Genesis
	CorruptPolicy chain.CorruptPolicy
	EvHandler     EventHandler
}

// State manages the ledger. Every operation that changes the ledger holds
// the same lock from the first read to the last write, so there is a
// single writer at any time.
type State struct {
	mu        sync.Mutex
	evHandler EventHandler

	genesis  genesis.Genesis
	storage  database.Serializer
	policy   milestone.Policy
	accounts *accounts.Accounts
	mempool  *mempool.Mempool
	chain    *chain.Chain
}

// New constructs the ledger from storage. Any blocks owed for the coin
// supply found in storage are sealed before New returns.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Load the chain, handling a missing or corrupt chain per the policy.
	chn, err := chain.LoadOrInit(chain.Config{
		Serializer: cfg.Storage,
		Genesis:    cfg.Genesis,
		Policy:     cfg.CorruptPolicy,
		EvHandler:  ev,
	})
	if err != nil {
		return nil, err
	}

	act, err := accounts.New(cfg.Storage)
	if err != nil {
		return nil, err
	}

	mp, err := mempool.New(cfg.Storage)
	if err != nil {
		return nil, err
	}

	state := State{
		evHandler: ev,
		genesis:   cfg.Genesis,
		storage:   cfg.Storage,
		policy:    milestone.New(cfg.Genesis.MilestoneSize),
		accounts:  act,
		mempool:   mp,
		chain:     chn,
	}

	ev("state: New: loaded: accounts[%d] supply[%d] pending[%d] blocks[%d]", len(act.Copy()), act.Supply(), mp.Count(), chn.Len())

	// A crash between writes can leave milestones owed.
	blocks, err := state.Reconcile()
	if err != nil {
		return nil, fmt.Errorf("sealing owed blocks: %w", err)
	}
	if len(blocks) > 0 {
		ev("state: New: WARNING: sealed %d owed blocks at startup", len(blocks))
	}

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: Shutdown: closing storage")

	return s.storage.Close()
}

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// MilestoneSize returns the coin supply step that seals a new block.
func (s *State) MilestoneSize() uint64 {
	return s.policy.Size()
}

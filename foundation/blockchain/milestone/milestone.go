// Package milestone decides when blocks must be sealed. A block is owed for
// every full milestone of coin supply, so the chain always holds one block
// past genesis per milestone crossed.
package milestone

import (
	"fmt"
	"math"

	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	"github.com/ardanlabs/minicoin/foundation/blockchain/genesis"
)

// MaxBlocks is the largest number of blocks a single operation may seal.
// An update owing more is rejected instead of building an unbounded chain
// under the writer lock.
const MaxBlocks = 10_000

// Extender represents the behavior required from the chain to plan the
// blocks that are owed.
type Extender interface {
	Len() int
	Extend(txs []database.Tx, count int) []database.Block
}

// Policy seals blocks at fixed steps of the coin supply.
type Policy struct {
	size uint64
}

// New constructs a policy for the milestone size. A zero size falls back
// to the default.
func New(size uint64) Policy {
	if size == 0 {
		size = genesis.DefaultMilestoneSize
	}

	return Policy{size: size}
}

// Size returns the coin supply step between milestones.
func (p Policy) Size() uint64 {
	return p.size
}

// Expected returns the number of milestones the supply has reached.
func (p Policy) Expected(supply uint64) uint64 {
	return supply / p.size
}

// Missing returns the number of blocks owed for a chain of the specified
// length, genesis included. A chain that is already ahead owes nothing.
// The count saturates at math.MaxInt.
func (p Policy) Missing(supply uint64, chainLen int) int {
	sealed := uint64(0)
	if chainLen > 1 {
		sealed = uint64(chainLen - 1)
	}

	expected := p.Expected(supply)
	if expected <= sealed {
		return 0
	}

	owed := expected - sealed
	if owed > math.MaxInt {
		return math.MaxInt
	}

	return int(owed)
}

// Plan returns the blocks that must be sealed for the supply. The first block
// carries the pending transactions and the rest are empty. Nothing is
// returned when no milestone is owed, which makes the policy safe to run any
// number of times. An update owing more than MaxBlocks is rejected with
// ErrInvalidAmount.
func (p Policy) Plan(c Extender, supply uint64, pending []database.Tx) ([]database.Block, error) {
	missing := p.Missing(supply, c.Len())
	if missing == 0 {
		return nil, nil
	}

	if missing > MaxBlocks {
		return nil, fmt.Errorf("supply %d owes %d blocks, max %d: %w", supply, missing, MaxBlocks, database.ErrInvalidAmount)
	}

	return c.Extend(pending, missing), nil
}

package state

import (
	"github.com/ardanlabs/minicoin/foundation/blockchain/accounts"
	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
)

// step is one document write of a commit and the write that undoes it.
type step struct {
	name  string
	write func() error
	undo  func() error
}

// update is the complete next state of the ledger. A nil users snapshot
// means the accounts are unchanged.
type update struct {
	users   *accounts.Snapshot
	pending []database.Tx
}

// apply seals the blocks owed for the update, writes every changed document
// and only then installs the new state in memory. If any write fails the
// documents already written are restored and memory is left untouched. The
// caller must hold the state lock.
func (s *State) apply(upd update) ([]database.Block, error) {
	supply := s.accounts.Supply()
	if upd.users != nil {
		supply = upd.users.Supply()
	}

	pending := upd.pending
	blocks, err := s.policy.Plan(s.chain, supply, pending)
	if err != nil {
		return nil, err
	}
	if len(blocks) > 0 {
		pending = nil
	}

	prevUsers := s.accounts.Current()
	prevPending := s.mempool.Copy()

	var steps []step
	if upd.users != nil {
		steps = append(steps, step{
			name:  "users",
			write: func() error { return s.accounts.Persist(*upd.users) },
			undo:  func() error { return s.accounts.Persist(prevUsers) },
		})
	}

	steps = append(steps, step{
		name:  "pending",
		write: func() error { return s.mempool.Persist(pending) },
		undo:  func() error { return s.mempool.Persist(prevPending) },
	})

	if len(blocks) > 0 {
		steps = append(steps, step{
			name:  "chain",
			write: func() error { return s.chain.Persist(blocks) },
			undo:  s.chain.Restore,
		})
	}

	if err := s.commit(steps); err != nil {
		return nil, err
	}

	if upd.users != nil {
		s.accounts.Replace(*upd.users)
	}
	s.mempool.Replace(pending)
	s.chain.Install(blocks)

	for _, blk := range blocks {
		s.evHandler("viewer: block: index[%d] hash[%s] numTrans[%d]", blk.Index, blk.Hash, len(blk.Transactions))
	}

	return blocks, nil
}

// commit runs the writes in order. When a write fails the earlier writes are
// undone in reverse order and the original error is returned.
func (s *State) commit(steps []step) error {
	for i, stp := range steps {
		if err := stp.write(); err != nil {
			s.evHandler("state: commit: ERROR: writing %s: %s", stp.name, err)

			for j := i - 1; j >= 0; j-- {
				if uerr := steps[j].undo(); uerr != nil {
					s.evHandler("state: commit: ERROR: restoring %s: %s", steps[j].name, uerr)
					continue
				}
				s.evHandler("state: commit: restored %s", steps[j].name)
			}

			return err
		}
	}

	return nil
}

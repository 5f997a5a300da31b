package state

import (
	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
)

// Wallet returns the account for the specified username.
func (s *State) Wallet(username string) (database.Account, error) {
	return s.accounts.QueryByUsername(username)
}

// WalletByAddress returns the account that owns the specified address.
func (s *State) WalletByAddress(address database.Address) (database.Account, error) {
	return s.accounts.QueryByAddress(address)
}

// Accounts returns all the accounts sorted by username.
func (s *State) Accounts() []database.Account {
	return s.accounts.Values()
}

// Supply returns the total number of coins in circulation.
func (s *State) Supply() uint64 {
	return s.accounts.Supply()
}

// ChainView returns a read-only copy of the chain.
func (s *State) ChainView() []database.Block {
	return s.chain.Blocks()
}

// LatestBlock returns the most recently sealed block.
func (s *State) LatestBlock() database.Block {
	return s.chain.Tail()
}

// Pending returns the transactions not yet sealed into a block.
func (s *State) Pending() []database.Tx {
	return s.mempool.Copy()
}

// VerifyChain checks the hash links of the chain and reports the first
// block that fails.
func (s *State) VerifyChain() error {
	return s.chain.Verify()
}

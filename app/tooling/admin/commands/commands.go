// Package commands contains the functionality for the admin tool.
package commands

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/minicoin/foundation/blockchain/chain"
	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	"github.com/ardanlabs/minicoin/foundation/blockchain/state"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// Verify checks the hash links of the stored chain without loading the
// ledger.
func Verify(cs database.ChainSerializer) error {
	blocks, err := cs.ReadChain()
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		fmt.Println("no chain stored")
		return nil
	}

	if err := chain.Verify(blocks); err != nil {
		return fmt.Errorf("%w: %w", database.ErrChainCorrupt, err)
	}

	fmt.Printf("chain valid: blocks[%d] tail[%s]\n", len(blocks), blocks[len(blocks)-1].Hash)
	return nil
}

// Balances prints the current set of balances.
func Balances(username string, st *state.State) error {
	fmt.Printf("LatestBlockHash: %s\n\n", st.LatestBlock().Hash)

	if username != "" {
		act, err := st.Wallet(username)
		if err != nil {
			return err
		}
		fmt.Printf("Account: %s  Address: %s  Balance: %d\n", act.Username, act.Address, act.Balance)
		return nil
	}

	for _, act := range st.Accounts() {
		fmt.Printf("Account: %s  Address: %s  Balance: %d\n", act.Username, act.Address, act.Balance)
	}
	fmt.Printf("\nSupply: %d\n", st.Supply())

	return nil
}

// Chain prints the blocks and the pending transactions.
func Chain(st *state.State) error {
	for _, blk := range st.ChainView() {
		fmt.Printf("Block[%d] Hash[%s] Prev[%s]\n", blk.Index, blk.Hash, blk.PrevHash)
		for _, tx := range blk.Transactions {
			fmt.Printf("\t%s\n", tx)
		}
	}

	pending := st.Pending()
	fmt.Printf("\nPending[%d]\n", len(pending))
	for _, tx := range pending {
		fmt.Printf("\t%s\n", tx)
	}

	return nil
}

// Seal seals any blocks owed for the coin supply.
func Seal(st *state.State) error {
	blocks, err := st.Reconcile()
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		fmt.Println("chain is up to date")
		return nil
	}

	for _, blk := range blocks {
		fmt.Printf("sealed Block[%d] Hash[%s] Trans[%d]\n", blk.Index, blk.Hash, len(blk.Transactions))
	}

	return nil
}

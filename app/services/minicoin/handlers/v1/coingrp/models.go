package coingrp

import (
	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
)

type joinRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

type buyRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Amount   int64  `json:"amount" validate:"required,gt=0,lte=1000000"`
}

type sendRequest struct {
	FromUser string `json:"from_user" validate:"required,max=64"`
	To       string `json:"to" validate:"required,max=128"`
	Amount   int64  `json:"amount" validate:"required,gt=0,lte=1000000"`
}

// =============================================================================

type account struct {
	Username string `json:"username"`
	Address  string `json:"address"`
	Balance  uint64 `json:"balance"`
}

func toAccount(act database.Account) account {
	return account{
		Username: act.Username,
		Address:  string(act.Address),
		Balance:  act.Balance,
	}
}

func toAccounts(acts []database.Account) []account {
	out := make([]account, len(acts))
	for i, act := range acts {
		out[i] = toAccount(act)
	}
	return out
}

type joinResponse struct {
	Message string `json:"message"`
	Address string `json:"address"`
	Created bool   `json:"created"`
}

type buyResponse struct {
	Message    string  `json:"message"`
	NewBalance uint64  `json:"new_balance"`
	Account    account `json:"account"`
}

type sendResponse struct {
	Message string        `json:"message"`
	Tx      database.Tx   `json:"tx"`
	From    account       `json:"from"`
	To      account       `json:"to"`
	Sealed  []blockHeader `json:"sealed,omitempty"`
}

type blockHeader struct {
	Index    uint64 `json:"index"`
	Hash     string `json:"hash"`
	PrevHash string `json:"previous_hash"`
	NumTrans int    `json:"num_transactions"`
}

func toBlockHeaders(blocks []database.Block) []blockHeader {
	out := make([]blockHeader, len(blocks))
	for i, blk := range blocks {
		out[i] = blockHeader{
			Index:    blk.Index,
			Hash:     blk.Hash,
			PrevHash: blk.PrevHash,
			NumTrans: len(blk.Transactions),
		}
	}
	return out
}

type verifyResponse struct {
	Valid  bool   `json:"valid"`
	Blocks int    `json:"blocks"`
	Error  string `json:"error,omitempty"`
}

type accountsResponse struct {
	Supply        uint64    `json:"supply"`
	MilestoneSize uint64    `json:"milestone_size"`
	Accounts      []account `json:"accounts"`
}

package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tx represents a balance changing operation recorded on the ledger.
type Tx struct {
	ID        string  `json:"id"`
	From      Address `json:"from"`
	To        Address `json:"to"`
	Amount    uint64  `json:"amount"`
	TimeStamp uint64  `json:"timestamp"` // Unix time in milliseconds.
}

// NewMintTx constructs a transaction that creates new coins for an account.
func NewMintTx(to Address, amount uint64) Tx {
	return newTx(MintAddress, to, amount)
}

// NewTransferTx constructs a transaction that moves coins between accounts.
func NewTransferTx(from Address, to Address, amount uint64) Tx {
	return newTx(from, to, amount)
}

func newTx(from Address, to Address, amount uint64) Tx {
	return Tx{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Amount:    amount,
		TimeStamp: uint64(time.Now().UTC().UnixMilli()),
	}
}

// IsMint tests if the transaction created coins.
func (tx Tx) IsMint() bool {
	return tx.From == MintAddress
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s->%s:%d", tx.ID, tx.From, tx.To, tx.Amount)
}

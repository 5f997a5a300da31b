// Package database handles all the lower level support for the ledger: the
// account, transaction and block models, the hash link between blocks and the
// serializer contracts used to persist them.
package database

import "errors"

// Set of error variables for the ledger.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrSelfTransfer      = errors.New("sending coins to yourself")
	ErrAddressInUse      = errors.New("address already assigned")
	ErrChainCorrupt      = errors.New("chain integrity check failed")
	ErrPersistence       = errors.New("persistence failure")
)

// MaxAmount is the largest number of coins a single buy or send can move.
const MaxAmount = 1_000_000

// =============================================================================

// ChainSerializer represents the behavior required to be implemented by any
// package providing support for storing and reading the chain. The chain is
// always read and written as a whole.
type ChainSerializer interface {
	ReadChain() ([]Block, error)
	WriteChain(blocks []Block) error
}

// UserSerializer represents the behavior required to be implemented by any
// package providing support for storing and reading the accounts.
type UserSerializer interface {
	ReadUsers() (map[string]AccountData, error)
	WriteUsers(users map[string]AccountData) error
}

// PendingSerializer represents the behavior required to be implemented by any
// package providing support for storing the transactions not yet sealed into
// a block.
type PendingSerializer interface {
	ReadPending() ([]Tx, error)
	WritePending(txs []Tx) error
}

// Serializer is the full set of persistence behavior the ledger needs.
type Serializer interface {
	ChainSerializer
	UserSerializer
	PendingSerializer
	Close() error
}

// Archiver is implemented by serializers that can set aside a chain document
// that failed its integrity check instead of overwriting it.
type Archiver interface {
	ArchiveChain() (string, error)
}

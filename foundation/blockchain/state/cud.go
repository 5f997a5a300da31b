package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/minicoin/foundation/blockchain/accounts"
	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
)

// TransferResult is what a successful send produces.
type TransferResult struct {
	Tx     database.Tx
	From   database.Account
	To     database.Account
	Sealed []database.Block
}

// =============================================================================

// Join returns the account for the username, creating it with a zero
// balance the first time. The bool reports if the account was created.
func (s *State) Join(username string) (database.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, created, err := s.accounts.GetOrCreate(username)
	if err != nil {
		return database.Account{}, false, err
	}

	if created {
		s.evHandler("viewer: join: username[%s] address[%s]", account.Username, account.Address)
	}

	return account, created, nil
}

// Buy mints new coins for the user, creating the account if needed. The
// mint is recorded as a pending transaction and any milestone it crosses
// seals a block.
func (s *State) Buy(username string, amount int64) (database.Account, error) {
	if err := checkAmount(amount); err != nil {
		return database.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.accounts.Clone(accounts.Change{Username: username, Delta: amount})
	if err != nil {
		return database.Account{}, err
	}

	account, _ := users.Account(username)
	tx := database.NewMintTx(account.Address, uint64(amount))

	if _, err := s.apply(update{users: &users, pending: s.mempool.With(tx)}); err != nil {
		return database.Account{}, err
	}

	s.evHandler("viewer: buy: %s", tx)

	return account, nil
}

// Send moves coins from one user to another. The receiver is resolved by
// username and then by address. An unknown receiver is created: a hex
// address is kept verbatim and used as the username, anything else is
// taken as a username.
func (s *State) Send(from string, to string, amount int64) (TransferResult, error) {
	if err := checkAmount(amount); err != nil {
		return TransferResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sender, err := s.accounts.QueryByUsername(from)
	if err != nil {
		return TransferResult{}, fmt.Errorf("sender: %w", err)
	}

	if sender.Balance < uint64(amount) {
		return TransferResult{}, fmt.Errorf("sender %q has %d, needs %d: %w", from, sender.Balance, amount, database.ErrInsufficientFunds)
	}

	receiver, err := s.resolveReceiver(to)
	if err != nil {
		return TransferResult{}, err
	}

	if receiver.Username == sender.Username {
		return TransferResult{}, fmt.Errorf("username %q: %w", from, database.ErrSelfTransfer)
	}

	users, err := s.accounts.Clone(
		accounts.Change{Username: sender.Username, Delta: -amount},
		accounts.Change{Username: receiver.Username, Address: receiver.Address, Delta: amount},
	)
	if err != nil {
		return TransferResult{}, err
	}

	sender, _ = users.Account(sender.Username)
	receiver, _ = users.Account(receiver.Username)
	tx := database.NewTransferTx(sender.Address, receiver.Address, uint64(amount))

	sealed, err := s.apply(update{users: &users, pending: s.mempool.With(tx)})
	if err != nil {
		return TransferResult{}, err
	}

	s.evHandler("viewer: send: %s", tx)

	tr := TransferResult{
		Tx:     tx,
		From:   sender,
		To:     receiver,
		Sealed: sealed,
	}

	return tr, nil
}

// Reconcile seals every block owed for the current coin supply. It does
// nothing when the chain is up to date.
func (s *State) Reconcile() ([]database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policy.Missing(s.accounts.Supply(), s.chain.Len()) == 0 {
		return nil, nil
	}

	return s.apply(update{pending: s.mempool.Copy()})
}

// =============================================================================

// checkAmount validates the number of coins a single operation moves.
func checkAmount(amount int64) error {
	if amount <= 0 || amount > database.MaxAmount {
		return fmt.Errorf("amount %d must be between 1 and %d: %w", amount, database.MaxAmount, database.ErrInvalidAmount)
	}

	return nil
}

// resolveReceiver finds the receiving account. An account that does not
// exist yet is returned with a zero balance but is not created. The caller
// must hold the state lock.
func (s *State) resolveReceiver(to string) (database.Account, error) {
	account, err := s.accounts.QueryByUsername(to)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		return database.Account{}, err
	}

	address := database.Address(to)
	if address.IsAddress() {
		account, err := s.accounts.QueryByAddress(address)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, database.ErrUserNotFound) {
			return database.Account{}, err
		}

		return database.NewAccount(to, address), nil
	}

	return database.NewAccount(to, ""), nil
}

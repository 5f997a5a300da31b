// Package accounts maintains the ledger of user accounts and balances.
package accounts

import (
	"fmt"
	"math"
	"sync"

	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
)

// Change describes a balance adjustment for a user. When the user does not
// exist yet it is created with the Address, or with an address derived from
// the username when Address is empty.
type Change struct {
	Username string
	Address  database.Address
	Delta    int64
}

// =============================================================================

// Accounts manages the accounts that hold coins on the ledger. Every change
// is persisted as a rewrite of the whole users document.
type Accounts struct {
	mu         sync.RWMutex
	serializer database.UserSerializer
	users      map[string]database.Account
	addresses  map[string]string
}

// New constructs the accounts from the users document.
func New(serializer database.UserSerializer) (*Accounts, error) {
	data, err := serializer.ReadUsers()
	if err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}

	users := make(map[string]database.Account, len(data))
	for username, ad := range data {
		users[username] = database.ToAccount(username, ad)
	}

	addresses, err := indexAddresses(users)
	if err != nil {
		return nil, err
	}

	if _, err := checkedSupply(users); err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}

	act := Accounts{
		serializer: serializer,
		users:      users,
		addresses:  addresses,
	}

	return &act, nil
}

// GetOrCreate returns the account for the username, creating it with a zero
// balance if it does not exist. The bool reports if it was created.
func (act *Accounts) GetOrCreate(username string) (database.Account, bool, error) {
	act.mu.Lock()
	defer act.mu.Unlock()

	if account, exists := act.users[username]; exists {
		return account, false, nil
	}

	users, err := act.stage(Change{Username: username})
	if err != nil {
		return database.Account{}, false, err
	}

	if err := act.write(users); err != nil {
		return database.Account{}, false, err
	}
	act.replace(users)

	return act.users[username], true, nil
}

// QueryByUsername returns the account for the specified username.
func (act *Accounts) QueryByUsername(username string) (database.Account, error) {
	act.mu.RLock()
	defer act.mu.RUnlock()

	account, exists := act.users[username]
	if !exists {
		return database.Account{}, fmt.Errorf("username %q: %w", username, database.ErrUserNotFound)
	}

	return account, nil
}

// QueryByAddress returns the account that owns the specified address.
func (act *Accounts) QueryByAddress(address database.Address) (database.Account, error) {
	act.mu.RLock()
	defer act.mu.RUnlock()

	username, exists := act.addresses[address.Key()]
	if !exists {
		return database.Account{}, fmt.Errorf("address %q: %w", address, database.ErrUserNotFound)
	}

	return act.users[username], nil
}

// AdjustBalance applies the delta to the user's balance and persists the
// result. A delta that would leave a negative balance fails with
// ErrInsufficientFunds and nothing is changed.
func (act *Accounts) AdjustBalance(username string, delta int64) error {
	act.mu.Lock()
	defer act.mu.Unlock()

	if _, exists := act.users[username]; !exists {
		return fmt.Errorf("username %q: %w", username, database.ErrUserNotFound)
	}

	users, err := act.stage(Change{Username: username, Delta: delta})
	if err != nil {
		return err
	}

	if err := act.write(users); err != nil {
		return err
	}
	act.replace(users)

	return nil
}

// Supply returns the total number of coins held by all accounts.
func (act *Accounts) Supply() uint64 {
	act.mu.RLock()
	defer act.mu.RUnlock()

	return supply(act.users)
}

// Copy makes a copy of the current information for all accounts.
func (act *Accounts) Copy() map[string]database.Account {
	act.mu.RLock()
	defer act.mu.RUnlock()

	users := make(map[string]database.Account, len(act.users))
	for username, account := range act.users {
		users[username] = account
	}
	return users
}

// Values returns the accounts sorted by username.
func (act *Accounts) Values() []database.Account {
	act.mu.RLock()
	defer act.mu.RUnlock()

	values := make([]database.Account, 0, len(act.users))
	for _, account := range act.users {
		values = append(values, account)
	}
	database.SortByUsername(values)

	return values
}

// =============================================================================

// Snapshot is a complete set of accounts that has not been installed yet.
type Snapshot struct {
	users map[string]database.Account
}

// Supply returns the total number of coins held in the snapshot.
func (s Snapshot) Supply() uint64 {
	return supply(s.users)
}

// Account returns the account for the username in the snapshot.
func (s Snapshot) Account(username string) (database.Account, bool) {
	account, exists := s.users[username]
	return account, exists
}

// Clone applies the changes to a copy of the current accounts. All of the
// changes are validated together so the snapshot is either complete or an
// error is returned.
func (act *Accounts) Clone(changes ...Change) (Snapshot, error) {
	act.mu.RLock()
	defer act.mu.RUnlock()

	users, err := act.stage(changes...)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{users: users}, nil
}

// Current returns a snapshot of the installed accounts.
func (act *Accounts) Current() Snapshot {
	act.mu.RLock()
	defer act.mu.RUnlock()

	users := make(map[string]database.Account, len(act.users))
	for username, account := range act.users {
		users[username] = account
	}

	return Snapshot{users: users}
}

// Persist writes the snapshot to storage without installing it.
func (act *Accounts) Persist(s Snapshot) error {
	return act.write(s.users)
}

// Replace installs the snapshot as the current set of accounts.
func (act *Accounts) Replace(s Snapshot) {
	act.mu.Lock()
	defer act.mu.Unlock()

	act.replace(s.users)
}

// =============================================================================

// stage builds the next set of accounts. The caller must hold a lock.
func (act *Accounts) stage(changes ...Change) (map[string]database.Account, error) {
	users := make(map[string]database.Account, len(act.users)+len(changes))
	for username, account := range act.users {
		users[username] = account
	}

	addresses := make(map[string]string, len(act.addresses)+len(changes))
	for key, username := range act.addresses {
		addresses[key] = username
	}

	total, err := checkedSupply(users)
	if err != nil {
		return nil, err
	}

	for _, chg := range changes {
		if chg.Username == "" {
			return nil, fmt.Errorf("username is required: %w", database.ErrUserNotFound)
		}

		account, exists := users[chg.Username]
		if !exists {
			if chg.Delta < 0 {
				return nil, fmt.Errorf("username %q: %w", chg.Username, database.ErrUserNotFound)
			}

			account = database.NewAccount(chg.Username, chg.Address)
			if owner, used := addresses[account.Address.Key()]; used {
				return nil, fmt.Errorf("address %s owned by %q: %w", account.Address, owner, database.ErrAddressInUse)
			}
			addresses[account.Address.Key()] = chg.Username
		}

		balance, err := applyDelta(account.Balance, chg.Delta)
		if err != nil {
			return nil, fmt.Errorf("username %q: %w", chg.Username, err)
		}

		// A debit never exceeds the total, so only a credit can fail here.
		if total, err = applyDelta(total, chg.Delta); err != nil {
			return nil, fmt.Errorf("total supply: %w", err)
		}
		account.Balance = balance

		users[chg.Username] = account
	}

	return users, nil
}

// write persists the full users document. The caller decides if the
// in-memory accounts change.
func (act *Accounts) write(users map[string]database.Account) error {
	data := make(map[string]database.AccountData, len(users))
	for username, account := range users {
		data[username] = database.NewAccountData(account)
	}

	if err := act.serializer.WriteUsers(data); err != nil {
		return fmt.Errorf("writing users: %w: %w", database.ErrPersistence, err)
	}

	return nil
}

// replace installs the users and rebuilds the address index. The caller
// must hold the write lock.
func (act *Accounts) replace(users map[string]database.Account) {
	addresses := make(map[string]string, len(users))
	for username, account := range users {
		addresses[account.Address.Key()] = username
	}

	act.users = users
	act.addresses = addresses
}

// =============================================================================

// applyDelta performs the business logic for changing a balance.
func applyDelta(balance uint64, delta int64) (uint64, error) {
	switch {
	case delta < 0:
		debit := uint64(-(delta + 1)) + 1
		if debit > balance {
			return 0, fmt.Errorf("balance %d, needed %d: %w", balance, debit, database.ErrInsufficientFunds)
		}
		return balance - debit, nil

	case delta > 0:
		if uint64(delta) > math.MaxUint64-balance {
			return 0, fmt.Errorf("balance %d overflows adding %d: %w", balance, delta, database.ErrInvalidAmount)
		}
		return balance + uint64(delta), nil
	}

	return balance, nil
}

// supply adds up the balances.
func supply(users map[string]database.Account) uint64 {
	var total uint64
	for _, account := range users {
		total += account.Balance
	}
	return total
}

// checkedSupply adds up the balances and fails if the total does not fit.
func checkedSupply(users map[string]database.Account) (uint64, error) {
	var total uint64
	for username, account := range users {
		if account.Balance > math.MaxUint64-total {
			return 0, fmt.Errorf("supply overflows at %q: %w", username, database.ErrInvalidAmount)
		}
		total += account.Balance
	}
	return total, nil
}

// indexAddresses builds the address lookup and rejects a users document that
// assigns the same address twice.
func indexAddresses(users map[string]database.Account) (map[string]string, error) {
	addresses := make(map[string]string, len(users))
	for username, account := range users {
		key := account.Address.Key()
		if owner, exists := addresses[key]; exists {
			return nil, fmt.Errorf("users %q and %q share address %s: %w", owner, username, account.Address, database.ErrAddressInUse)
		}
		addresses[key] = username
	}

	return addresses, nil
}

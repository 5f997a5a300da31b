package database

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account represents information stored in the ledger for an individual user.
type Account struct {
	Username string  `json:"username"`
	Address  Address `json:"address"`
	Balance  uint64  `json:"balance"`
}

// NewAccount constructs an account with a zero balance for the username. The
// address is derived from the username when one is not provided.
func NewAccount(username string, address Address) Account {
	if address == "" {
		address = UsernameToAddress(username)
	}

	return Account{
		Username: username,
		Address:  address,
	}
}

// AccountData represents what is serialized for an account. The username is
// the key of the users document so it is not repeated here.
type AccountData struct {
	Address Address `json:"address"`
	Balance uint64  `json:"balance"`
}

// NewAccountData constructs the value to serialize to storage.
func NewAccountData(account Account) AccountData {
	return AccountData{
		Address: account.Address,
		Balance: account.Balance,
	}
}

// ToAccount converts serialized account data back into an account.
func ToAccount(username string, data AccountData) Account {
	return Account{
		Username: username,
		Address:  data.Address,
		Balance:  data.Balance,
	}
}

// =============================================================================

// Address represents the public identifier of an account that is used as
// the from and to of a transaction.
type Address string

// MintAddress is the sentinel from address of a transaction that creates coins.
const MintAddress Address = "system"

// UsernameToAddress derives the stable address for a username. The keccak256
// hash of the name is truncated the same way an ethereum address is taken
// from a public key.
func UsernameToAddress(username string) Address {
	return Address(common.BytesToAddress(crypto.Keccak256([]byte(username))).Hex())
}

// IsAddress verifies whether the underlying data represents a hex-encoded
// address, with or without a 0x prefix.
func (a Address) IsAddress() bool {
	if has0xPrefix(a) {
		a = a[2:]
	}

	return len(a) > 0 && isHex(a)
}

// Key returns the value used to index the address. Hex addresses are case
// insensitive so a checksummed and a lower case form resolve the same account.
func (a Address) Key() string {
	return strings.ToLower(string(a))
}

// =============================================================================

// has0xPrefix validates the address starts with a 0x.
func has0xPrefix(a Address) bool {
	return len(a) >= 2 && a[0] == '0' && (a[1] == 'x' || a[1] == 'X')
}

// isHex validates whether each byte is valid hexadecimal string.
func isHex(a Address) bool {
	if len(a)%2 != 0 {
		return false
	}

	for _, c := range []byte(a) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// =============================================================================

// byUsername provides sorting support by the username value.
type byUsername []Account

// Len returns the number of accounts in the list.
func (bu byUsername) Len() int {
	return len(bu)
}

// Less helps to sort the list by username in ascending order.
func (bu byUsername) Less(i, j int) bool {
	return bu[i].Username < bu[j].Username
}

// Swap moves accounts in the order of the username value.
func (bu byUsername) Swap(i, j int) {
	bu[i], bu[j] = bu[j], bu[i]
}

// SortByUsername sorts the accounts in place by username.
func SortByUsername(accounts []Account) {
	sort.Sort(byUsername(accounts))
}

package database

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// GenesisPrevHash is the previous hash recorded on the genesis block.
const GenesisPrevHash = "0"

// ZeroHash represents a hash code of zeros. It is returned if a hash can't be
// calculated which never matches a stored hash.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// Block represents a group of transactions sealed together and linked to the
// block before it.
type Block struct {
	Index        uint64 `json:"index"`
	TimeStamp    uint64 `json:"timestamp"` // Unix time in milliseconds.
	Transactions []Tx   `json:"transactions"`
	PrevHash     string `json:"previous_hash"`
	Hash         string `json:"hash"`
}

// NewGenesisBlock constructs the first block of a chain. The timestamp comes
// from the genesis configuration so every node produces the same hash.
func NewGenesisBlock(date time.Time) Block {
	b := Block{
		Index:        0,
		TimeStamp:    uint64(date.UTC().UnixMilli()),
		Transactions: []Tx{},
		PrevHash:     GenesisPrevHash,
	}
	b.Hash = b.CalculateHash()

	return b
}

// NewBlock constructs the block that follows the specified block.
func NewBlock(prevBlock Block, txs []Tx, now time.Time) Block {
	trans := make([]Tx, len(txs))
	copy(trans, txs)

	b := Block{
		Index:        prevBlock.Index + 1,
		TimeStamp:    uint64(now.UTC().UnixMilli()),
		Transactions: trans,
		PrevHash:     prevBlock.Hash,
	}
	b.Hash = b.CalculateHash()

	return b
}

// CalculateHash recomputes the hash of the block from its content fields.
func (b Block) CalculateHash() string {
	return Hash(b.Index, b.TimeStamp, b.Transactions, b.PrevHash)
}

// ValidateBlock takes a block and validates it against the block before it
// in the chain.
func (b Block) ValidateBlock(prevBlock Block) error {
	if b.Index != prevBlock.Index+1 {
		return fmt.Errorf("this block is not the next number, got %d, exp %d", b.Index, prevBlock.Index+1)
	}

	if b.PrevHash != prevBlock.Hash {
		return fmt.Errorf("blk[%d]: parent block hash doesn't match our known parent, got %s, exp %s", b.Index, b.PrevHash, prevBlock.Hash)
	}

	if hash := b.CalculateHash(); b.Hash != hash {
		return fmt.Errorf("blk[%d]: invalid block hash, got %s, exp %s", b.Index, b.Hash, hash)
	}

	return nil
}

// ValidateGenesis validates the block is a well formed genesis block.
func (b Block) ValidateGenesis() error {
	if b.Index != 0 {
		return fmt.Errorf("genesis block has number %d", b.Index)
	}

	if b.PrevHash != GenesisPrevHash {
		return fmt.Errorf("genesis block has parent hash %q", b.PrevHash)
	}

	if len(b.Transactions) != 0 {
		return fmt.Errorf("genesis block has %d transactions", len(b.Transactions))
	}

	if hash := b.CalculateHash(); b.Hash != hash {
		return fmt.Errorf("blk[0]: invalid block hash, got %s, exp %s", b.Hash, hash)
	}

	return nil
}

// =============================================================================

// Hash produces the hash that links a block into the chain. The transactions
// are serialized to JSON with sorted object keys so the same list always
// produces the same text regardless of how the values were constructed.
func Hash(index uint64, timeStamp uint64, txs []Tx, prevHash string) string {
	trans, err := canonicalJSON(txs)
	if err != nil {
		return ZeroHash
	}

	raw := fmt.Sprintf("%d%d%s%s", index, timeStamp, trans, prevHash)
	hash := sha256.Sum256([]byte(raw))

	return hexutil.Encode(hash[:])
}

// canonicalJSON marshals the transactions and then re-marshals the generic
// form of the document. The standard library writes map keys in sorted order
// so the result no longer depends on struct field order.
func canonicalJSON(txs []Tx) ([]byte, error) {
	if len(txs) == 0 {
		return []byte("[]"), nil
	}

	data, err := json.Marshal(txs)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}

	return json.Marshal(doc)
}

// Package storage selects the serializer used to persist the ledger.
package storage

import (
	"fmt"

	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	"github.com/ardanlabs/minicoin/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/minicoin/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/minicoin/foundation/blockchain/storage/leveldb"
	"github.com/ardanlabs/minicoin/foundation/blockchain/storage/memory"
)

// Set of engines that can be selected.
const (
	EngineDisk    = "disk"
	EngineBolt    = "bolt"
	EngineLevelDB = "leveldb"
	EngineMemory  = "memory"
)

// Open constructs the serializer for the specified engine rooted at the
// database path.
func Open(engine string, dbPath string) (database.Serializer, error) {
	switch engine {
	case EngineDisk:
		return disk.New(dbPath)

	case EngineBolt:
		return bolt.New(dbPath)

	case EngineLevelDB:
		return leveldb.New(dbPath)

	case EngineMemory:
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown storage engine %q", engine)
}

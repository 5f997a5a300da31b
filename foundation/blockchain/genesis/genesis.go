// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

// DefaultMilestoneSize is the coin supply step that seals a new block.
const DefaultMilestoneSize = 1000

// Genesis represents the genesis file.
type Genesis struct {
	Date          time.Time `json:"date"`           // Timestamp of the genesis block.
	ChainID       uint16    `json:"chain_id"`       // The chain id represents an unique id for this running instance.
	MilestoneSize uint64    `json:"milestone_size"` // Coin supply step that seals a new block.
}

// Default returns the genesis information used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date:          time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		ChainID:       1,
		MilestoneSize: DefaultMilestoneSize,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. If the file does not exist the
// default genesis information is returned.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if genesis.MilestoneSize == 0 {
		return Genesis{}, errors.New("genesis milestone size must be greater than zero")
	}

	return genesis, nil
}

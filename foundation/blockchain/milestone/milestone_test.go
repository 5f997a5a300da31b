package milestone_test

import (
	"errors"
	"math"
	"testing"

	"github.com/ardanlabs/minicoin/foundation/blockchain/chain"
	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	"github.com/ardanlabs/minicoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/minicoin/foundation/blockchain/milestone"
	"github.com/ardanlabs/minicoin/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestMissing(t *testing.T) {
	type table struct {
		name     string
		supply   uint64
		chainLen int
		missing  int
	}

	tt := []table{
		{name: "empty", supply: 0, chainLen: 1, missing: 0},
		{name: "below", supply: 999, chainLen: 1, missing: 0},
		{name: "exact", supply: 1000, chainLen: 1, missing: 1},
		{name: "crossed", supply: 1500, chainLen: 1, missing: 1},
		{name: "sealed", supply: 1500, chainLen: 2, missing: 0},
		{name: "jump", supply: 3700, chainLen: 2, missing: 2},
		{name: "ahead", supply: 500, chainLen: 4, missing: 0},
	}

	t.Log("Given the need to know how many blocks are owed.")
	{
		p := milestone.New(genesis.DefaultMilestoneSize)

		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen the supply is %d with %d blocks.", testID, tst.supply, tst.chainLen)
			{
				f := func(t *testing.T) {
					got := p.Missing(tst.supply, tst.chainLen)
					if got != tst.missing {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.missing)
						t.Fatalf("\t%s\tTest %d:\tShould get the number of missing blocks.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the number of missing blocks.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestPlan(t *testing.T) {
	t.Log("Given the need to seal blocks when milestones are crossed.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the supply jumps over two milestones.", testID)
		{
			c, err := chain.LoadOrInit(chain.Config{Serializer: memory.New(), Genesis: genesis.Default()})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the chain: %v", failed, testID, err)
			}

			p := milestone.New(0)
			if p.Size() != genesis.DefaultMilestoneSize {
				t.Fatalf("\t%s\tTest %d:\tShould fall back to the default size.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould fall back to the default size.", success, testID)

			pending := []database.Tx{database.NewMintTx(database.UsernameToAddress("alice"), 2100)}

			blocks, err := p.Plan(c, 2100, pending)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to plan the blocks: %v", failed, testID, err)
			}
			if len(blocks) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould plan two blocks, got %d.", failed, testID, len(blocks))
			}
			t.Logf("\t%s\tTest %d:\tShould plan two blocks.", success, testID)

			if len(blocks[0].Transactions) != 1 || len(blocks[1].Transactions) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould seal the pending transactions in the first block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould seal the pending transactions in the first block.", success, testID)

			if err := c.Persist(blocks); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to persist the blocks: %v", failed, testID, err)
			}
			c.Install(blocks)

			if again, err := p.Plan(c, 2100, nil); err != nil || len(again) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould plan nothing on a second run, got %d.", failed, testID, len(again))
			}
			t.Logf("\t%s\tTest %d:\tShould plan nothing on a second run.", success, testID)

			if c.Len() != int(p.Expected(2100))+1 {
				t.Fatalf("\t%s\tTest %d:\tShould hold one block per milestone past genesis.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hold one block per milestone past genesis.", success, testID)
		}
	}
}

func TestPlanLimit(t *testing.T) {
	t.Log("Given the need to bound the blocks sealed by one operation.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the supply owes more than the maximum number of blocks.", testID)
		{
			c, err := chain.LoadOrInit(chain.Config{Serializer: memory.New(), Genesis: genesis.Default()})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the chain: %v", failed, testID, err)
			}

			p := milestone.New(1)

			blocks, err := p.Plan(c, milestone.MaxBlocks, nil)
			if err != nil || len(blocks) != milestone.MaxBlocks {
				t.Fatalf("\t%s\tTest %d:\tShould plan exactly the maximum: %d %v", failed, testID, len(blocks), err)
			}
			t.Logf("\t%s\tTest %d:\tShould plan exactly the maximum.", success, testID)

			blocks, err = p.Plan(c, math.MaxUint64, nil)
			if !errors.Is(err, database.ErrInvalidAmount) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a supply owing too many blocks: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a supply owing too many blocks.", success, testID)

			if len(blocks) != 0 || c.Len() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the chain untouched.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the chain untouched.", success, testID)
		}
	}
}

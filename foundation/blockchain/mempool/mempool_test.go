package mempool_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	"github.com/ardanlabs/minicoin/foundation/blockchain/mempool"
	"github.com/ardanlabs/minicoin/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCRUD(t *testing.T) {
	type table struct {
		name string
		txs  []database.Tx
	}

	tt := []table{
		{
			name: "basic",
			txs: []database.Tx{
				database.NewMintTx(database.UsernameToAddress("alice"), 1500),
				database.NewTransferTx(database.UsernameToAddress("alice"), "0xdeadbeef", 200),
				database.NewMintTx(database.UsernameToAddress("bob"), 10),
			},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					store := memory.New()

					mp, err := mempool.New(store)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to construct the mempool: %v", failed, testID, err)
					}

					for _, tx := range tst.txs {
						pool := mp.With(tx)
						if err := mp.Persist(pool); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to add new transaction: %v", failed, testID, err)
						}
						mp.Replace(pool)
						t.Logf("\t%s\tTest %d:\tShould be able to add new transaction: %s", success, testID, tx)
					}

					for i, tx := range mp.Copy() {
						if tx != tst.txs[i] {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.txs[i])
							t.Fatalf("\t%s\tTest %d:\tShould keep the transactions in order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould keep the transactions in order.", success, testID)

					reloaded, err := mempool.New(store)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to reload the mempool: %v", failed, testID, err)
					}

					if reloaded.Count() != len(tst.txs) {
						t.Fatalf("\t%s\tTest %d:\tShould reload %d transactions, got %d.", failed, testID, len(tst.txs), reloaded.Count())
					}
					t.Logf("\t%s\tTest %d:\tShould reload the transactions.", success, testID)

					if err := mp.Persist(nil); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to clear the pool: %v", failed, testID, err)
					}
					mp.Replace(nil)

					cleared, err := mempool.New(store)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to reload the mempool: %v", failed, testID, err)
					}

					if mp.Count() != 0 || cleared.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould have an empty pool once sealed.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould have an empty pool once sealed.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestFailedWrite(t *testing.T) {
	t.Log("Given the need to keep the pool unchanged when storage fails.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the pending document can't be written.", testID)
		{
			store := memory.New()

			mp, err := mempool.New(store)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the mempool: %v", failed, testID, err)
			}

			tx := database.NewMintTx(database.UsernameToAddress("alice"), 10)
			next := mp.With(tx)
			if len(next) != 1 || mp.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould stage without changing the pool.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould stage without changing the pool.", success, testID)

			store.SetWriteError(memory.DocPending, errors.New("disk full"))

			if err := mp.Persist(next); !errors.Is(err, database.ErrPersistence) {
				t.Fatalf("\t%s\tTest %d:\tShould get a persistence error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a persistence error.", success, testID)

			if mp.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould not add the transaction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not add the transaction.", success, testID)
		}
	}
}

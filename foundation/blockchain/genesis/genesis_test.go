package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/minicoin/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Load(t *testing.T) {
	t.Log("Given the need to load the genesis information.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the genesis file does not exist.", testID)
		{
			gen, err := genesis.Load(filepath.Join(t.TempDir(), "genesis.json"))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to fall back to defaults: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to fall back to defaults.", success, testID)

			if gen != genesis.Default() {
				t.Fatalf("\t%s\tTest %d:\tShould get the default genesis, got %+v.", failed, testID, gen)
			}
			t.Logf("\t%s\tTest %d:\tShould get the default genesis.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the genesis file overrides the milestone.", testID)
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(`{"chain_id": 7, "milestone_size": 50}`), 0600); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write the file: %v", failed, testID, err)
			}

			gen, err := genesis.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the file: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to load the file.", success, testID)

			if gen.ChainID != 7 || gen.MilestoneSize != 50 || !gen.Date.Equal(genesis.Default().Date) {
				t.Fatalf("\t%s\tTest %d:\tShould merge the file over the defaults, got %+v.", failed, testID, gen)
			}
			t.Logf("\t%s\tTest %d:\tShould merge the file over the defaults.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the genesis file sets a zero milestone.", testID)
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(`{"milestone_size": 0}`), 0600); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write the file: %v", failed, testID, err)
			}

			if _, err := genesis.Load(path); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the file.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the file.", success, testID)
		}
	}
}

// This program performs administrative tasks for the ledger service.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/minicoin/app/tooling/admin/commands"
	"github.com/ardanlabs/minicoin/foundation/blockchain/chain"
	"github.com/ardanlabs/minicoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/minicoin/foundation/blockchain/state"
	"github.com/ardanlabs/minicoin/foundation/blockchain/storage"
	"github.com/ardanlabs/minicoin/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("startup", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args conf.Args
		DB   struct {
			Engine string `conf:"default:disk"`
			Path   string `conf:"default:zblock/ledger"`
		}
		State struct {
			GenesisPath   string `conf:"default:zblock/genesis.json"`
			CorruptPolicy string `conf:"default:reject"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "MINICOIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	strg, err := storage.Open(cfg.DB.Engine, cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	// The chain is checked before the ledger is loaded since a corrupt
	// chain keeps the ledger from loading.
	if cfg.Args.Num(0) == "verify" {
		defer strg.Close()
		return commands.Verify(strg)
	}

	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		strg.Close()
		return fmt.Errorf("loading genesis: %w", err)
	}

	policy, err := chain.ParsePolicy(cfg.State.CorruptPolicy)
	if err != nil {
		strg.Close()
		return err
	}

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	st, err := state.New(state.Config{
		Storage:       strg,
		Genesis:       gen,
		CorruptPolicy: policy,
		EvHandler:     ev,
	})
	if err != nil {
		strg.Close()
		return err
	}
	defer st.Shutdown()

	return processCommands(cfg.Args, st)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, st *state.State) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(args.Num(1), st); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	case "chain":
		if err := commands.Chain(st); err != nil {
			return fmt.Errorf("getting chain: %w", err)
		}

	case "seal":
		if err := commands.Seal(st); err != nil {
			return fmt.Errorf("sealing blocks: %w", err)
		}

	default:
		fmt.Println("verify: check the hash links of the stored chain")
		fmt.Println("bals:   print the balances, optionally for one username")
		fmt.Println("chain:  print the blocks of the chain")
		fmt.Println("seal:   seal any blocks owed for the coin supply")
		return commands.ErrHelp
	}

	return nil
}

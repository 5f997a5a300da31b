package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/minicoin/foundation/blockchain/chain"
	"github.com/ardanlabs/minicoin/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var verifyChain bool

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the blocks of the chain.",
	Run:   chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.Flags().BoolVar(&verifyChain, "verify", false, "Check the hash links of the chain locally.")
}

func chainRun(cmd *cobra.Command, args []string) {
	var blocks []database.Block
	if err := get("/v1/chain", &blocks); err != nil {
		log.Fatal(err)
	}

	for _, blk := range blocks {
		fmt.Printf("Block[%d] Hash[%s] Prev[%s] Trans[%d]\n", blk.Index, blk.Hash, blk.PrevHash, len(blk.Transactions))
		for _, tx := range blk.Transactions {
			fmt.Printf("\t%s\n", tx)
		}
	}

	if !verifyChain {
		return
	}

	if err := chain.Verify(blocks); err != nil {
		log.Fatalf("chain NOT valid: %s", err)
	}
	fmt.Println("chain valid")
}

package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var buyAmount int64

var buyCmd = &cobra.Command{
	Use:   "buy <username>",
	Short: "Buy coins for the username.",
	Args:  cobra.ExactArgs(1),
	Run:   buyRun,
}

func init() {
	rootCmd.AddCommand(buyCmd)
	buyCmd.Flags().Int64VarP(&buyAmount, "amount", "v", 0, "Number of coins to buy.")
}

func buyRun(cmd *cobra.Command, args []string) {
	req := struct {
		Username string `json:"username"`
		Amount   int64  `json:"amount"`
	}{
		Username: args[0],
		Amount:   buyAmount,
	}

	var resp struct {
		Message    string `json:"message"`
		NewBalance uint64 `json:"new_balance"`
	}
	if err := post("/v1/buy", req, &resp); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s: new balance %d\n", resp.Message, resp.NewBalance)
}

package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	from   string
	to     string
	amount int64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send coins to a user or address.",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&from, "from", "f", "", "Username sending the coins.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Username or address receiving the coins.")
	sendCmd.Flags().Int64VarP(&amount, "amount", "v", 0, "Number of coins to send.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) {
	req := struct {
		FromUser string `json:"from_user"`
		To       string `json:"to"`
		Amount   int64  `json:"amount"`
	}{
		FromUser: from,
		To:       to,
		Amount:   amount,
	}

	var resp struct {
		Message string  `json:"message"`
		From    account `json:"from"`
		To      account `json:"to"`
		Sealed  []struct {
			Index uint64 `json:"index"`
			Hash  string `json:"hash"`
		} `json:"sealed"`
	}
	if err := post("/v1/send", req, &resp); err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.Message)
	fmt.Printf("%s: %d\n", resp.From.Username, resp.From.Balance)
	fmt.Printf("%s: %d\n", resp.To.Username, resp.To.Balance)
	for _, blk := range resp.Sealed {
		fmt.Printf("sealed block %d: %s\n", blk.Index, blk.Hash)
	}
}

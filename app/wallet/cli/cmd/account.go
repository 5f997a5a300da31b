package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

type account struct {
	Username string `json:"username"`
	Address  string `json:"address"`
	Balance  uint64 `json:"balance"`
}

var joinCmd = &cobra.Command{
	Use:   "join <username>",
	Short: "Create an account for the username.",
	Args:  cobra.ExactArgs(1),
	Run:   joinRun,
}

var walletCmd = &cobra.Command{
	Use:   "balance <username>",
	Short: "Print the balance of the username.",
	Args:  cobra.ExactArgs(1),
	Run:   walletRun,
}

func init() {
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(walletCmd)
}

func joinRun(cmd *cobra.Command, args []string) {
	req := struct {
		Username string `json:"username"`
	}{
		Username: args[0],
	}

	var resp struct {
		Message string `json:"message"`
		Address string `json:"address"`
	}
	if err := post("/v1/join", req, &resp); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s: %s\n", resp.Message, resp.Address)
}

func walletRun(cmd *cobra.Command, args []string) {
	var act account
	if err := get("/v1/wallet/"+args[0], &act); err != nil {
		log.Fatal(err)
	}

	fmt.Println("For Account:", act.Address)
	fmt.Println(act.Balance)
}

// This program is a command line client for the ledger service.
package main

import "github.com/ardanlabs/minicoin/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}

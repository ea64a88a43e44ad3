// Command purchyctl provisions, serves and reports on the purchy ledger
package main

import "github.com/pedro-hbl/purchy-ledger/cmd/purchyctl/commands"

func main() {
	commands.Execute()
}

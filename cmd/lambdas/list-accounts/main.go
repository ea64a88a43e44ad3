// Command list-accounts is the Lambda that lists active accounts
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pedro-hbl/purchy-ledger/internal/api"
	"github.com/pedro-hbl/purchy-ledger/internal/app"
)

var handler api.HandlerFunc

func init() {
	a, err := app.Load(context.Background())
	if err != nil {
		fmt.Printf("Error initializing list-accounts: %v\n", err)
		os.Exit(1)
	}
	handler = a.Handler.Handler(api.OpListAccounts)
}

func main() {
	lambda.Start(handler)
}

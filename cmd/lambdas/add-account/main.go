// Command add-account is the Lambda that records a new account
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
		fmt.Printf("Error initializing add-account: %v\n", err)
		os.Exit(1)
	}
	handler = a.Handler.Handler(api.OpCreateAccount)
}

func main() {
	lambda.Start(handler)
}

// Command edit-purchy is the Lambda that edits or moves a purchy
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
		fmt.Printf("Error initializing edit-purchy: %v\n", err)
		os.Exit(1)
	}
	handler = a.Handler.Handler(api.OpEditPurchy)
}

func main() {
	lambda.Start(handler)
}

// Command api is a single Lambda serving every route behind an API Gateway
// proxy integration
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pedro-hbl/purchy-ledger/internal/api"
	"github.com/pedro-hbl/purchy-ledger/internal/app"
)

var router api.HandlerFunc

func init() {
	a, err := app.Load(context.Background())
	if err != nil {
		fmt.Printf("Error initializing api: %v\n", err)
		os.Exit(1)
	}
	router = a.Handler.Router()
}

func main() {
	lambda.Start(router)
}

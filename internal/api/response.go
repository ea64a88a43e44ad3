package api

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pedro-hbl/purchy-ledger/internal/ledger"
	"github.com/pedro-hbl/purchy-ledger/pkg/databases/models"
	"github.com/shopspring/decimal"
)

func corsHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
	}
}

func jsonResponse(status int, body interface{}) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload = []byte(`{"message":"Internal server error","error":"failed to encode response"}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders(),
		Body:       string(payload),
	}
}

func emptyResponse(status int) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders(),
	}
}

type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type accountCreatedBody struct {
	Message string          `json:"message"`
	Account *models.Account `json:"account"`
}

type editBody struct {
	Message string     `json:"message"`
	Item    purchyItem `json:"item"`
}

// purchyItem is the wire form of a purchy. Decimals become JSON numbers here
// and nowhere else.
type purchyItem struct {
	AccountID   string   `json:"account_id"`
	PurchyTS    string   `json:"purchy_ts"`
	PurchyID    string   `json:"purchy_id,omitempty"`
	PurchyDate  string   `json:"purchy_date,omitempty"`
	Note        string   `json:"note,omitempty"`
	AccountName string   `json:"account_name,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	Rate        *float64 `json:"rate,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
}

type listBody struct {
	Count       int          `json:"count"`
	TotalWeight float64      `json:"total_weight"`
	TotalAmount float64      `json:"total_amount"`
	Items       []purchyItem `json:"items"`
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func toItem(p *models.Purchy) purchyItem {
	return purchyItem{
		AccountID:   p.AccountID,
		PurchyTS:    p.PurchyTS,
		PurchyID:    p.PurchyID,
		PurchyDate:  p.PurchyDate,
		Note:        p.Note,
		AccountName: p.AccountName,
		Weight:      toFloat(p.Weight),
		Rate:        toFloat(p.Rate),
		Amount:      toFloat(p.Amount),
	}
}

func toListBody(res *ledger.ListResult) listBody {
	items := make([]purchyItem, 0, len(res.Items))
	for _, p := range res.Items {
		items = append(items, toItem(p))
	}
	return listBody{
		Count:       res.Count,
		TotalWeight: res.TotalWeight.InexactFloat64(),
		TotalAmount: res.TotalAmount.InexactFloat64(),
		Items:       items,
	}
}

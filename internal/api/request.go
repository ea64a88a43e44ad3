package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// parseBody decodes the request body as a JSON object. A missing or blank
// body yields a nil map and no error. Numbers are kept as json.Number so no
// precision is lost before they reach models.ParseDecimal.
func parseBody(req events.APIGatewayProxyRequest) (map[string]interface{}, error) {
	raw := req.Body
	if req.IsBase64Encoded && raw != "" {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to base64-decode body: %w", err)
		}
		raw = string(decoded)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()

	var body interface{}
	if err := decoder.Decode(&body); err != nil {
		return nil, fmt.Errorf("JSON decode error: %w", err)
	}
	if decoder.More() {
		return nil, errors.New("JSON decode error: trailing data after object")
	}

	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, errors.New("body must be a JSON object")
	}
	return obj, nil
}

// stringField reads key as text. Numbers and booleans are rendered; absent
// and null values are empty.
func stringField(body map[string]interface{}, key string) string {
	switch v := body[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// param reads key from the query string, falling back to the body
func param(req events.APIGatewayProxyRequest, body map[string]interface{}, key string) string {
	if v := req.QueryStringParameters[key]; v != "" {
		return v
	}
	return stringField(body, key)
}

// rawField returns the body value of the first key present with a non-null value
func rawField(body map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := body[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// Package httpx builds API Gateway v2 JSON responses.
package httpx

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON marshals v into a response with the given status code.
func JSON(status int, v any) (events.APIGatewayV2HTTPResponse, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Error(500, "encode response")
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(b),
	}, nil
}

// Error returns a JSON error envelope with the given status code.
func Error(status int, msg string) (events.APIGatewayV2HTTPResponse, error) {
	b, _ := json.Marshal(errorBody{Error: msg})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(b),
	}, nil
}

package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"legallens-backend/internal/bootstrap"
	"legallens-backend/internal/shared/config"
	"legallens-backend/internal/shared/server/respond"
	"legallens-backend/internal/shared/telemetry"
)

// adapter is built on the first successful invocation and reused while the
// container stays warm. A failed build is retried on the next invocation.
var (
	mu      sync.Mutex
	adapter *ginadapter.GinLambdaV2
)

func router() (*ginadapter.GinLambdaV2, error) {
	mu.Lock()
	defer mu.Unlock()
	if adapter != nil {
		return adapter, nil
	}
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		return nil, err
	}
	adapter = ginadapter.NewV2(app.Router)
	return adapter, nil
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	proxy, err := router()
	if err != nil {
		telemetry.Error("lambda.bootstrap.failed", map[string]any{"error": err.Error()})
		body, _ := json.Marshal(respond.ErrorResponse{Error: respond.ErrorBody{
			Code:    "unavailable",
			Message: "Service is starting, retry shortly.",
		}})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusServiceUnavailable,
			Body:       string(body),
			Headers:    map[string]string{"Content-Type": "application/json"},
		}, nil
	}
	return proxy.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handler)
}

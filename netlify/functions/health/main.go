package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/averyrot/shade-checkout-api/app"
	"github.com/averyrot/shade-checkout-api/shopify"
	"github.com/averyrot/shade-checkout-api/shopify/adminapi"
)

const (
	serviceName    = "shade-checkout-api"
	serviceVersion = "1.0.0"
)

func presence(value string) string {
	if value != "" {
		return "✓ Set"
	}
	return "✗ Missing"
}

// handler always answers 200; missing configuration and upstream failures
// are reported in the body, never as an error status.
func handler(ctx context.Context, request events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error) {
	config, configErr := shopify.ConfigFromEnv()

	shopifyInfo := map[string]any{"connected": false}
	if configErr == nil {
		shop, err := adminapi.Shop(ctx, config)
		if err != nil {
			shopifyInfo = map[string]any{"connected": false, "error": err.Error()}
		} else {
			shopifyInfo = map[string]any{
				"connected":  true,
				"shopName":   shop.Name,
				"shopDomain": shop.Domain,
				"plan":       shop.PlanName,
			}
		}
	}

	return app.NetlifyJsonResponse(200, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
		"version":   serviceVersion,
		"config": map[string]string{
			"shopifyStore": presence(config.Domain),
			"apiToken":     presence(config.AccessToken),
		},
		"shopify": shopifyInfo,
	})
}

func main() {
	lambda.Start(app.ProfilingMiddleware(
		app.TimeoutMiddleware(app.CacheMiddleware(app.CorsMiddleware(app.CheckEnvMiddleware(app.RecoverMiddleware(handler)), "GET"))),
		"health",
	))
}

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/averyrot/shade-checkout-api/app"
	"github.com/averyrot/shade-checkout-api/checkout"
	"github.com/averyrot/shade-checkout-api/rabbitmq"
	"github.com/averyrot/shade-checkout-api/shopify"
)

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error) {
	// Plain GETs describe the endpoint without touching anything.
	if request.HTTPMethod == "GET" && !app.IsCronRequest(request) {
		return app.NetlifyJsonResponse(200, map[string]any{
			"status":      "ok",
			"message":     "Draft order cleanup endpoint",
			"description": "Deletes draft orders older than 30 minutes",
			"schedule":    "Runs every 30 minutes via scheduled function",
		})
	}

	if !app.CronAuthorized(request, os.Getenv("CRON_SECRET")) {
		return app.NetlifyJsonResponse(401, map[string]any{"error": "Unauthorized"})
	}

	config, err := shopify.ConfigFromEnv()
	if err != nil {
		return app.NetlifyLogAndJsonResponse(500, map[string]any{"error": "API not configured"}, err)
	}

	log.Println("Starting draft order cleanup...")
	result, err := checkout.Sweep(ctx, config, checkout.SweepOptions{Tag: config.CleanupTag})
	if err != nil {
		return app.NetlifyLogAndJsonResponse(500, map[string]any{
			"error":   "Cleanup failed",
			"message": err.Error(),
		}, err)
	}

	// The per-item details are logged but kept out of the response.
	if details, marshalErr := json.Marshal(result.Details); marshalErr == nil {
		log.Printf("Cleanup complete: checked=%d deleted=%d failed=%d details=%s",
			result.Checked, result.Deleted, result.Failed, details)
	}

	if rabbitmq.Enabled() {
		event, _ := json.Marshal(map[string]any{
			"total_checked": result.Checked,
			"deleted":       result.Deleted,
			"failed":        result.Failed,
			"cutoff_time":   result.CutoffTime.Format(time.RFC3339),
		})
		if err := rabbitmq.PublishMessage(ctx, "storefront.checkout", "draft_order.cleanup", string(event), amqp.Table{
			"X-Sweep-Deleted": int64(result.Deleted),
		}); err != nil {
			log.Printf("Could not publish draft_order.cleanup event: %v", err)
		}
	}

	return app.NetlifyJsonResponse(200, map[string]any{
		"success":     true,
		"message":     "Draft order cleanup complete",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"cutoff_time": result.CutoffTime.UTC().Format(time.RFC3339),
		"results": map[string]any{
			"total_checked": result.Checked,
			"deleted":       result.Deleted,
			"failed":        result.Failed,
		},
	})
}

func main() {
	lambda.Start(app.ProfilingMiddleware(
		app.TimeoutMiddleware(app.CacheMiddleware(app.CorsMiddleware(app.CheckEnvMiddleware(app.RecoverMiddleware(handler)), "GET", "POST"))),
		"cleanup-drafts",
	))
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/averyrot/shade-checkout-api/app"
	"github.com/averyrot/shade-checkout-api/checkout"
	"github.com/averyrot/shade-checkout-api/rabbitmq"
	"github.com/averyrot/shade-checkout-api/shopify"
	"github.com/averyrot/shade-checkout-api/shopify/adminapi"
)

// errorDetails keeps the upstream body as raw JSON when possible so the
// storefront sees exactly what Shopify returned.
func errorDetails(body string) any {
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	return body
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error) {
	config, err := shopify.ConfigFromEnv()
	if err != nil {
		return app.NetlifyLogAndJsonResponse(500, map[string]any{"error": "API not configured"}, err)
	}

	createRequest, err := checkout.ParseCreateRequest(request.Body)
	if err != nil {
		if errors.Is(err, checkout.ErrNoLineItems) {
			return app.NetlifyLogAndJsonResponse(400, map[string]any{"error": "line_items array is required"}, err)
		}
		return app.NetlifyLogAndJsonResponse(400, map[string]any{"error": "Invalid JSON in request body"}, err)
	}

	input := checkout.BuildDraftOrder(createRequest, config.Tags)
	if payload, marshalErr := json.Marshal(input); marshalErr == nil {
		log.Printf("Creating draft order: %s", payload)
	}

	draftOrder, err := adminapi.DraftOrderCreate(ctx, config, input)
	if err != nil {
		var apiErr *adminapi.APIError
		if errors.As(err, &apiErr) {
			return app.NetlifyLogAndJsonResponse(apiErr.StatusCode, map[string]any{
				"error":   apiErr.Message(),
				"details": errorDetails(apiErr.Body),
			}, err)
		}
		return app.NetlifyLogAndJsonResponse(500, map[string]any{
			"error":   "Internal server error",
			"message": err.Error(),
		}, err)
	}
	log.Printf("Draft order created: %d", draftOrder.Id)

	if rabbitmq.Enabled() {
		event, _ := json.Marshal(map[string]any{
			"draft_order_id": draftOrder.Id,
			"invoice_url":    draftOrder.InvoiceUrl,
			"total_price":    draftOrder.TotalPrice,
		})
		if err := rabbitmq.PublishMessage(ctx, "storefront.checkout", "draft_order.created", string(event), amqp.Table{
			"X-Draft-Order-Id": draftOrder.Id,
		}); err != nil {
			log.Printf("Could not publish draft_order.created event: %v", err)
		}
	}

	return app.NetlifyJsonResponse(200, map[string]any{
		"success":        true,
		"draft_order_id": draftOrder.Id,
		"invoice_url":    draftOrder.InvoiceUrl,
		"total_price":    draftOrder.TotalPrice,
		"subtotal_price": draftOrder.SubtotalPrice,
		"total_tax":      draftOrder.TotalTax,
	})
}

func main() {
	lambda.Start(app.ProfilingMiddleware(
		app.TimeoutMiddleware(app.CacheMiddleware(app.CorsMiddleware(app.CheckEnvMiddleware(app.RecoverMiddleware(handler)), "POST"))),
		"create-draft-order",
	))
}

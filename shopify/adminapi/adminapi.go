// Package adminapi is a thin client for the Shopify Admin REST API, covering
// the draft-orders and shop resources.
package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/averyrot/shade-checkout-api/app"
	"github.com/averyrot/shade-checkout-api/helpers"
	"github.com/averyrot/shade-checkout-api/shopify"
	"github.com/averyrot/shade-checkout-api/shopify/adminapi/types"
)

const apiVersion = "2024-01"

// maxListPages bounds cursor pagination so a runaway upstream can never keep
// a sweep listing forever.
const maxListPages = 10

var restRequestCacheKey = []any{"Shopify", "RestRequest"}

// APIError carries a non-2xx upstream response so handlers can relay the
// status code and body to their own caller.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("non-2xx response from Shopify Admin API: [%d] %s", e.StatusCode, e.Body)
}

// Message extracts the upstream "errors" field when the body is JSON,
// falling back to the raw body.
func (e *APIError) Message() string {
	var parsed any
	if err := json.Unmarshal([]byte(e.Body), &parsed); err != nil {
		return e.Body
	}
	upstreamErrors, err := helpers.TraverseWithError[any](parsed, []any{"errors"}, nil)
	if err != nil || upstreamErrors == nil {
		return e.Body
	}
	if msg, isString := upstreamErrors.(string); isString {
		return msg
	}
	msgJson, marshalErr := json.Marshal(upstreamErrors)
	if marshalErr != nil {
		return e.Body
	}
	return string(msgJson)
}

func restRequest(ctx context.Context) helpers.RestFunc {
	if fn, found := app.GetCacheValue[helpers.RestFunc](ctx, restRequestCacheKey, nil); found {
		return fn
	}
	return helpers.RestRequest
}

func baseURL(config *shopify.Config) string {
	return fmt.Sprintf("https://%s/admin/api/%s", config.Domain, apiVersion)
}

func call(ctx context.Context, config *shopify.Config, method string, url string, payload any) (*helpers.RestResponse, error) {
	if config == nil || config.Domain == "" || config.AccessToken == "" {
		return nil, fmt.Errorf("incomplete Shopify configuration for Admin API call")
	}

	headers := map[string]string{
		"X-Shopify-Access-Token": config.AccessToken,
	}
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error marshalling Shopify Admin API payload:\n>>> %w", err)
		}
		headers["Content-Type"] = "application/json"
	}

	response, err := restRequest(ctx)(ctx, method, url, headers, body)
	if err != nil {
		return nil, fmt.Errorf("error calling Shopify Admin API %s %s:\n>>> %w", method, url, err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &APIError{StatusCode: response.StatusCode, Body: string(response.Body)}
	}
	return response, nil
}

func decode(body []byte, target any) error {
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("invalid response format from Shopify Admin API:\n>>> %s\n>>> %w", body, err)
	}
	return nil
}

// nextPageURL pulls the rel="next" cursor URL out of a Link response header.
func nextPageURL(header http.Header) string {
	for _, link := range strings.Split(header.Get("Link"), ",") {
		urlPart, params, found := strings.Cut(link, ";")
		if !found || !strings.Contains(params, `rel="next"`) {
			continue
		}
		urlPart = strings.TrimSpace(urlPart)
		return strings.TrimSuffix(strings.TrimPrefix(urlPart, "<"), ">")
	}
	return ""
}

type draftOrderEnvelope struct {
	DraftOrder types.DraftOrder `json:"draft_order"`
}

type draftOrderInputEnvelope struct {
	DraftOrder types.DraftOrderInput `json:"draft_order"`
}

type draftOrderListEnvelope struct {
	DraftOrders []types.DraftOrder `json:"draft_orders"`
}

type shopEnvelope struct {
	Shop types.Shop `json:"shop"`
}

func DraftOrderCreate(ctx context.Context, config *shopify.Config, input *types.DraftOrderInput) (*types.DraftOrder, error) {
	url := fmt.Sprintf("%s/draft_orders.json", baseURL(config))
	response, err := call(ctx, config, "POST", url, draftOrderInputEnvelope{DraftOrder: *input})
	if err != nil {
		return nil, err
	}
	var envelope draftOrderEnvelope
	if err := decode(response.Body, &envelope); err != nil {
		return nil, err
	}
	return &envelope.DraftOrder, nil
}

// DraftOrdersOpen lists open draft orders, chasing the Link-header cursor
// until the last page or maxListPages, whichever comes first.
func DraftOrdersOpen(ctx context.Context, config *shopify.Config) ([]types.DraftOrder, error) {
	url := fmt.Sprintf("%s/draft_orders.json?status=open&limit=250", baseURL(config))
	var draftOrders []types.DraftOrder
	for page := 0; url != "" && page < maxListPages; page++ {
		response, err := call(ctx, config, "GET", url, nil)
		if err != nil {
			return nil, err
		}
		var envelope draftOrderListEnvelope
		if err := decode(response.Body, &envelope); err != nil {
			return nil, err
		}
		draftOrders = append(draftOrders, envelope.DraftOrders...)
		url = nextPageURL(response.Header)
	}
	return draftOrders, nil
}

func DraftOrderDelete(ctx context.Context, config *shopify.Config, id int64) error {
	url := fmt.Sprintf("%s/draft_orders/%d.json", baseURL(config), id)
	_, err := call(ctx, config, "DELETE", url, nil)
	return err
}

func Shop(ctx context.Context, config *shopify.Config) (*types.Shop, error) {
	url := fmt.Sprintf("%s/shop.json", baseURL(config))
	response, err := call(ctx, config, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	var envelope shopEnvelope
	if err := decode(response.Body, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Shop, nil
}

// SetRestRequest injects fn as the outbound HTTP function for the current
// request cache; tests use it to stub the Admin API.
func SetRestRequest(ctx context.Context, fn helpers.RestFunc) func() {
	return app.SetCacheValue(ctx, restRequestCacheKey, fn)
}

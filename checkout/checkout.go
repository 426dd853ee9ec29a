// Package checkout turns storefront checkout requests into Shopify draft
// orders and sweeps the stale ones away.
package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/averyrot/shade-checkout-api/helpers"
	"github.com/averyrot/shade-checkout-api/shopify/adminapi/types"
)

// DefaultTitle is used for freeform items that arrive without a title.
const DefaultTitle = "Custom Shade"

// ErrNoLineItems marks a request whose line item array is missing, not an
// array, or empty. No outbound call may happen after it.
var ErrNoLineItems = errors.New("line_items array is required")

type CreateRequest struct {
	Items []map[string]any
	Note  string
	Email string
}

// ParseCreateRequest validates the raw JSON body of a creation request.
// It accepts "items" as a fallback alias for "line_items" and
// "customer_email" as a fallback for "customer.email".
func ParseCreateRequest(body string) (*CreateRequest, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, fmt.Errorf("invalid JSON in request body:\n>>> %w", err)
	}

	rawItems, found := data["line_items"]
	if !found {
		rawItems = data["items"]
	}
	itemList, isList := rawItems.([]any)
	if !isList || len(itemList) == 0 {
		return nil, ErrNoLineItems
	}

	items := make([]map[string]any, 0, len(itemList))
	for _, rawItem := range itemList {
		item, isMap := rawItem.(map[string]any)
		if !isMap {
			item = map[string]any{}
		}
		items = append(items, item)
	}

	email := helpers.Traverse(data, []any{"customer", "email"}, "")
	if email == "" {
		email = helpers.Traverse(data, []any{"customer_email"}, "")
	}

	return &CreateRequest{
		Items: items,
		Note:  helpers.Traverse(data, []any{"note"}, ""),
		Email: email,
	}, nil
}

// BuildDraftOrder assembles the outbound draft order payload from a parsed
// request. Note, customer and tags are attached only when present.
func BuildDraftOrder(request *CreateRequest, tags string) *types.DraftOrderInput {
	lineItems := make([]types.DraftOrderLineItem, len(request.Items))
	for i, item := range request.Items {
		lineItems[i] = buildLineItem(item)
	}

	input := &types.DraftOrderInput{
		LineItems:                 lineItems,
		Note:                      request.Note,
		Tags:                      tags,
		UseCustomerDefaultAddress: true,
	}
	if request.Email != "" {
		input.Customer = &types.DraftOrderCustomer{Email: request.Email}
	}
	return input
}

func buildLineItem(item map[string]any) types.DraftOrderLineItem {
	lineItem := types.DraftOrderLineItem{
		Quantity:   parseQuantity(item["quantity"]),
		Properties: buildProperties(item["properties"]),
	}

	price := stringValue(item["price"])
	if variantId, found := parseVariantId(item["variant_id"]); found {
		// Referencing the variant keeps the product image in the external
		// checkout; the explicit price overrides the variant's default.
		lineItem.VariantId = helpers.Int64Ptr(variantId)
		lineItem.Price = price
	} else {
		lineItem.Title = stringValue(item["title"])
		if lineItem.Title == "" {
			lineItem.Title = DefaultTitle
		}
		lineItem.Price = price
		lineItem.RequiresShipping = true
		lineItem.Taxable = true
	}
	return lineItem
}

// parseQuantity coerces a JSON number or numeric string to an integer,
// defaulting to 1 when absent, unparsable or zero.
func parseQuantity(value any) int {
	quantity := 0
	switch typed := value.(type) {
	case float64:
		quantity = int(typed)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64); err == nil {
			quantity = int(parsed)
		}
	}
	if quantity == 0 {
		return 1
	}
	return quantity
}

func parseVariantId(value any) (int64, bool) {
	switch typed := value.(type) {
	case float64:
		if typed != 0 {
			return int64(typed), true
		}
	case string:
		if parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64); err == nil && parsed != 0 {
			return parsed, true
		}
	}
	return 0, false
}

// buildProperties converts the properties object to Shopify's array form.
// Entries with a falsy value or a key prefixed "_" (internal storefront
// state) are dropped; surviving values are stringified.
func buildProperties(value any) []types.Property {
	properties := []types.Property{}
	object, isMap := value.(map[string]any)
	if !isMap {
		return properties
	}

	names := make([]string, 0, len(object))
	for name := range object {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.HasPrefix(name, "_") || !truthy(object[name]) {
			continue
		}
		properties = append(properties, types.Property{Name: name, Value: stringValue(object[name])})
	}
	return properties
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case string:
		return typed != ""
	case float64:
		return typed != 0
	case bool:
		return typed
	}
	return true
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	}
	return fmt.Sprintf("%v", value)
}

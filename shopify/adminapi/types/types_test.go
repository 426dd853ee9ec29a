package types

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/averyrot/shade-checkout-api/helpers"
)

func TestDraftOrder_TagList(t *testing.T) {
	tests := []struct {
		Title    string
		Tags     string
		Expected []string
	}{
		{Title: "Empty"},
		{Title: "Single", Tags: "storefront", Expected: []string{"storefront"}},
		{Title: "Multiple with spaces", Tags: "storefront, wholesale ,retail", Expected: []string{"storefront", "wholesale", "retail"}},
		{Title: "Stray commas", Tags: ", storefront,,", Expected: []string{"storefront"}},
	}
	for _, tt := range tests {
		t.Run(tt.Title, func(t *testing.T) {
			draftOrder := DraftOrder{Tags: tt.Tags}
			if got := draftOrder.TagList(); !reflect.DeepEqual(got, tt.Expected) {
				t.Fatalf("expected %v, got %v", tt.Expected, got)
			}
		})
	}
}

func TestDraftOrderLineItem_WireShape(t *testing.T) {
	freeform := DraftOrderLineItem{
		Title:            "Custom Shade",
		Price:            "49.99",
		Quantity:         2,
		RequiresShipping: true,
		Taxable:          true,
		Properties:       []Property{},
	}
	freeformJson, err := json.Marshal(freeform)
	if err != nil {
		t.Fatalf("no error expected, but got one: %v", err)
	}
	if strings.Contains(string(freeformJson), "variant_id") {
		t.Fatalf("freeform item must not carry variant_id: %s", freeformJson)
	}
	if !strings.Contains(string(freeformJson), `"properties":[]`) {
		t.Fatalf("properties must serialize as an empty array, not null: %s", freeformJson)
	}

	variant := DraftOrderLineItem{
		VariantId:  helpers.Int64Ptr(123),
		Price:      "19.99",
		Quantity:   1,
		Properties: []Property{{Name: "Width", Value: "30in"}},
	}
	variantJson, err := json.Marshal(variant)
	if err != nil {
		t.Fatalf("no error expected, but got one: %v", err)
	}
	if strings.Contains(string(variantJson), "title") {
		t.Fatalf("variant item must not carry a title: %s", variantJson)
	}
	if !strings.Contains(string(variantJson), `"variant_id":123`) {
		t.Fatalf("expected integer variant_id on the wire: %s", variantJson)
	}
	if strings.Contains(string(variantJson), "requires_shipping") || strings.Contains(string(variantJson), "taxable") {
		t.Fatalf("variant item must not carry freeform flags: %s", variantJson)
	}
}

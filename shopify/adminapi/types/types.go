// Package types mirrors the wire shapes of the Shopify Admin REST resources
// this service reads and writes.
package types

import (
	"strings"
	"time"
)

type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DraftOrderLineItem is one outgoing line of a draft order. Exactly one of
// two shapes is used: a catalog-backed item carries VariantId plus an
// overriding Price and no Title, while a freeform item carries Title, Price,
// RequiresShipping and Taxable. Properties is always present on the wire,
// possibly as an empty array.
type DraftOrderLineItem struct {
	Title            string     `json:"title,omitempty"`
	VariantId        *int64     `json:"variant_id,omitempty"`
	Price            string     `json:"price,omitempty"`
	Quantity         int        `json:"quantity"`
	RequiresShipping bool       `json:"requires_shipping,omitempty"`
	Taxable          bool       `json:"taxable,omitempty"`
	Properties       []Property `json:"properties"`
}

type DraftOrderCustomer struct {
	Email string `json:"email"`
}

type DraftOrderInput struct {
	LineItems                 []DraftOrderLineItem `json:"line_items"`
	Note                      string               `json:"note,omitempty"`
	Customer                  *DraftOrderCustomer  `json:"customer,omitempty"`
	Tags                      string               `json:"tags,omitempty"`
	UseCustomerDefaultAddress bool                 `json:"use_customer_default_address"`
}

// DraftOrder is the external resource as returned by the Admin API. It is
// never persisted here; every read is a fresh fetch.
type DraftOrder struct {
	Id            int64     `json:"id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	InvoiceUrl    string    `json:"invoice_url"`
	TotalPrice    string    `json:"total_price"`
	SubtotalPrice string    `json:"subtotal_price"`
	TotalTax      string    `json:"total_tax"`
	Tags          string    `json:"tags"`
}

// TagList splits the comma-separated Tags field into trimmed tags.
func (d *DraftOrder) TagList() []string {
	if d.Tags == "" {
		return nil
	}
	parts := strings.Split(d.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

type Shop struct {
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	PlanName string `json:"plan_name"`
}

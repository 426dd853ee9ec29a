package helpers

import (
	"strings"
	"testing"
)

func TestTraverse(t *testing.T) {
	tests := []struct {
		Title         string
		Run           func() (any, error)
		Expected      any
		ExpectedError string
	}{
		{
			Title: "slice: OK",
			Run: func() (any, error) {
				return TraverseWithError([]int{1, 2, 3}, []any{1}, 0)
			},
			Expected: 2,
		},
		{
			Title: "slice: out of range",
			Run: func() (any, error) {
				return TraverseWithError([]int{1, 2, 3}, []any{4}, 5)
			},
			Expected:      5,
			ExpectedError: "index 4 out of range 2",
		},
		{
			Title: "map: OK",
			Run: func() (any, error) {
				return TraverseWithError(map[string]any{"a": 1}, []any{"a"}, 1)
			},
			Expected: 1,
		},
		{
			Title: "map: key not found",
			Run: func() (any, error) {
				return TraverseWithError(map[string]any{"a": 1}, []any{"b"}, 2)
			},
			Expected:      2,
			ExpectedError: "key b not found",
		},
		{
			Title: "map: invalid result type",
			Run: func() (any, error) {
				return TraverseWithError(map[string]any{"a": 1}, []any{"a"}, "?")
			},
			Expected:      "?",
			ExpectedError: "could not type assert final value int into string",
		},
		{
			Title: "nested: OK",
			Run: func() (any, error) {
				return TraverseWithError(map[string]any{
					"customer": map[string]any{"email": "a@b.c"},
				}, []any{"customer", "email"}, "")
			},
			Expected: "a@b.c",
		},
		{
			Title: "nested: cannot traverse scalar",
			Run: func() (any, error) {
				return TraverseWithError(map[string]any{"customer": 1}, []any{"customer", "email"}, "")
			},
			Expected:      "",
			ExpectedError: "cannot traverse object of type int",
		},
	}
	for _, tt := range tests {
		t.Run(tt.Title, func(t *testing.T) {
			res, err := tt.Run()
			if tt.ExpectedError == "" && err != nil {
				t.Fatalf("no error expected, but got one: %v", err)
			}
			if tt.ExpectedError != "" {
				if err == nil {
					t.Fatalf("expected '%s' in error, but got no error", tt.ExpectedError)
				} else if !strings.Contains(err.Error(), tt.ExpectedError) {
					t.Fatalf("expected '%s' in error, but got: %v", tt.ExpectedError, err)
				}
			}
			if res != tt.Expected {
				t.Fatalf("expected %v (%T), got %v (%T)", tt.Expected, tt.Expected, res, res)
			}
		})
	}
}

func TestCompareStrings(t *testing.T) {
	tests := []struct {
		Title    string
		S1, S2   string
		Expected bool
	}{
		{Title: "Equal", S1: "storefront", S2: "storefront", Expected: true},
		{Title: "Case insensitive", S1: "Storefront", S2: "storefront", Expected: true},
		{Title: "Accent insensitive", S1: "café", S2: "CAFE", Expected: true},
		{Title: "Different", S1: "storefront", S2: "wholesale"},
	}
	for _, tt := range tests {
		t.Run(tt.Title, func(t *testing.T) {
			got, err := CompareStrings(tt.S1, tt.S2)
			if err != nil {
				t.Fatalf("no error expected, but got one: %v", err)
			}
			if got != tt.Expected {
				t.Fatalf("expected %v, got %v", tt.Expected, got)
			}
		})
	}
}

func TestStringInSlice(t *testing.T) {
	tags := []string{"Storefront-Checkout", "wholesale", "café"}
	tests := []struct {
		Title    string
		S        string
		Expected bool
	}{
		{Title: "Exact", S: "wholesale", Expected: true},
		{Title: "Case insensitive", S: "storefront-checkout", Expected: true},
		{Title: "Accent insensitive", S: "CAFE", Expected: true},
		{Title: "Absent", S: "retail"},
	}
	for _, tt := range tests {
		t.Run(tt.Title, func(t *testing.T) {
			got, err := StringInSlice(tt.S, tags)
			if err != nil {
				t.Fatalf("no error expected, but got one: %v", err)
			}
			if got != tt.Expected {
				t.Fatalf("expected %v, got %v", tt.Expected, got)
			}
		})
	}
}

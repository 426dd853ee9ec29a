package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/averyrot/shade-checkout-api/app"
	"github.com/averyrot/shade-checkout-api/helpers"
	"github.com/averyrot/shade-checkout-api/shopify"
	"github.com/averyrot/shade-checkout-api/shopify/adminapi"
)

var testConfig = &shopify.Config{
	Domain:      "test-store.myshopify.com",
	AccessToken: "T",
}

type fakeAdminAPI struct {
	ListStatus    int
	ListBody      string
	DeleteStatus  map[int64]int
	DeleteError   map[int64]error
	ListCalls     int
	DeletedIds    []int64
	DeleteDefault int
}

func (f *fakeAdminAPI) rest(_ context.Context, method, url string, _ map[string]string, _ []byte) (*helpers.RestResponse, error) {
	if method == "GET" {
		f.ListCalls++
		status := f.ListStatus
		if status == 0 {
			status = 200
		}
		return &helpers.RestResponse{StatusCode: status, Body: []byte(f.ListBody)}, nil
	}
	if method == "DELETE" {
		var id int64
		fmt.Sscanf(url[strings.LastIndex(url, "/")+1:], "%d.json", &id)
		f.DeletedIds = append(f.DeletedIds, id)
		if err, found := f.DeleteError[id]; found {
			return nil, err
		}
		status := f.DeleteDefault
		if s, found := f.DeleteStatus[id]; found {
			status = s
		}
		if status == 0 {
			status = 204
		}
		return &helpers.RestResponse{StatusCode: status, Body: []byte("")}, nil
	}
	return nil, fmt.Errorf("unexpected method %s", method)
}

func listBody(t *testing.T, drafts []map[string]any) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{"draft_orders": drafts})
	if err != nil {
		t.Fatalf("could not marshal list body: %v", err)
	}
	return string(body)
}

func draftAt(id int64, name string, createdAt time.Time) map[string]any {
	return map[string]any{
		"id":         id,
		"name":       name,
		"status":     "open",
		"created_at": createdAt.Format(time.RFC3339),
	}
}

func sweepContext(t *testing.T, fake *fakeAdminAPI) context.Context {
	t.Helper()
	ctx := app.ContextWithCache(context.Background())
	t.Cleanup(adminapi.SetRestRequest(ctx, fake.rest))
	return ctx
}

func TestSweep_CutoffIsStrict(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fake := &fakeAdminAPI{}
	fake.ListBody = listBody(t, []map[string]any{
		draftAt(1, "#D1", now.Add(-31*time.Minute)), // stale
		draftAt(2, "#D2", now.Add(-30*time.Minute)), // exactly at cutoff, kept
		draftAt(3, "#D3", now.Add(-29*time.Minute)), // fresh, kept
	})
	ctx := sweepContext(t, fake)

	result, err := Sweep(ctx, testConfig, SweepOptions{Now: now, Pause: time.Nanosecond})
	if err != nil {
		t.Fatalf("no error expected, but got one: %v", err)
	}
	if result.Checked != 3 {
		t.Fatalf("expected 3 checked, got %d", result.Checked)
	}
	if result.Deleted != 1 || result.Failed != 0 {
		t.Fatalf("expected 1 deleted and 0 failed, got %d/%d", result.Deleted, result.Failed)
	}
	if len(fake.DeletedIds) != 1 || fake.DeletedIds[0] != 1 {
		t.Fatalf("expected only draft 1 deleted, got %v", fake.DeletedIds)
	}
	expectedCutoff := now.Add(-30 * time.Minute)
	if !result.CutoffTime.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %v, got %v", expectedCutoff, result.CutoffTime)
	}
}

func TestSweep_ListFailureAbortsWithoutDeletes(t *testing.T) {
	fake := &fakeAdminAPI{ListStatus: 500, ListBody: `{"errors": "boom"}`}
	ctx := sweepContext(t, fake)

	res, err := Sweep(ctx, testConfig, SweepOptions{Pause: time.Nanosecond})
	if err == nil {
		t.Fatalf("expected error, but received %+v", res)
	}
	if !strings.Contains(err.Error(), "failed to fetch draft orders") {
		t.Fatalf("expected list failure error, got: %v", err)
	}
	if len(fake.DeletedIds) != 0 {
		t.Fatalf("expected zero delete calls, got %v", fake.DeletedIds)
	}
}

func TestSweep_DeleteFailuresDoNotAbort(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fake := &fakeAdminAPI{
		DeleteStatus: map[int64]int{2: 422},
		DeleteError:  map[int64]error{3: fmt.Errorf("connection reset")},
	}
	fake.ListBody = listBody(t, []map[string]any{
		draftAt(1, "#D1", now.Add(-45*time.Minute)),
		draftAt(2, "#D2", now.Add(-45*time.Minute)),
		draftAt(3, "#D3", now.Add(-45*time.Minute)),
		draftAt(4, "#D4", now.Add(-45*time.Minute)),
	})
	ctx := sweepContext(t, fake)

	result, err := Sweep(ctx, testConfig, SweepOptions{Now: now, Pause: time.Nanosecond})
	if err != nil {
		t.Fatalf("no error expected, but got one: %v", err)
	}
	if result.Deleted != 2 || result.Failed != 2 {
		t.Fatalf("expected 2 deleted and 2 failed, got %d/%d", result.Deleted, result.Failed)
	}
	if len(fake.DeletedIds) != 4 {
		t.Fatalf("expected all 4 deletions attempted, got %v", fake.DeletedIds)
	}
	statuses := map[int64]string{}
	for _, detail := range result.Details {
		statuses[detail.Id] = detail.Status
	}
	expected := map[int64]string{1: "deleted", 2: "failed", 3: "error", 4: "deleted"}
	for id, status := range expected {
		if statuses[id] != status {
			t.Fatalf("expected draft %d status '%s', got '%s'", id, status, statuses[id])
		}
	}
}

func TestSweep_TagFilter(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tagged := draftAt(1, "#D1", now.Add(-45*time.Minute))
	tagged["tags"] = "Storefront-Checkout, wholesale"
	untagged := draftAt(2, "#D2", now.Add(-45*time.Minute))
	fake := &fakeAdminAPI{}
	fake.ListBody = listBody(t, []map[string]any{tagged, untagged})
	ctx := sweepContext(t, fake)

	result, err := Sweep(ctx, testConfig, SweepOptions{Now: now, Pause: time.Nanosecond, Tag: "storefront-checkout"})
	if err != nil {
		t.Fatalf("no error expected, but got one: %v", err)
	}
	if result.Deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", result.Deleted)
	}
	if len(fake.DeletedIds) != 1 || fake.DeletedIds[0] != 1 {
		t.Fatalf("expected only the tagged draft deleted, got %v", fake.DeletedIds)
	}
}

func TestSweep_NothingStale(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fake := &fakeAdminAPI{}
	fake.ListBody = listBody(t, []map[string]any{
		draftAt(1, "#D1", now.Add(-5*time.Minute)),
	})
	ctx := sweepContext(t, fake)

	result, err := Sweep(ctx, testConfig, SweepOptions{Now: now, Pause: time.Nanosecond})
	if err != nil {
		t.Fatalf("no error expected, but got one: %v", err)
	}
	if result.Checked != 1 || result.Deleted != 0 || result.Failed != 0 {
		t.Fatalf("expected 1/0/0, got %d/%d/%d", result.Checked, result.Deleted, result.Failed)
	}
	if len(fake.DeletedIds) != 0 {
		t.Fatalf("expected zero delete calls, got %v", fake.DeletedIds)
	}
}

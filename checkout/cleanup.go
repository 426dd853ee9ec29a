package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/averyrot/shade-checkout-api/helpers"
	"github.com/averyrot/shade-checkout-api/shopify"
	"github.com/averyrot/shade-checkout-api/shopify/adminapi"
	"github.com/averyrot/shade-checkout-api/shopify/adminapi/types"
)

const (
	DefaultMaxAge = 30 * time.Minute

	// Pause between deletions; the Admin API enforces its own rate limits
	// and a serialized loop with a short pause stays well under them.
	defaultDeletePause = 100 * time.Millisecond
)

type SweepOptions struct {
	MaxAge time.Duration // stale threshold, DefaultMaxAge when zero
	Pause  time.Duration // wait between deletions, 100ms when zero
	Tag    string        // when set, only drafts carrying this tag are swept
	Now    time.Time     // clock override for tests, time.Now() when zero
}

type SweepDetail struct {
	Id        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
}

type SweepResult struct {
	Checked    int
	Deleted    int
	Failed     int
	CutoffTime time.Time
	Details    []SweepDetail
}

// Sweep lists open draft orders and deletes the ones created strictly before
// the cutoff, one at a time with a fixed pause in between. Individual delete
// failures are recorded and the loop continues; only a failure to list at
// all aborts the sweep.
func Sweep(ctx context.Context, config *shopify.Config, opts SweepOptions) (*SweepResult, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	maxAge := opts.MaxAge
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}
	deletePause := opts.Pause
	if deletePause == 0 {
		deletePause = defaultDeletePause
	}
	cutoff := now.Add(-maxAge)

	draftOrders, err := adminapi.DraftOrdersOpen(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draft orders:\n>>> %w", err)
	}
	log.Printf("Found %d open draft orders", len(draftOrders))

	var stale []types.DraftOrder
	for _, draftOrder := range draftOrders {
		if !draftOrder.CreatedAt.Before(cutoff) {
			continue
		}
		if opts.Tag != "" && !hasTag(&draftOrder, opts.Tag) {
			continue
		}
		stale = append(stale, draftOrder)
	}
	log.Printf("Found %d draft orders older than %v", len(stale), maxAge)

	result := &SweepResult{
		Checked:    len(draftOrders),
		CutoffTime: cutoff,
		Details:    []SweepDetail{},
	}
	for i, draftOrder := range stale {
		if i > 0 {
			pause(ctx, deletePause)
		}

		detail := SweepDetail{
			Id:        draftOrder.Id,
			Name:      draftOrder.Name,
			CreatedAt: draftOrder.CreatedAt,
		}
		err := adminapi.DraftOrderDelete(ctx, config, draftOrder.Id)
		var apiErr *adminapi.APIError
		switch {
		case err == nil:
			log.Printf("Deleted draft order %d (%s)", draftOrder.Id, draftOrder.Name)
			result.Deleted++
			detail.Status = "deleted"
		case errors.As(err, &apiErr):
			log.Printf("Failed to delete draft order %d: %v", draftOrder.Id, apiErr)
			result.Failed++
			detail.Status = "failed"
			detail.Error = apiErr.Body
		default:
			log.Printf("Error deleting draft order %d: %v", draftOrder.Id, err)
			result.Failed++
			detail.Status = "error"
			detail.Error = err.Error()
		}
		result.Details = append(result.Details, detail)
	}

	return result, nil
}

func hasTag(draftOrder *types.DraftOrder, tag string) bool {
	found, err := helpers.StringInSlice(tag, draftOrder.TagList())
	return err == nil && found
}

func pause(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

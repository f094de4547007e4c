package hiscores

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openmohaa/hiscores-dash/internal/models"
)

// MemberResult is one group member's fetch outcome. OK is false when
// Snapshot is fallback data.
type MemberResult struct {
	Member   models.GroupMember
	Snapshot *models.Snapshot
	OK       bool
}

// FallbackFunc builds placeholder data for a member that could not be
// fetched.
type FallbackFunc func(player string) *models.Snapshot

// FetchGroup fetches every member concurrently. Results keep roster order.
// A member whose fetch fails gets fallback data instead of failing the
// group; only cancellation of ctx fails the whole call.
func FetchGroup(ctx context.Context, f Fetcher, members []models.GroupMember, fallback FallbackFunc, logger *zap.Logger) ([]MemberResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Sugar()

	results := make([]MemberResult, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, member := range members {
		g.Go(func() error {
			snap, err := f.Fetch(gctx, member.Name)
			if err != nil {
				if IsCanceled(err) && ctx.Err() != nil {
					return err
				}
				log.Warnw("Group member fetch failed, using fallback", "player", member.Name, "error", err)
				groupFallbacks.Inc()
				results[i] = MemberResult{Member: member, Snapshot: fallback(member.Name), OK: false}
				return nil
			}
			results[i] = MemberResult{Member: member, Snapshot: snap, OK: true}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

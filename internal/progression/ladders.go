package progression

import (
	"fmt"
	"strings"

	"github.com/openmohaa/hiscores-dash/internal/models"
)

// Milestone ladders
var (
	SkillMilestones     = []int64{70, 80, 90, 99}
	KillMilestones      = []int64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2000, 5000, 10000}
	ShortKillMilestones = []int64{50, 100, 250, 500, 1000}
)

// Ladder preset names
const (
	LadderStandard = "standard"
	LadderShort    = "short"
)

// LadderPreset returns a copy of the named kill-count ladder.
func LadderPreset(name string) ([]int64, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", LadderStandard:
		return append([]int64(nil), KillMilestones...), nil
	case LadderShort:
		return append([]int64(nil), ShortKillMilestones...), nil
	}
	return nil, fmt.Errorf("unknown kill ladder preset %q", name)
}

// Segments builds the milestone strip for current: one segment per
// threshold, the first starting at 0.
func Segments(current int64, thresholds []int64) []models.Segment {
	segs := make([]models.Segment, 0, len(thresholds))
	var from int64
	for _, to := range thresholds {
		segs = append(segs, models.Segment{
			From:        from,
			To:          to,
			FillPercent: SegmentFillPercent(current, from, to),
			Reached:     current >= to,
		})
		from = to
	}
	return segs
}

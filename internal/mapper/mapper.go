// Package mapper turns a raw hiscores snapshot into the uniform, ordered
// display items the selection controller and the UI work with.
package mapper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openmohaa/hiscores-dash/internal/catalog"
	"github.com/openmohaa/hiscores-dash/internal/models"
	"github.com/openmohaa/hiscores-dash/internal/progression"
)

// Options configures a Mapper. Zero values fall back to the embedded
// catalog and the standard kill-count ladder.
type Options struct {
	Catalog     *catalog.Catalog
	KillLadder  []int64
	IconBaseURL string
}

// Mapper converts snapshots into display items. It holds only immutable
// configuration and is safe for concurrent use.
type Mapper struct {
	catalog    *catalog.Catalog
	killLadder []int64
	iconBase   string
}

// New creates a Mapper.
func New(opts Options) *Mapper {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if len(opts.KillLadder) == 0 {
		opts.KillLadder = progression.KillMilestones
	}
	return &Mapper{
		catalog:    opts.Catalog,
		killLadder: append([]int64(nil), opts.KillLadder...),
		iconBase:   strings.TrimSuffix(opts.IconBaseURL, "/"),
	}
}

// DisplayItems maps a snapshot to skills (source order), then bosses, then
// activities. A nil or empty snapshot yields an empty slice.
func (m *Mapper) DisplayItems(snap *models.Snapshot) []models.DisplayItem {
	if snap == nil {
		return []models.DisplayItem{}
	}

	skills := make([]models.DisplayItem, 0, len(snap.Skills))
	for _, s := range snap.Skills {
		if s.Name == models.OverallSkill {
			continue
		}
		skills = append(skills, m.skillItem(s))
	}

	var bosses, activities []models.DisplayItem
	for _, a := range snap.Activities {
		item := m.activityItem(a)
		if item.Category == models.CategoryBosses {
			bosses = append(bosses, item)
		} else {
			activities = append(activities, item)
		}
	}

	out := make([]models.DisplayItem, 0, len(skills)+len(bosses)+len(activities))
	out = append(out, skills...)
	out = append(out, bosses...)
	out = append(out, activities...)
	return out
}

// Classify returns the tab an activity name belongs to.
func (m *Mapper) Classify(activity string) models.Category {
	if m.catalog.IsBoss(activity) {
		return models.CategoryBosses
	}
	return models.CategoryActivities
}

// SkillID and ActivityID build the stable item identities. They depend on
// the upstream record number only, never on list position.
func SkillID(sourceID int) string    { return fmt.Sprintf("skill-%d", sourceID) }
func ActivityID(sourceID int) string { return fmt.Sprintf("act-%d", sourceID) }

// LevelProgress is the within-level completion of one skill.
type LevelProgress struct {
	Level   int
	XP      int64
	Floor   int64
	InLevel int64
	Needed  int64
	Percent float64
}

// SkillProgress computes where xp sits inside the reported level. Malformed
// inputs (negative xp, a level past what the xp implies) are clamped.
func SkillProgress(level int, xp int64) LevelProgress {
	level = progression.Clamp(level, progression.MinLevel, progression.MaxLevel)
	if xp < 0 {
		xp = 0
	}

	floor := progression.XPForLevel(level)
	ceiling := progression.XPForLevel(min(progression.MaxLevel, level+1))

	inLevel := max(0, xp-floor)
	needed := max(1, ceiling-floor)

	return LevelProgress{
		Level:   level,
		XP:      xp,
		Floor:   floor,
		InLevel: inLevel,
		Needed:  needed,
		Percent: progression.Percent(inLevel, needed),
	}
}

func (m *Mapper) skillItem(s models.SkillRecord) models.DisplayItem {
	p := SkillProgress(s.Level, s.XP)
	xp99 := progression.XPForLevel(progression.TargetLevel)
	pctTo99 := progression.Percent(p.XP, xp99)

	level := int64(p.Level)
	ladder := progression.SkillMilestones

	return models.DisplayItem{
		ID:       SkillID(s.ID),
		Category: models.CategorySkills,
		Name:     s.Name,
		IconURL:  m.iconURL("skills", s.Name),

		PrimaryCurrent:     p.InLevel,
		PrimaryTarget:      p.Needed,
		PrimaryPercent:     p.Percent,
		PrimaryLabelTop:    progression.FormatPercent(p.Percent) + " Complete",
		PrimaryLabelBottom: progression.FormatCompact(p.InLevel) + " / " + progression.FormatCompact(p.Needed),

		SecondaryType:        models.SecondaryGauge,
		SecondaryCurrent:     p.XP,
		SecondaryTarget:      xp99,
		SecondaryPercent:     pctTo99,
		SecondaryLabelTop:    fmt.Sprintf("%s to %d", progression.FormatPercent(pctTo99), progression.TargetLevel),
		SecondaryLabelBottom: progression.FormatCompact(p.XP) + " / " + progression.FormatCompact(xp99) + " XP",

		Milestones:        append([]int64(nil), ladder...),
		MilestoneCurrent:  level,
		MilestoneUnit:     models.UnitLevel,
		PreviousMilestone: progression.PreviousMilestone(level, ladder),
		NextMilestone:     progression.NextMilestone(level, ladder),
		MilestonePercent: progression.SegmentFillPercent(level,
			progression.PreviousMilestone(level, ladder),
			progression.NextMilestone(level, ladder)),
		Segments: progression.Segments(level, ladder),

		SkillLevel:       p.Level,
		SkillXP:          p.XP,
		LevelProgressPct: p.Percent,
	}
}

func (m *Mapper) activityItem(a models.ActivityRecord) models.DisplayItem {
	kills := max(0, a.Score)
	rank := a.Rank
	if rank < 0 {
		rank = models.Unranked
	}

	ladder := m.killLadder
	next := progression.NextMilestone(kills, ladder)
	prev := progression.PreviousMilestone(kills, ladder)
	span := max(1, next-prev)
	inSeg := max(0, kills-prev)
	pct := progression.Percent(inSeg, span)

	return models.DisplayItem{
		ID:       ActivityID(a.ID),
		Category: m.Classify(a.Name),
		Name:     a.Name,
		IconURL:  m.iconURL("activities", a.Name),

		PrimaryCurrent:     inSeg,
		PrimaryTarget:      span,
		PrimaryPercent:     pct,
		PrimaryLabelTop:    progression.FormatPercent(pct) + " Complete",
		PrimaryLabelBottom: progression.FormatCompact(kills) + " KC",

		SecondaryType:     models.SecondaryRank,
		SecondaryCurrent:  rank,
		SecondaryLabelTop: "Rank",
		RankText:          progression.FormatRank(rank),

		Milestones:        append([]int64(nil), ladder...),
		MilestoneCurrent:  kills,
		MilestoneUnit:     models.UnitKills,
		PreviousMilestone: prev,
		NextMilestone:     next,
		MilestonePercent:  pct,
		Segments:          progression.Segments(kills, ladder),
	}
}

var slugStrip = regexp.MustCompile(`[:'()]`)
var slugSpace = regexp.MustCompile(`\s+`)

// Slug converts a display name into an icon file name.
func Slug(name string) string {
	s := strings.ToLower(name)
	s = slugStrip.ReplaceAllString(s, "")
	return slugSpace.ReplaceAllString(s, "-")
}

func (m *Mapper) iconURL(kind, name string) string {
	return fmt.Sprintf("%s/icons/%s/%s.png", m.iconBase, kind, Slug(name))
}

// Filter returns the items of one category, preserving order.
func Filter(items []models.DisplayItem, c models.Category) []models.DisplayItem {
	out := make([]models.DisplayItem, 0)
	for _, it := range items {
		if it.Category == c {
			out = append(out, it)
		}
	}
	return out
}

// IndexOf returns the position of id in items, or -1.
func IndexOf(items []models.DisplayItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

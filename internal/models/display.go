package models

import "fmt"

// Category groups display items into the dashboard tabs.
type Category string

const (
	CategorySkills     Category = "skills"
	CategoryBosses     Category = "bosses"
	CategoryActivities Category = "activities"
	CategoryTotal      Category = "total"
	CategoryGroup      Category = "gim"
)

// Categories lists every tab in footer order.
var Categories = []Category{
	CategorySkills,
	CategoryBosses,
	CategoryActivities,
	CategoryTotal,
	CategoryGroup,
}

// IsAggregate reports whether the category shows many items at once with no
// single current item.
func (c Category) IsAggregate() bool {
	return c == CategoryTotal || c == CategoryGroup
}

// ParseCategory validates a category name from a request.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type SecondaryType string

const (
	SecondaryGauge SecondaryType = "gauge"
	SecondaryRank  SecondaryType = "rank"
)

type MilestoneUnit string

const (
	UnitLevel MilestoneUnit = "level"
	UnitKills MilestoneUnit = "kills"
)

// Segment is one span of the milestone strip, from the previous bubble to
// this one.
type Segment struct {
	From        int64   `json:"from"`
	To          int64   `json:"to"`
	FillPercent float64 `json:"fill_percent"`
	Reached     bool    `json:"reached"`
}

// DisplayItem is the self-describing render unit shared by the engine and
// the UI. Items are rebuilt on every fetch and never mutated afterwards.
type DisplayItem struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Name     string   `json:"name"`
	IconURL  string   `json:"icon_url"`

	// Primary arc: progress toward the next level or kill-count milestone
	PrimaryCurrent     int64   `json:"primary_current"`
	PrimaryTarget      int64   `json:"primary_target"`
	PrimaryPercent     float64 `json:"primary_percent"`
	PrimaryLabelTop    string  `json:"primary_label_top"`
	PrimaryLabelBottom string  `json:"primary_label_bottom"`

	// Secondary: a second gauge (skills) or a rank badge (activities)
	SecondaryType        SecondaryType `json:"secondary_type"`
	SecondaryCurrent     int64         `json:"secondary_current"`
	SecondaryTarget      int64         `json:"secondary_target,omitempty"`
	SecondaryPercent     float64       `json:"secondary_percent,omitempty"`
	SecondaryLabelTop    string        `json:"secondary_label_top"`
	SecondaryLabelBottom string        `json:"secondary_label_bottom,omitempty"`
	RankText             string        `json:"rank_text,omitempty"`

	// Milestone strip
	Milestones        []int64       `json:"milestones"`
	MilestoneCurrent  int64         `json:"milestone_current"`
	MilestoneUnit     MilestoneUnit `json:"milestone_unit"`
	PreviousMilestone int64         `json:"previous_milestone"`
	NextMilestone     int64         `json:"next_milestone"`
	MilestonePercent  float64       `json:"milestone_percent"`
	Segments          []Segment     `json:"segments"`

	// Skill-only extras
	SkillLevel       int     `json:"skill_level,omitempty"`
	SkillXP          int64   `json:"skill_xp,omitempty"`
	LevelProgressPct float64 `json:"level_progress_pct,omitempty"`
}

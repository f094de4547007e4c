// Package catalog exposes the static reference data the mapper needs: which
// activity names are bosses, and the fixed skill orderings of the aggregate
// views.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/openmohaa/hiscores-dash/internal/models"
)

//go:embed catalog.yaml
var defaultYAML []byte

// Catalog is the parsed reference data.
type Catalog struct {
	Bosses         []string   `yaml:"bosses"`
	TotalGrid      []string   `yaml:"total_grid"`
	GroupGrid      [][]string `yaml:"group_grid"`
	FallbackSkills []string   `yaml:"fallback_skills"`

	bossSet map[string]struct{}
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the embedded catalog. It panics if the embedded file is
// malformed, which can only happen at build time.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded catalog.yaml: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c.bossSet = make(map[string]struct{}, len(c.Bosses))
	for _, b := range c.Bosses {
		if _, dup := c.bossSet[b]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate boss %q", b)
		}
		c.bossSet[b] = struct{}{}
	}
	if len(c.TotalGrid) == 0 {
		return nil, fmt.Errorf("parse catalog: total_grid is empty")
	}
	return &c, nil
}

// IsBoss reports whether an activity name belongs to the boss tab.
func (c *Catalog) IsBoss(name string) bool {
	_, ok := c.bossSet[name]
	return ok
}

// GroupOrder flattens the group grid row by row.
func (c *Catalog) GroupOrder() []string {
	var out []string
	for _, row := range c.GroupGrid {
		out = append(out, row...)
	}
	return out
}

// FallbackSnapshot builds the placeholder shown for a group member whose
// hiscores could not be fetched: every skill at level 1 with 1 xp.
func (c *Catalog) FallbackSnapshot(player string) *models.Snapshot {
	snap := &models.Snapshot{
		Name:   player,
		Skills: make([]models.SkillRecord, 0, len(c.FallbackSkills)),
	}
	for i, name := range c.FallbackSkills {
		snap.Skills = append(snap.Skills, models.SkillRecord{
			ID:    i + 1,
			Name:  name,
			Rank:  models.Unranked,
			Level: 1,
			XP:    1,
		})
	}
	return snap
}

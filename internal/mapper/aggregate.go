package mapper

import (
	"github.com/openmohaa/hiscores-dash/internal/models"
	"github.com/openmohaa/hiscores-dash/internal/progression"
)

// Hitpoints starts at level 10, so a fallback panel missing the skill shows
// that floor instead of level 1.
const (
	hitpointsSkill     = "Hitpoints"
	hitpointsBaseLevel = 10
	hitpointsBaseXP    = 1154
)

// TotalModel builds the "total" tab from already mapped skill items: skills
// in the fixed grid order, totals summed over the grid. Grid skills missing
// from items are skipped.
func (m *Mapper) TotalModel(items []models.DisplayItem) models.TotalModel {
	out := models.TotalModel{Skills: make([]models.TotalSkill, 0, len(m.catalog.TotalGrid))}

	byName := make(map[string]models.DisplayItem, len(items))
	for _, it := range items {
		if it.Category == models.CategorySkills {
			byName[it.Name] = it
		}
	}

	for _, name := range m.catalog.TotalGrid {
		it, ok := byName[name]
		if !ok {
			continue
		}
		out.Skills = append(out.Skills, models.TotalSkill{
			ID:        it.ID,
			Name:      it.Name,
			Level:     it.SkillLevel,
			XP:        it.SkillXP,
			PctToNext: it.LevelProgressPct,
			BarColor:  progression.ProgressColor(it.LevelProgressPct),
			IconURL:   it.IconURL,
		})
		out.TotalLevel += it.SkillLevel
		out.TotalXP += it.SkillXP
	}
	return out
}

// GroupPanel builds one member panel of the group view. ok is false when
// snap is fallback data.
func (m *Mapper) GroupPanel(member models.GroupMember, snap *models.Snapshot, ok bool) models.GroupPanel {
	if snap == nil {
		snap = m.catalog.FallbackSnapshot(member.Name)
		ok = false
	}

	panel := models.GroupPanel{
		Name: member.Name,
		Slot: member.Slot,
		OK:   ok,
	}

	for _, name := range m.catalog.GroupOrder() {
		level, xp := 1, int64(0)
		if s, found := snap.SkillByName(name); found {
			level, xp = s.Level, s.XP
		} else if !ok && name == hitpointsSkill {
			level, xp = hitpointsBaseLevel, hitpointsBaseXP
		}

		p := SkillProgress(level, xp)
		panel.Cells = append(panel.Cells, models.GroupSkillCell{
			Name:      name,
			Level:     p.Level,
			XP:        p.XP,
			PctToNext: p.Percent,
			BarColor:  progression.ProgressColor(p.Percent),
			IconURL:   m.iconURL("skills", name),
		})
	}

	for _, s := range snap.Skills {
		if s.Name == models.OverallSkill {
			continue
		}
		panel.TotalLevel += max(0, s.Level)
		panel.TotalXP += max(0, s.XP)
	}
	return panel
}

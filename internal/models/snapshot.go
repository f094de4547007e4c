package models

// OverallSkill is the aggregate skill row the hiscores service prepends to
// every snapshot. It is never displayed as an item.
const OverallSkill = "Overall"

// Unranked is the rank reported for entries below the hiscores cutoff.
const Unranked = -1

// Snapshot is one player's hiscores data at fetch time.
type Snapshot struct {
	Name       string           `json:"name"`
	Skills     []SkillRecord    `json:"skills"`
	Activities []ActivityRecord `json:"activities"`
}

// SkillRecord is a single skill row as reported upstream.
type SkillRecord struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Rank  int64  `json:"rank"`
	Level int    `json:"level"`
	XP    int64  `json:"xp"`
}

// ActivityRecord is a boss or minigame row. Score is a kill count or
// completion count depending on the activity.
type ActivityRecord struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Rank  int64  `json:"rank"`
	Score int64  `json:"score"`
}

// SkillByName returns the named skill, or false.
func (s *Snapshot) SkillByName(name string) (SkillRecord, bool) {
	for _, sk := range s.Skills {
		if sk.Name == name {
			return sk, true
		}
	}
	return SkillRecord{}, false
}

package models

// TotalSkill is one tile of the total-level grid.
type TotalSkill struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Level     int     `json:"level"`
	XP        int64   `json:"xp"`
	PctToNext float64 `json:"pct_to_next"`
	BarColor  string  `json:"bar_color"`
	IconURL   string  `json:"icon_url"`
}

// TotalModel backs the "total" tab.
type TotalModel struct {
	TotalLevel int          `json:"total_level"`
	TotalXP    int64        `json:"total_xp"`
	Skills     []TotalSkill `json:"skills"`
}

// GroupSlot is a panel position in the group layout.
type GroupSlot string

const (
	SlotTopLeft     GroupSlot = "tl"
	SlotTopRight    GroupSlot = "tr"
	SlotBottomLeft  GroupSlot = "bl"
	SlotBottomRight GroupSlot = "br"
	SlotCenter      GroupSlot = "c"
)

// GroupMember is a roster entry for the group view.
type GroupMember struct {
	Name string    `json:"name"`
	Slot GroupSlot `json:"slot"`
}

// GroupSkillCell is one skill cell in a member panel.
type GroupSkillCell struct {
	Name      string  `json:"name"`
	Level     int     `json:"level"`
	XP        int64   `json:"xp"`
	PctToNext float64 `json:"pct_to_next"`
	BarColor  string  `json:"bar_color"`
	IconURL   string  `json:"icon_url"`
}

// GroupPanel backs one member of the "gim" tab. OK is false when the
// member's fetch failed and the panel shows fallback data.
type GroupPanel struct {
	Name       string           `json:"name"`
	Slot       GroupSlot        `json:"slot"`
	OK         bool             `json:"ok"`
	Cells      []GroupSkillCell `json:"cells"`
	TotalLevel int              `json:"total_level"`
	TotalXP    int64            `json:"total_xp"`
}

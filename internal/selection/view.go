package selection

import (
	"slices"

	"github.com/openmohaa/hiscores-dash/internal/models"
)

// View is a point-in-time copy of everything the UI renders for a session.
type View struct {
	Player     string               `json:"player"`
	Category   models.Category      `json:"category"`
	Index      int                  `json:"index"`
	Items      []models.DisplayItem `json:"items"`
	Current    *models.DisplayItem  `json:"current,omitempty"`
	Pinned     bool                 `json:"pinned"`
	PinMode    string               `json:"pin_mode"`
	PinnedID   string               `json:"pinned_id,omitempty"`
	AutoCycle  bool                 `json:"auto_cycle"`
	Loaded     bool                 `json:"loaded"`
	Loading    bool                 `json:"loading"`
	Refreshing bool                 `json:"refreshing"`
	Error      string               `json:"error,omitempty"`
}

// View returns the current rendering state. Aggregate categories have no
// current item.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filteredLocked()
	v := View{
		Player:     c.player,
		Category:   c.category,
		Index:      c.index,
		Items:      slices.Clone(filtered),
		Pinned:     c.pin != PinNone,
		PinMode:    c.pin.String(),
		PinnedID:   c.pinnedID,
		AutoCycle:  c.autoCycleLocked(),
		Loaded:     c.loaded,
		Loading:    c.loading,
		Refreshing: c.refreshing,
		Error:      c.errMsg,
	}
	if v.Items == nil {
		v.Items = []models.DisplayItem{}
	}

	if !c.category.IsAggregate() && c.index >= 0 && c.index < len(filtered) {
		cur := filtered[c.index]
		v.Current = &cur
	}
	return v
}

// Total returns the total-level view of the latest applied fetch.
func (c *Controller) Total() models.TotalModel {
	c.mu.Lock()
	items := c.items
	c.mu.Unlock()

	return c.mapper.TotalModel(items)
}

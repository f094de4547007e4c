package handlers

import (
	"net/http"

	"github.com/openmohaa/hiscores-dash/internal/hiscores"
	"github.com/openmohaa/hiscores-dash/internal/models"
)

// GetGroup returns one panel per group member
// @Summary Get Group View
// @Description Fetches every roster member concurrently; members that fail render fallback data
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.GroupResponse
// @Failure 503 {object} map[string]string
// @Router /group [get]
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	results, err := hiscores.FetchGroup(r.Context(), h.fetcher, h.group, h.catalog.FallbackSnapshot, h.zl)
	if err != nil {
		// Client went away
		h.logger.Warnw("Group fetch abandoned", "error", err)
		h.errorResponse(w, http.StatusServiceUnavailable, "Request canceled")
		return
	}

	resp := models.GroupResponse{Panels: make([]models.GroupPanel, 0, len(results))}
	for _, res := range results {
		resp.Panels = append(resp.Panels, h.mapper.GroupPanel(res.Member, res.Snapshot, res.OK))
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

// GetPlayers returns the player menu
// @Summary List Players
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.PlayersResponse
// @Router /players [get]
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	players := h.players
	if players == nil {
		players = []string{}
	}
	h.jsonResponse(w, http.StatusOK, models.PlayersResponse{
		Default: h.defaultPlayer,
		Players: players,
	})
}

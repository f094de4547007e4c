package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/openmohaa/hiscores-dash/internal/models"
	"github.com/openmohaa/hiscores-dash/internal/selection"
)

type CreateSessionResponse struct {
	ID   string         `json:"id"`
	View selection.View `json:"view"`
}

// CreateSession starts a dashboard session
// @Summary Create Session
// @Description Starts a session for a player (or the default player) and begins the first fetch
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param body body models.CreateSessionRequest false "Player"
// @Param wait query bool false "Block until the first fetch lands"
// @Success 201 {object} CreateSessionResponse
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	player := strings.TrimSpace(req.Player)
	if player == "" {
		player = h.defaultPlayer
	}
	if player == "" {
		h.errorResponse(w, http.StatusBadRequest, "player is required")
		return
	}

	ctrl := selection.New(h.sessionCfg)
	id, err := h.sessions.add(ctrl)
	if err != nil {
		ctrl.Close()
		if errors.Is(err, errTooManySessions) {
			h.errorResponse(w, http.StatusServiceUnavailable, "Too many sessions")
			return
		}
		h.errorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	ctrl.SetPlayer(player)
	if wantsWait(r) {
		ctrl.Wait()
	}

	h.logger.Infow("Session created", "session", id, "player", player)
	h.jsonResponse(w, http.StatusCreated, CreateSessionResponse{ID: id, View: ctrl.View()})
}

// GetSession returns the current view of a session
// @Summary Get Session View
// @Tags Dashboard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} selection.View
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	h.jsonResponse(w, http.StatusOK, ctrl.View())
}

// GetTotal returns the total-level grid for a session's player
// @Summary Get Total View
// @Tags Dashboard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.TotalModel
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/total [get]
func (h *Handler) GetTotal(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	h.jsonResponse(w, http.StatusOK, ctrl.Total())
}

// DeleteSession stops a session
// @Summary Delete Session
// @Tags Dashboard
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [delete]
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.sessions.remove(id) {
		h.errorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	h.logger.Infow("Session deleted", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

// Next, Previous, TogglePin and Refresh take no body and return the new view.

// @Summary Select Next Item
// @Tags Dashboard
// @Param id path string true "Session ID"
// @Success 200 {object} selection.View
// @Router /sessions/{id}/next [post]
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*selection.Controller).SelectNext)
}

// @Summary Select Previous Item
// @Tags Dashboard
// @Param id path string true "Session ID"
// @Success 200 {object} selection.View
// @Router /sessions/{id}/prev [post]
func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*selection.Controller).SelectPrevious)
}

// @Summary Toggle Pin
// @Tags Dashboard
// @Param id path string true "Session ID"
// @Success 200 {object} selection.View
// @Router /sessions/{id}/pin [post]
func (h *Handler) TogglePin(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*selection.Controller).TogglePin)
}

// @Summary Refresh Player Data
// @Description Re-fetches the player while keeping the current selection
// @Tags Dashboard
// @Param id path string true "Session ID"
// @Param wait query bool false "Block until the refresh lands"
// @Success 200 {object} selection.View
// @Router /sessions/{id}/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	ctrl.Refresh()
	if wantsWait(r) {
		ctrl.Wait()
	}
	h.jsonResponse(w, http.StatusOK, ctrl.View())
}

// @Summary Cancel Refresh
// @Tags Dashboard
// @Param id path string true "Session ID"
// @Success 200 {object} selection.View
// @Router /sessions/{id}/refresh [delete]
func (h *Handler) CancelRefresh(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	ctrl.CancelFetch()
	ctrl.Wait()
	h.jsonResponse(w, http.StatusOK, ctrl.View())
}

// SelectItem jumps to an item picked from the list
// @Summary Select Item By ID
// @Tags Dashboard
// @Accept json
// @Param id path string true "Session ID"
// @Param body body models.SelectItemRequest true "Item"
// @Success 200 {object} selection.View
// @Router /sessions/{id}/select [post]
func (h *Handler) SelectItem(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.SelectItemRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	ctrl.SelectByID(req.ID)
	h.jsonResponse(w, http.StatusOK, ctrl.View())
}

// PinItem pins a specific item; pinning the pinned item releases it
// @Summary Pin Item By ID
// @Tags Dashboard
// @Accept json
// @Param id path string true "Session ID"
// @Param body body models.SelectItemRequest true "Item"
// @Success 200 {object} selection.View
// @Router /sessions/{id}/pin-to [post]
func (h *Handler) PinItem(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.SelectItemRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	ctrl.PinToID(req.ID)
	h.jsonResponse(w, http.StatusOK, ctrl.View())
}

// @Summary Switch Category
// @Tags Dashboard
// @Accept json
// @Param id path string true "Session ID"
// @Param body body models.SetCategoryRequest true "Category"
// @Success 200 {object} selection.View
// @Router /sessions/{id}/category [post]
func (h *Handler) SetCategory(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.SetCategoryRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	cat, err := models.ParseCategory(req.Category)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	ctrl.SetCategory(cat)
	h.jsonResponse(w, http.StatusOK, ctrl.View())
}

// @Summary Switch Player
// @Tags Dashboard
// @Accept json
// @Param id path string true "Session ID"
// @Param body body models.SetPlayerRequest true "Player"
// @Param wait query bool false "Block until the fetch lands"
// @Success 200 {object} selection.View
// @Router /sessions/{id}/player [post]
func (h *Handler) SetPlayer(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.SetPlayerRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	ctrl.SetPlayer(strings.TrimSpace(req.Player))
	if wantsWait(r) {
		ctrl.Wait()
	}
	h.jsonResponse(w, http.StatusOK, ctrl.View())
}

// Search finds items in the session's current tab for the picker
// @Summary Search Items
// @Tags Dashboard
// @Produce json
// @Param id path string true "Session ID"
// @Param q query string true "Query"
// @Success 200 {array} selection.Match
// @Router /sessions/{id}/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	h.jsonResponse(w, http.StatusOK, ctrl.Search(r.URL.Query().Get("q")))
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, op func(*selection.Controller)) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	op(ctrl)
	h.jsonResponse(w, http.StatusOK, ctrl.View())
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*selection.Controller, bool) {
	ctrl, ok := h.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		h.errorResponse(w, http.StatusNotFound, "Session not found")
	}
	return ctrl, ok
}

func wantsWait(r *http.Request) bool {
	return r.URL.Query().Get("wait") == "true"
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Odeddidi/BugHunt/internal/matchmaking"
	"github.com/Odeddidi/BugHunt/internal/repositories"
	"github.com/Odeddidi/BugHunt/internal/utils"
)

// RoomHandler exposes the matchmaking entry points.
type RoomHandler struct {
	Auth        *AuthHandler
	Matchmaking *matchmaking.Service
}

func (h *RoomHandler) CreatePrivate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.Auth.currentUser(w, r)
	if !ok {
		return
	}

	room, err := h.Matchmaking.CreatePrivateRoom(user.ID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to create room")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"room_id":     room.ID,
		"invite_code": room.InviteCode,
		"message":     "Private room created",
	})
}

type joinInviteRequest struct {
	InviteCode string `json:"invite_code"`
}

func (h *RoomHandler) JoinInvite(w http.ResponseWriter, r *http.Request) {
	user, ok := h.Auth.currentUser(w, r)
	if !ok {
		return
	}

	var req joinInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InviteCode == "" {
		utils.WriteError(w, http.StatusBadRequest, "invite_code required")
		return
	}

	room, err := h.Matchmaking.JoinByInvite(req.InviteCode, user.ID)
	switch {
	case errors.Is(err, repositories.ErrInviteNotFound):
		utils.WriteError(w, http.StatusNotFound, "invalid invite code")
		return
	case errors.Is(err, repositories.ErrRoomFull):
		utils.WriteError(w, http.StatusBadRequest, "room is full")
		return
	case err != nil:
		utils.WriteError(w, http.StatusInternalServerError, "failed to join room")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"room_id": room.ID,
		"status":  room.Status,
		"message": "Joined room successfully",
	})
}

func (h *RoomHandler) FindMatch(w http.ResponseWriter, r *http.Request) {
	user, ok := h.Auth.currentUser(w, r)
	if !ok {
		return
	}

	room, err := h.Matchmaking.FindMatch(user.ID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "matchmaking failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"room_id": room.ID})
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Odeddidi/BugHunt/internal/leaderboard"
	"github.com/Odeddidi/BugHunt/internal/repositories"
	"github.com/Odeddidi/BugHunt/internal/utils"
)

// UserHandler serves the leaderboard and per-user history lookups.
type UserHandler struct {
	Problems *repositories.ProblemRepository
	Matches  *repositories.MatchRepository
	Board    *leaderboard.Board
}

func (h *UserHandler) Top10(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Board.Top(r.Context(), 10)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (h *UserHandler) SeenProblems(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}
	problems, err := h.Problems.SeenByUser(userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to load seen problems")
		return
	}

	out := make([]map[string]any, 0, len(problems))
	for _, p := range problems {
		out = append(out, map[string]any{
			"problem_id": p.ID,
			"title":      p.Title,
			"language":   p.Language,
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (h *UserHandler) MatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}
	matches, err := h.Matches.ListByUser(userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to load matches")
		return
	}

	out := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		out = append(out, map[string]any{
			"opponent":    m.OpponentName,
			"winner":      m.Winner,
			"rounds_won":  m.RoundsWon,
			"rounds_lost": m.RoundsLost,
			"room_id":     m.RoomID,
			"created_at":  m.CreatedAt,
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func pathUserID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 32)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return uint(id), true
}

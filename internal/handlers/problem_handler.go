package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Odeddidi/BugHunt/internal/models"
	"github.com/Odeddidi/BugHunt/internal/repositories"
	"github.com/Odeddidi/BugHunt/internal/utils"
)

// ProblemHandler manages the problem bank. Creation is admin-only.
type ProblemHandler struct {
	Auth     *AuthHandler
	Problems *repositories.ProblemRepository
}

func (h *ProblemHandler) List(w http.ResponseWriter, r *http.Request) {
	problems, err := h.Problems.ListProblems()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to load problems")
		return
	}
	utils.WriteJSON(w, http.StatusOK, problems)
}

type createProblemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Difficulty  string `json:"difficulty"`
	CodeWithBug string `json:"code_with_bug"`
	FixedCode   string `json:"fixed_code"`
	Tests       []struct {
		Input          string `json:"input"`
		ExpectedOutput string `json:"expected_output"`
	} `json:"tests"`
}

func (h *ProblemHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.Auth.currentUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin {
		utils.WriteError(w, http.StatusForbidden, "admin only")
		return
	}

	var req createProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Title == "" || req.Language == "" || req.CodeWithBug == "" || req.FixedCode == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing fields")
		return
	}

	problem := &models.Problem{
		Title:       req.Title,
		Description: req.Description,
		Language:    req.Language,
		Difficulty:  req.Difficulty,
		CodeWithBug: req.CodeWithBug,
		FixedCode:   req.FixedCode,
	}
	for _, t := range req.Tests {
		problem.Tests = append(problem.Tests, models.ProblemTest{
			Input:          t.Input,
			ExpectedOutput: t.ExpectedOutput,
		})
	}

	if err := h.Problems.CreateProblem(problem); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to create problem")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{"id": problem.ID, "title": problem.Title})
}

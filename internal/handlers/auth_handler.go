package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Odeddidi/BugHunt/internal/models"
	"github.com/Odeddidi/BugHunt/internal/repositories"
	"github.com/Odeddidi/BugHunt/internal/utils"
)

const tokenTTL = 12 * time.Hour

// AuthHandler manages registration and login.
type AuthHandler struct {
	Users     *repositories.UserRepository
	JWTSecret string
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing fields")
		return
	}

	if _, err := h.Users.GetUserByUsername(req.Username); err == nil {
		utils.WriteError(w, http.StatusConflict, "username already exists")
		return
	}
	if _, err := h.Users.GetUserByEmail(req.Email); err == nil {
		utils.WriteError(w, http.StatusConflict, "email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	user := &models.User{Username: req.Username, Email: req.Email, PasswordHash: string(hash)}
	if err := h.Users.CreateUser(user); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	user, err := h.Users.GetUserByUsername(req.Username)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.WriteError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, h.JWTSecret, tokenTTL)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"username":     user.Username,
		"score":        user.Score,
		"user_id":      user.ID,
		"is_admin":     user.IsAdmin,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

// currentUser resolves the bearer token to a user, writing a 401 on any
// failure.
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	claims, err := utils.VerifyToken(r, h.JWTSecret)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
		return nil, false
	}
	userID, err := utils.GetUserIDFromClaims(claims)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "invalid token claims")
		return nil, false
	}
	user, err := h.Users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			utils.WriteError(w, http.StatusUnauthorized, "user not found")
		} else {
			utils.WriteError(w, http.StatusInternalServerError, "failed to load user")
		}
		return nil, false
	}
	return user, true
}

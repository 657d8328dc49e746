package repositories

import (
	"gorm.io/gorm"

	"github.com/Odeddidi/BugHunt/internal/models"
)

// MatchRepository owns the permanent match-history ledger.
type MatchRepository struct {
	DB *gorm.DB
}

func (r *MatchRepository) Create(match *models.UserMatch) error {
	return r.DB.Create(match).Error
}

func (r *MatchRepository) ListByUser(userID uint) ([]models.UserMatch, error) {
	var matches []models.UserMatch
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&matches).Error
	return matches, err
}

func (r *MatchRepository) CountByRoom(roomID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&models.UserMatch{}).Where("room_id = ?", roomID).Count(&n).Error
	return n, err
}

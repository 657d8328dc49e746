package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Odeddidi/BugHunt/internal/models"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) CreateUser(user *models.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

// IncrementScore bumps the persistent score by one and returns the updated
// user.
func (r *UserRepository) IncrementScore(userID uint) (*models.User, error) {
	err := r.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("score", gorm.Expr("score + 1")).Error
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(userID)
}

// TopByScore returns the n highest-scoring users.
func (r *UserRepository) TopByScore(n int) ([]models.User, error) {
	var users []models.User
	err := r.DB.Order("score DESC").Limit(n).Find(&users).Error
	return users, err
}

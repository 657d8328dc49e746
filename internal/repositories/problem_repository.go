package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Odeddidi/BugHunt/internal/models"
)

type ProblemRepository struct {
	DB *gorm.DB
}

func (r *ProblemRepository) CreateProblem(p *models.Problem) error {
	return r.DB.Create(p).Error
}

// GetProblem loads a problem with its tests in ID order.
func (r *ProblemRepository) GetProblem(problemID uint) (*models.Problem, error) {
	var p models.Problem
	err := r.DB.Preload("Tests", func(db *gorm.DB) *gorm.DB {
		return db.Order("problem_tests.id ASC")
	}).First(&p, problemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProblemNotFound
	}
	return &p, err
}

func (r *ProblemRepository) ListProblems() ([]models.Problem, error) {
	var problems []models.Problem
	err := r.DB.Find(&problems).Error
	return problems, err
}

// UnseenByBoth returns problems that neither user has seen, via an anti-join
// against each player's seen records.
func (r *ProblemRepository) UnseenByBoth(user1ID, user2ID uint) ([]models.Problem, error) {
	seen := r.DB.Model(&models.UserSeenProblem{}).
		Select("problem_id").
		Where("user_id IN ?", []uint{user1ID, user2ID})

	var problems []models.Problem
	err := r.DB.Where("id NOT IN (?)", seen).Find(&problems).Error
	return problems, err
}

// MarkSeen records that a problem was shown to a user, skipping the insert
// if an identical (user, problem) pair already exists.
func (r *ProblemRepository) MarkSeen(userID, problemID uint) error {
	var record models.UserSeenProblem
	return r.DB.
		Where(models.UserSeenProblem{UserID: userID, ProblemID: problemID}).
		FirstOrCreate(&record).Error
}

// SeenByUser lists the problems already shown to a user.
func (r *ProblemRepository) SeenByUser(userID uint) ([]models.Problem, error) {
	var problems []models.Problem
	err := r.DB.
		Joins("JOIN user_seen_problems ON user_seen_problems.problem_id = problems.id").
		Where("user_seen_problems.user_id = ?", userID).
		Find(&problems).Error
	return problems, err
}

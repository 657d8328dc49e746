package testhelpers

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Odeddidi/BugHunt/internal/models"
)

// SetupTestDB creates an isolated in-memory SQLite database for tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomPlayer{},
		&models.ActiveProblem{},
		&models.UserSeenProblem{},
		&models.UserMatch{},
		&models.Problem{},
		&models.ProblemTest{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

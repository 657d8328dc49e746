package main

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Odeddidi/BugHunt/internal/config"
	"github.com/Odeddidi/BugHunt/internal/duel"
	"github.com/Odeddidi/BugHunt/internal/handlers"
	"github.com/Odeddidi/BugHunt/internal/jobs"
	"github.com/Odeddidi/BugHunt/internal/judge"
	"github.com/Odeddidi/BugHunt/internal/leaderboard"
	"github.com/Odeddidi/BugHunt/internal/matchmaking"
	"github.com/Odeddidi/BugHunt/internal/models"
	"github.com/Odeddidi/BugHunt/internal/registry"
	"github.com/Odeddidi/BugHunt/internal/repositories"
	"github.com/Odeddidi/BugHunt/internal/routers"
	"github.com/Odeddidi/BugHunt/internal/verifier"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
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
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	roomRepo := &repositories.RoomRepository{DB: db}
	userRepo := &repositories.UserRepository{DB: db}
	problemRepo := &repositories.ProblemRepository{DB: db}
	matchRepo := &repositories.MatchRepository{DB: db}

	board := leaderboard.New(rdb, userRepo, logger)
	mm := matchmaking.New(db, roomRepo, logger)

	duelSvc := duel.NewService(duel.Deps{
		DB:        db,
		Registry:  registry.New(),
		Verifier:  verifier.New(judge.NewClient(cfg.JudgeURL)),
		Board:     board,
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,
	})

	auth := &handlers.AuthHandler{Users: userRepo, JWTSecret: cfg.JWTSecret}
	router := routers.New(routers.Deps{
		Auth:     auth,
		Rooms:    &handlers.RoomHandler{Auth: auth, Matchmaking: mm},
		Users:    &handlers.UserHandler{Problems: problemRepo, Matches: matchRepo, Board: board},
		Problems: &handlers.ProblemHandler{Auth: auth, Problems: problemRepo},
		Duel:     duelSvc,
	})

	sweeper := jobs.NewSweeper(roomRepo, logger)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("failed to start room sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	addr := ":" + cfg.Port
	logger.Info("server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

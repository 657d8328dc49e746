package jobs

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Odeddidi/BugHunt/internal/metrics"
	"github.com/Odeddidi/BugHunt/internal/repositories"
)

// Sweeper periodically removes rooms every player has disconnected from.
// Matchmaking runs the same cleanup inline, but the cron pass also reclaims
// rooms nobody queues into afterwards.
type Sweeper struct {
	cron   *cron.Cron
	rooms  *repositories.RoomRepository
	logger *zap.Logger
}

func NewSweeper(rooms *repositories.RoomRepository, logger *zap.Logger) *Sweeper {
	return &Sweeper{cron: cron.New(), rooms: rooms, logger: logger}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) sweep() {
	swept, err := s.rooms.CleanupAbandoned()
	if err != nil {
		s.logger.Warn("room sweep failed", zap.Error(err))
		return
	}
	if len(swept) > 0 {
		metrics.RoomsSwept.Add(float64(len(swept)))
		s.logger.Info("swept abandoned rooms", zap.Uints("room_ids", swept))
	}
}

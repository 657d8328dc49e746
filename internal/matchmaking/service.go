package matchmaking

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Odeddidi/BugHunt/internal/metrics"
	"github.com/Odeddidi/BugHunt/internal/models"
	"github.com/Odeddidi/BugHunt/internal/repositories"
)

// errRoomRace signals that a concurrent caller filled the candidate room
// between selection and insert; the transaction rolls back and FindMatch
// retries from scratch.
var errRoomRace = errors.New("room filled concurrently")

// Service finds-or-creates rooms for requesting users, reclaims existing
// sessions, and garbage-collects abandoned rooms.
type Service struct {
	db     *gorm.DB
	rooms  *repositories.RoomRepository
	logger *zap.Logger
}

func New(db *gorm.DB, rooms *repositories.RoomRepository, logger *zap.Logger) *Service {
	return &Service{db: db, rooms: rooms, logger: logger}
}

// CreatePrivateRoom creates a waiting room with a fresh short invite code
// and adds the caller as its first player.
func (s *Service) CreatePrivateRoom(userID uint) (*models.Room, error) {
	code := uuid.New().String()[:8]
	var room *models.Room
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r := s.rooms.WithTx(tx)
		var err error
		room, err = r.CreateRoom(&code)
		if err != nil {
			return err
		}
		_, err = r.AddPlayer(room.ID, userID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("private room created",
		zap.Uint("room_id", room.ID), zap.Uint("user_id", userID))
	return room, nil
}

// JoinByInvite adds the caller to the room behind an invite code. Joining a
// room the caller is already in is idempotent; the join that brings the
// player count to two flips the room to playing.
func (s *Service) JoinByInvite(code string, userID uint) (*models.Room, error) {
	var room *models.Room
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r := s.rooms.WithTx(tx)
		var err error
		room, err = r.GetRoomByInvite(code)
		if err != nil {
			return err
		}

		if _, err := r.GetPlayer(room.ID, userID); err == nil {
			return nil // already a member
		}

		count, err := r.CountPlayers(room.ID)
		if err != nil {
			return err
		}
		if count >= 2 {
			return repositories.ErrRoomFull
		}

		if _, err := r.AddPlayer(room.ID, userID, false); err != nil {
			return err
		}

		// Recount after insert: a concurrent join past two players rolls
		// the whole transaction back.
		count, err = r.CountPlayers(room.ID)
		if err != nil {
			return err
		}
		if count > 2 {
			return repositories.ErrRoomFull
		}
		if count == 2 {
			if _, err := r.MarkPlaying(room.ID); err != nil {
				return err
			}
			room.Status = models.RoomPlaying
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// FindMatch is the primary matchmaking entry: garbage-collect abandoned
// rooms, reclaim the caller's existing room, pair into a half-full waiting
// room, or create a fresh one.
func (s *Service) FindMatch(userID uint) (*models.Room, error) {
	swept, err := s.rooms.CleanupAbandoned()
	if err != nil {
		return nil, err
	}
	if len(swept) > 0 {
		metrics.RoomsSwept.Add(float64(len(swept)))
		s.logger.Info("removed abandoned rooms", zap.Uints("room_ids", swept))
	}

	room, err := s.findOrCreate(userID)
	if errors.Is(err, errRoomRace) {
		// Lost the pairing race; one retry lands in reuse or create.
		room, err = s.findOrCreate(userID)
	}
	return room, err
}

func (s *Service) findOrCreate(userID uint) (*models.Room, error) {
	var room *models.Room
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r := s.rooms.WithTx(tx)

		existing, err := r.FindUserRoom(userID)
		if err != nil {
			return err
		}
		if existing != nil {
			room, err = r.GetRoom(existing.RoomID)
			if err == nil {
				s.logger.Info("reconnected to existing room",
					zap.Uint("room_id", existing.RoomID), zap.Uint("user_id", userID))
			}
			return err
		}

		open, err := r.FindOpenRoom()
		if err != nil {
			return err
		}
		if open != nil {
			if _, err := r.AddPlayer(open.ID, userID, false); err != nil {
				return err
			}
			count, err := r.CountPlayers(open.ID)
			if err != nil {
				return err
			}
			if count != 2 {
				return errRoomRace
			}
			flipped, err := r.MarkPlaying(open.ID)
			if err != nil {
				return err
			}
			if !flipped {
				return errRoomRace
			}
			open.Status = models.RoomPlaying
			room = open
			s.logger.Info("match found",
				zap.Uint("room_id", open.ID), zap.Uint("user_id", userID))
			return nil
		}

		room, err = r.CreateRoom(nil)
		if err != nil {
			return err
		}
		if _, err := r.AddPlayer(room.ID, userID, false); err != nil {
			return err
		}
		s.logger.Info("created new room",
			zap.Uint("room_id", room.ID), zap.Uint("user_id", userID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

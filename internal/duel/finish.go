package duel

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/Odeddidi/BugHunt/internal/metrics"
	"github.com/Odeddidi/BugHunt/internal/models"
)

// finishRoom computes the match outcome and persists history and scores.
// The room status is the finalization guard: the compare-and-set in
// MarkFinished lets exactly one of any number of racing triggers perform the
// side effects; every other caller sees finalized == false and does nothing.
func (s *Service) finishRoom(ctx context.Context, roomID uint) (map[string]any, bool, error) {
	finalized, err := s.rooms.MarkFinished(roomID)
	if err != nil {
		return nil, false, err
	}
	if !finalized {
		return nil, false, nil
	}

	players, err := s.rooms.GetPlayers(roomID)
	if err != nil {
		return nil, true, err
	}
	if len(players) != 2 {
		// A never-filled room has no outcome to record.
		return nil, true, nil
	}
	p1, p2 := players[0], players[1]

	u1, err := s.users.GetUserByID(p1.UserID)
	if err != nil {
		return nil, true, err
	}
	u2, err := s.users.GetUserByID(p2.UserID)
	if err != nil {
		return nil, true, err
	}

	var (
		winnerID   *uint
		winnerName any
	)
	switch {
	case p1.ScoreInRoom > p2.ScoreInRoom:
		winnerID = &p1.UserID
	case p2.ScoreInRoom > p1.ScoreInRoom:
		winnerID = &p2.UserID
	}

	if winnerID != nil {
		winner, err := s.users.IncrementScore(*winnerID)
		if err != nil {
			return nil, true, err
		}
		winnerName = winner.Username
		if s.board != nil {
			s.board.SetScore(ctx, winner.Username, winner.Score)
		}
		if *winnerID == u1.ID {
			u1 = winner
		} else {
			u2 = winner
		}
	}

	if err := s.matches.Create(&models.UserMatch{
		UserID:       p1.UserID,
		RoomID:       roomID,
		OpponentName: u2.Username,
		Winner:       matchOutcome(winnerID, p1.UserID),
		RoundsWon:    p1.ScoreInRoom,
		RoundsLost:   p2.ScoreInRoom,
	}); err != nil {
		return nil, true, err
	}
	if err := s.matches.Create(&models.UserMatch{
		UserID:       p2.UserID,
		RoomID:       roomID,
		OpponentName: u1.Username,
		Winner:       matchOutcome(winnerID, p2.UserID),
		RoundsWon:    p2.ScoreInRoom,
		RoundsLost:   p1.ScoreInRoom,
	}); err != nil {
		return nil, true, err
	}

	metrics.RoomsFinalized.Inc()
	s.logger.Info("room finalized",
		zap.Uint("room_id", roomID),
		zap.Uintp("winner_user_id", winnerID),
		zap.Int("p1_score", p1.ScoreInRoom),
		zap.Int("p2_score", p2.ScoreInRoom))

	result := map[string]any{
		"event":    "room_result",
		"winner":   winnerID,
		"p1_score": p1.ScoreInRoom,
		"p2_score": p2.ScoreInRoom,
		"personalScores": map[string]int{
			strconv.FormatUint(uint64(u1.ID), 10): u1.Score,
			strconv.FormatUint(uint64(u2.ID), 10): u2.Score,
		},
		"winner_name": winnerName,
	}
	return result, true, nil
}

// matchOutcome returns the per-player win flag for the history ledger; nil
// records a draw.
func matchOutcome(winnerID *uint, userID uint) *bool {
	if winnerID == nil {
		return nil
	}
	won := *winnerID == userID
	return &won
}

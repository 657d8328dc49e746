package duel

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Odeddidi/BugHunt/internal/metrics"
	"github.com/Odeddidi/BugHunt/internal/models"
	"github.com/Odeddidi/BugHunt/internal/repositories"
	"go.uber.org/zap"
)

// errRoundInProgress reports that a concurrent caller advanced the round
// between the caller's guard read and the advance itself. The loser skips
// its broadcast; the winner's reaches every registered channel.
var errRoundInProgress = errors.New("round already started by the other session")

// startRound advances a room to its next round: pick a problem neither
// player has seen (falling back to the full set when none remain), create
// the ActiveProblem row, bump current_round, and record the problem as seen
// for both players — all in one transaction. observedRound is the
// current_round value the caller saw when it decided to advance; the bump is
// a compare-and-set against it, so two racing callers start one round.
//
// A room can never start a round with anything but exactly two players;
// that is a programming-error signal, not a user-facing condition.
func (s *Service) startRound(roomID uint, observedRound int) (*models.ActiveProblem, *models.Problem, error) {
	var (
		active  *models.ActiveProblem
		problem *models.Problem
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		rooms := s.rooms.WithTx(tx)
		problems := &repositories.ProblemRepository{DB: tx}

		players, err := rooms.GetPlayers(roomID)
		if err != nil {
			return err
		}
		if len(players) != 2 {
			return repositories.ErrPlayerCountInvalid
		}
		p1, p2 := players[0], players[1]

		candidates, err := problems.UnseenByBoth(p1.UserID, p2.UserID)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			// Both players have seen everything: repeats are the
			// deliberate fallback, not an error.
			s.logger.Info("no unseen problems left, falling back to full set",
				zap.Uint("room_id", roomID))
			candidates, err = problems.ListProblems()
			if err != nil {
				return err
			}
		}
		if len(candidates) == 0 {
			return repositories.ErrNoProblems
		}

		picked := candidates[s.intn(len(candidates))]
		problem = &picked

		var advanced bool
		active, advanced, err = rooms.AdvanceRound(roomID, picked.ID, observedRound)
		if err != nil {
			return err
		}
		if !advanced {
			return errRoundInProgress
		}

		for _, p := range players {
			if err := problems.MarkSeen(p.UserID, picked.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.RoundsStarted.Inc()
	s.logger.Info("round started",
		zap.Uint("room_id", roomID),
		zap.Uint("problem_id", problem.ID),
		zap.Int("round", active.RoundNumber))
	return active, problem, nil
}

package duel

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Odeddidi/BugHunt/internal/metrics"
	"github.com/Odeddidi/BugHunt/internal/models"
	"github.com/Odeddidi/BugHunt/internal/registry"
)

// ClientFrame is an inbound message on a room channel.
type ClientFrame struct {
	Event     string `json:"event"`
	ProblemID uint   `json:"problem_id,omitempty"`
	Solution  string `json:"solution,omitempty"`
}

// session is one authenticated channel's view of a room. Two sessions run
// concurrently per room, one per player.
type session struct {
	roomID uint
	user   *models.User
	player *models.RoomPlayer
	client *registry.Client
}

type terminationKind int

const (
	terminateDeclined terminationKind = iota
	terminateExited
	terminateDropped
)

// activate moves the channel to the Active state: register it, mark the
// player connected, exchange presence, and start round 1 once both sides are
// connected for the first time.
func (s *Service) activate(sess *session) error {
	s.registry.Register(sess.roomID, sess.client)

	if err := s.rooms.SetConnected(sess.roomID, sess.user.ID, true); err != nil {
		return err
	}

	s.logger.Info("player connected",
		zap.Uint("room_id", sess.roomID), zap.Uint("user_id", sess.user.ID))

	players, err := s.rooms.GetPlayers(sess.roomID)
	if err != nil {
		return err
	}
	for _, p := range players {
		if p.UserID == sess.user.ID {
			continue
		}
		opponent, err := s.users.GetUserByID(p.UserID)
		if err != nil {
			return err
		}
		sess.client.Send(map[string]any{"event": "opponent_join", "username": opponent.Username})
	}
	s.registry.BroadcastExcept(sess.roomID,
		map[string]any{"event": "opponent_join", "username": sess.user.Username}, sess.client)

	connected, err := s.rooms.CountConnected(sess.roomID)
	if err != nil {
		return err
	}
	room, err := s.rooms.GetRoom(sess.roomID)
	if err != nil {
		return err
	}
	if connected == 2 && room.CurrentRound == 0 {
		active, problem, err := s.startRound(sess.roomID, room.CurrentRound)
		if errors.Is(err, errRoundInProgress) {
			// The opponent's activation won the start; its broadcast covers
			// this channel, which registered before the guard read.
			return nil
		}
		if err != nil {
			return err
		}
		s.registry.Broadcast(sess.roomID, roundFrame(active, problem))
	}
	return nil
}

// handleFrame processes one inbound event. It returns true when the session
// is over and the read loop should stop.
func (s *Service) handleFrame(sess *session, frame ClientFrame) bool {
	switch frame.Event {
	case "submit_solution":
		s.handleSubmit(sess, frame)
	case "next_round_request":
		s.handleNextRoundRequest(sess)
	case "next_round_accept":
		s.handleNextRoundAccept(sess)
	case "next_round_decline":
		s.shutdown(sess, terminateDeclined)
		return true
	case "exit_room":
		s.shutdown(sess, terminateExited)
		return true
	default:
		// Malformed or unknown events are dropped; the session continues.
	}
	return false
}

// handleSubmit verifies a submission against the open round. Exactly one
// correct submission wins the round; a submission after the round is won is
// silently ignored, and failures are reported to the sender only.
func (s *Service) handleSubmit(sess *session, frame ClientFrame) {
	active, err := s.rooms.OpenActiveProblem(sess.roomID, frame.ProblemID)
	if err != nil {
		s.logger.Error("failed to look up active problem",
			zap.Uint("room_id", sess.roomID), zap.Error(err))
		return
	}
	if active == nil {
		return // round already won, or no such round
	}

	problem, err := s.problems.GetProblem(frame.ProblemID)
	if err != nil {
		s.logger.Error("failed to load problem",
			zap.Uint("problem_id", frame.ProblemID), zap.Error(err))
		return
	}

	verdict, err := s.verifier.Verify(context.Background(), strings.TrimSpace(frame.Solution), problem)
	if err != nil {
		// Judge unavailable: the submitter sees a failed result, the
		// opponent sees nothing, the session continues.
		s.logger.Warn("judge unavailable",
			zap.Uint("room_id", sess.roomID), zap.Error(err))
		metrics.Submissions.WithLabelValues("judge_error").Inc()
		sess.client.Send(map[string]any{"event": "solution_result", "correct": false})
		return
	}

	if !verdict.Correct {
		metrics.Submissions.WithLabelValues("incorrect").Inc()
		sess.client.Send(map[string]any{"event": "solution_result", "correct": false})
		return
	}

	won, err := s.rooms.SetRoundWinner(active.ID, sess.user.ID)
	if err != nil {
		s.logger.Error("failed to set round winner",
			zap.Uint("room_id", sess.roomID), zap.Error(err))
		return
	}
	if !won {
		return // lost the race to a concurrent correct submission
	}

	if err := s.rooms.IncrementRoomScore(sess.player.ID); err != nil {
		s.logger.Error("failed to increment room score",
			zap.Uint("room_player_id", sess.player.ID), zap.Error(err))
	}
	metrics.Submissions.WithLabelValues("correct").Inc()

	s.logger.Info("round won",
		zap.Uint("room_id", sess.roomID), zap.Uint("user_id", sess.user.ID),
		zap.Int("round", active.RoundNumber))

	s.registry.Broadcast(sess.roomID, map[string]any{
		"event":       "solution_result",
		"correct":     true,
		"winner_name": sess.user.Username,
		"fixed_code":  problem.FixedCode,
	})
}

func (s *Service) handleNextRoundRequest(sess *session) {
	s.registry.AddVote(sess.roomID, sess.user.ID)
	sess.client.Send(map[string]any{"event": "next_round_wait"})
	s.registry.BroadcastExcept(sess.roomID, map[string]any{
		"event":     "next_round_request",
		"from_user": sess.user.Username,
	}, sess.client)
}

func (s *Service) handleNextRoundAccept(sess *session) {
	if s.registry.AddVote(sess.roomID, sess.user.ID) < 2 {
		return
	}
	s.registry.ClearVotes(sess.roomID)

	room, err := s.rooms.GetRoom(sess.roomID)
	if err != nil {
		s.logger.Error("failed to load room",
			zap.Uint("room_id", sess.roomID), zap.Error(err))
		return
	}
	active, problem, err := s.startRound(sess.roomID, room.CurrentRound)
	if errors.Is(err, errRoundInProgress) {
		return
	}
	if err != nil {
		s.logger.Error("failed to start next round",
			zap.Uint("room_id", sess.roomID), zap.Error(err))
		return
	}
	s.registry.Broadcast(sess.roomID, roundFrame(active, problem))
}

// handleDisconnect covers abrupt channel loss: discard any pending vote and
// run the shared finalization sequence.
func (s *Service) handleDisconnect(sess *session) {
	s.shutdown(sess, terminateDropped)
	s.logger.Info("player disconnected",
		zap.Uint("room_id", sess.roomID), zap.Uint("user_id", sess.user.ID))
}

// shutdown is the single termination path for decline, explicit exit, and
// abrupt disconnect. Finalization side effects run at most once per room via
// the status compare-and-set; everything after that is idempotent.
func (s *Service) shutdown(sess *session, kind terminationKind) {
	roomID := sess.roomID

	if kind == terminateDropped {
		s.registry.DiscardVote(roomID, sess.user.ID)
	}

	if err := s.rooms.SetConnected(roomID, sess.user.ID, false); err != nil {
		s.logger.Error("failed to mark player disconnected",
			zap.Uint("room_id", roomID), zap.Error(err))
	}

	// The exiting player keeps its registration so it still receives the
	// room result; decliners and dropped channels are removed first.
	if kind != terminateExited {
		s.registry.Unregister(roomID, sess.client)
	}

	result, finalized, err := s.finishRoom(context.Background(), roomID)
	if err != nil {
		s.logger.Error("room finalization failed",
			zap.Uint("room_id", roomID), zap.Error(err))
	}
	if finalized && result != nil {
		s.registry.Broadcast(roomID, result)
	}

	switch kind {
	case terminateDeclined:
		s.registry.BroadcastExcept(roomID, map[string]any{
			"event": "opponent_declined", "username": sess.user.Username,
		}, sess.client)
	case terminateExited:
		s.registry.BroadcastExcept(roomID, map[string]any{
			"event": "opponent_left", "username": sess.user.Username,
		}, sess.client)
	case terminateDropped:
		s.registry.Broadcast(roomID, map[string]any{
			"event": "opponent_left", "username": sess.user.Username,
		})
	}

	s.registry.CloseAll(roomID)

	if kind == terminateDeclined {
		sess.client.Send(map[string]any{"event": "you_declined_and_left"})
		sess.client.Close()
	}
}

func roundFrame(active *models.ActiveProblem, problem *models.Problem) map[string]any {
	return map[string]any{
		"event": "round_start",
		"problem": map[string]any{
			"id":            problem.ID,
			"title":         problem.Title,
			"description":   problem.Description,
			"language":      problem.Language,
			"code_with_bug": problem.CodeWithBug,
			"round":         active.RoundNumber,
		},
	}
}

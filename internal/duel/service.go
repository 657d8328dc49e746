package duel

import (
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Odeddidi/BugHunt/internal/leaderboard"
	"github.com/Odeddidi/BugHunt/internal/metrics"
	"github.com/Odeddidi/BugHunt/internal/registry"
	"github.com/Odeddidi/BugHunt/internal/repositories"
	"github.com/Odeddidi/BugHunt/internal/utils"
	"github.com/Odeddidi/BugHunt/internal/verifier"
)

// Service owns the per-connection room session protocol. Sessions sharing a
// room coordinate only through the connection registry and the persisted
// room state, never through direct shared memory.
type Service struct {
	db       *gorm.DB
	rooms    *repositories.RoomRepository
	users    *repositories.UserRepository
	problems *repositories.ProblemRepository
	matches  *repositories.MatchRepository

	registry *registry.Registry
	verifier *verifier.Verifier
	board    *leaderboard.Board
	logger   *zap.Logger

	jwtSecret string
	upgrader  websocket.Upgrader

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Deps bundles the collaborators a Service needs. Rand may be nil, in which
// case a time-seeded source is used; tests inject a deterministic one.
type Deps struct {
	DB        *gorm.DB
	Registry  *registry.Registry
	Verifier  *verifier.Verifier
	Board     *leaderboard.Board
	Logger    *zap.Logger
	JWTSecret string
	Rand      *rand.Rand
}

func NewService(d Deps) *Service {
	rng := d.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		db:        d.DB,
		rooms:     &repositories.RoomRepository{DB: d.DB},
		users:     &repositories.UserRepository{DB: d.DB},
		problems:  &repositories.ProblemRepository{DB: d.DB},
		matches:   &repositories.MatchRepository{DB: d.DB},
		registry:  d.Registry,
		verifier:  d.Verifier,
		board:     d.Board,
		logger:    d.Logger,
		jwtSecret: d.JWTSecret,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		rng:       rng,
	}
}

// RoomSocket upgrades the connection and runs one session. Authentication
// failures close the socket silently, with no payload.
func (s *Service) RoomSocket(w http.ResponseWriter, r *http.Request) {
	roomID64, err := strconv.ParseUint(chi.URLParam(r, "roomID"), 10, 32)
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	roomID := uint(roomID64)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sess, err := s.authenticate(r.URL.Query().Get("token"), roomID, conn)
	if err != nil {
		_ = conn.Close()
		return
	}

	s.run(sess)
}

// authenticate resolves the bearer credential to a known user holding a
// RoomPlayer row for the room. Any failure is terminal for the channel.
func (s *Service) authenticate(token string, roomID uint, conn *websocket.Conn) (*session, error) {
	claims, err := utils.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	userID, err := utils.GetUserIDFromClaims(claims)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.rooms.GetRoom(roomID); err != nil {
		return nil, err
	}
	player, err := s.rooms.GetPlayer(roomID, userID)
	if err != nil {
		return nil, err
	}

	return &session{
		roomID: roomID,
		user:   user,
		player: player,
		client: registry.NewClient(conn),
	}, nil
}

func (s *Service) run(sess *session) {
	if err := s.activate(sess); err != nil {
		s.logger.Error("session activation failed",
			zap.Uint("room_id", sess.roomID), zap.Uint("user_id", sess.user.ID), zap.Error(err))
		// Undo the connected flag so the room stays eligible for the
		// abandoned-room sweep.
		if derr := s.rooms.SetConnected(sess.roomID, sess.user.ID, false); derr != nil {
			s.logger.Error("failed to mark player disconnected",
				zap.Uint("room_id", sess.roomID), zap.Error(derr))
		}
		s.registry.Unregister(sess.roomID, sess.client)
		sess.client.Close()
		return
	}

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	for {
		var frame ClientFrame
		if err := sess.client.ReadJSON(&frame); err != nil {
			s.handleDisconnect(sess)
			return
		}
		if done := s.handleFrame(sess, frame); done {
			return
		}
	}
}

func (s *Service) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

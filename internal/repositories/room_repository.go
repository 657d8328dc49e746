package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Odeddidi/BugHunt/internal/models"
)

// RoomRepository is the persisted side of room coordination. Every
// read-then-write that decides a state transition (fill-to-2, winner
// assignment, finalization) is either a single-statement compare-and-set or
// runs inside a transaction.
type RoomRepository struct {
	DB *gorm.DB
}

// WithTx returns a repository bound to the given transaction handle.
func (r *RoomRepository) WithTx(tx *gorm.DB) *RoomRepository {
	return &RoomRepository{DB: tx}
}

func (r *RoomRepository) CreateRoom(inviteCode *string) (*models.Room, error) {
	room := &models.Room{Status: models.RoomWaiting, InviteCode: inviteCode}
	if err := r.DB.Create(room).Error; err != nil {
		return nil, err
	}
	return room, nil
}

func (r *RoomRepository) GetRoom(roomID uint) (*models.Room, error) {
	var room models.Room
	err := r.DB.First(&room, roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	return &room, err
}

func (r *RoomRepository) GetRoomByInvite(code string) (*models.Room, error) {
	var room models.Room
	err := r.DB.First(&room, "invite_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	return &room, err
}

func (r *RoomRepository) AddPlayer(roomID, userID uint, connected bool) (*models.RoomPlayer, error) {
	rp := &models.RoomPlayer{RoomID: roomID, UserID: userID, Connected: connected}
	if err := r.DB.Create(rp).Error; err != nil {
		return nil, err
	}
	return rp, nil
}

// GetPlayers returns the RoomPlayer rows for a room in insertion order.
func (r *RoomRepository) GetPlayers(roomID uint) ([]models.RoomPlayer, error) {
	var players []models.RoomPlayer
	err := r.DB.Where("room_id = ?", roomID).Order("id ASC").Find(&players).Error
	return players, err
}

func (r *RoomRepository) GetPlayer(roomID, userID uint) (*models.RoomPlayer, error) {
	var rp models.RoomPlayer
	err := r.DB.First(&rp, "room_id = ? AND user_id = ?", roomID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	return &rp, err
}

func (r *RoomRepository) CountPlayers(roomID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&models.RoomPlayer{}).Where("room_id = ?", roomID).Count(&n).Error
	return n, err
}

func (r *RoomRepository) CountConnected(roomID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&models.RoomPlayer{}).
		Where("room_id = ? AND connected = ?", roomID, true).Count(&n).Error
	return n, err
}

func (r *RoomRepository) SetConnected(roomID, userID uint, connected bool) error {
	return r.DB.Model(&models.RoomPlayer{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("connected", connected).Error
}

// MarkPlaying flips a waiting room to playing. Returns false if the room was
// not in waiting state, so two concurrent fills cannot both claim the flip.
func (r *RoomRepository) MarkPlaying(roomID uint) (bool, error) {
	res := r.DB.Model(&models.Room{}).
		Where("id = ? AND status = ?", roomID, models.RoomWaiting).
		Update("status", models.RoomPlaying)
	return res.RowsAffected == 1, res.Error
}

// FindUserRoom returns the caller's RoomPlayer row in any room still in
// waiting or playing state, if one exists.
func (r *RoomRepository) FindUserRoom(userID uint) (*models.RoomPlayer, error) {
	var rp models.RoomPlayer
	err := r.DB.
		Joins("JOIN rooms ON rooms.id = room_players.room_id").
		Where("room_players.user_id = ? AND rooms.status IN ?", userID,
			[]string{models.RoomWaiting, models.RoomPlaying}).
		Order("room_players.id ASC").
		First(&rp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rp, nil
}

// FindOpenRoom returns the oldest waiting room holding exactly one player.
func (r *RoomRepository) FindOpenRoom() (*models.Room, error) {
	var room models.Room
	err := r.DB.
		Joins("JOIN room_players ON room_players.room_id = rooms.id").
		Where("rooms.status = ?", models.RoomWaiting).
		Group("rooms.id").
		Having("COUNT(room_players.id) = 1").
		Order("rooms.id ASC").
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// AbandonedRoomIDs lists rooms in waiting or playing state whose player set
// has zero connected members.
func (r *RoomRepository) AbandonedRoomIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&models.Room{}).
		Select("rooms.id").
		Joins("JOIN room_players ON room_players.room_id = rooms.id").
		Where("rooms.status IN ?", []string{models.RoomWaiting, models.RoomPlaying}).
		Group("rooms.id").
		Having("SUM(CASE WHEN room_players.connected THEN 1 ELSE 0 END) = 0").
		Scan(&ids).Error
	return ids, err
}

// DeleteRoomCascade removes a room and its dependent rows, children first,
// inside one transaction.
func (r *RoomRepository) DeleteRoomCascade(roomID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&models.ActiveProblem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.RoomPlayer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Room{}, roomID).Error
	})
}

// CleanupAbandoned garbage-collects every abandoned room and returns the ids
// it removed.
func (r *RoomRepository) CleanupAbandoned() ([]uint, error) {
	ids, err := r.AbandonedRoomIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := r.DeleteRoomCascade(id); err != nil {
			return ids, err
		}
	}
	return ids, nil
}

// OpenActiveProblem returns the round row for (room, problem) that has no
// winner yet, or nil if the round is already won or never existed.
func (r *RoomRepository) OpenActiveProblem(roomID, problemID uint) (*models.ActiveProblem, error) {
	var active models.ActiveProblem
	err := r.DB.
		Where("room_id = ? AND problem_id = ? AND winner_user_id IS NULL", roomID, problemID).
		First(&active).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &active, nil
}

// SetRoundWinner assigns the round winner if and only if the round is still
// open. Exactly one concurrent caller observes true.
func (r *RoomRepository) SetRoundWinner(activeProblemID, userID uint) (bool, error) {
	res := r.DB.Model(&models.ActiveProblem{}).
		Where("id = ? AND winner_user_id IS NULL", activeProblemID).
		Update("winner_user_id", userID)
	return res.RowsAffected == 1, res.Error
}

func (r *RoomRepository) IncrementRoomScore(roomPlayerID uint) error {
	return r.DB.Model(&models.RoomPlayer{}).
		Where("id = ?", roomPlayerID).
		Update("score_in_room", gorm.Expr("score_in_room + 1")).Error
}

// MarkFinished is the finalization guard: it flips the room to finished only
// if it is not finished already. Exactly one concurrent trigger observes
// true and performs the scoring side effects.
func (r *RoomRepository) MarkFinished(roomID uint) (bool, error) {
	res := r.DB.Model(&models.Room{}).
		Where("id = ? AND status <> ?", roomID, models.RoomFinished).
		Update("status", models.RoomFinished)
	return res.RowsAffected == 1, res.Error
}

// AdvanceRound increments current_round and creates the matching
// ActiveProblem row in one transaction. The increment is a compare-and-set
// against the round the caller observed when it decided to advance: when a
// concurrent caller advanced first, no rows match and the second caller gets
// false back instead of a duplicate round.
func (r *RoomRepository) AdvanceRound(roomID, problemID uint, observedRound int) (*models.ActiveProblem, bool, error) {
	var active *models.ActiveProblem
	advanced := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Room{}).
			Where("id = ? AND current_round = ?", roomID, observedRound).
			Update("current_round", observedRound+1)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		advanced = true
		active = &models.ActiveProblem{
			RoomID:      roomID,
			ProblemID:   problemID,
			RoundNumber: observedRound + 1,
		}
		return tx.Create(active).Error
	})
	if err != nil || !advanced {
		return nil, false, err
	}
	return active, true, nil
}

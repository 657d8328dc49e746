package matchmaking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Odeddidi/BugHunt/internal/models"
	"github.com/Odeddidi/BugHunt/internal/repositories"
	"github.com/Odeddidi/BugHunt/internal/testhelpers"
)

func setupService(t *testing.T) (*Service, *repositories.RoomRepository, *gorm.DB) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	rooms := &repositories.RoomRepository{DB: db}
	return New(db, rooms, zap.NewNop()), rooms, db
}

func seedUsers(t *testing.T, db *gorm.DB, names ...string) []*models.User {
	t.Helper()
	users := make([]*models.User, 0, len(names))
	for _, name := range names {
		u := &models.User{Username: name, Email: name + "@test.io", PasswordHash: "hash"}
		require.NoError(t, db.Create(u).Error)
		users = append(users, u)
	}
	return users
}

func TestFindMatchPairsTwoUsers(t *testing.T) {
	svc, rooms, db := setupService(t)
	us := seedUsers(t, db, "alice", "bob")

	r1, err := svc.FindMatch(us[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomWaiting, r1.Status)
	require.NoError(t, rooms.SetConnected(r1.ID, us[0].ID, true))

	r2, err := svc.FindMatch(us[1].ID)
	require.NoError(t, err)
	assert.Equal(t, r1.ID, r2.ID, "second caller joins the waiting room")
	assert.Equal(t, models.RoomPlaying, r2.Status)

	n, err := rooms.CountPlayers(r1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestFindMatchReusesExistingRoom(t *testing.T) {
	svc, rooms, db := setupService(t)
	us := seedUsers(t, db, "alice", "bob")

	r1, err := svc.FindMatch(us[0].ID)
	require.NoError(t, err)
	require.NoError(t, rooms.SetConnected(r1.ID, us[0].ID, true))
	r2, err := svc.FindMatch(us[1].ID)
	require.NoError(t, err)
	require.Equal(t, r1.ID, r2.ID)

	// Repeat calls reclaim the same playing room, they never open a new one.
	again, err := svc.FindMatch(us[0].ID)
	require.NoError(t, err)
	assert.Equal(t, r1.ID, again.ID)
	assert.Equal(t, models.RoomPlaying, again.Status)
}

func TestFindMatchThirdUserGetsFreshRoom(t *testing.T) {
	svc, rooms, db := setupService(t)
	us := seedUsers(t, db, "alice", "bob", "carol")

	r1, err := svc.FindMatch(us[0].ID)
	require.NoError(t, err)
	require.NoError(t, rooms.SetConnected(r1.ID, us[0].ID, true))
	_, err = svc.FindMatch(us[1].ID)
	require.NoError(t, err)

	r3, err := svc.FindMatch(us[2].ID)
	require.NoError(t, err)
	assert.NotEqual(t, r1.ID, r3.ID)
	assert.Equal(t, models.RoomWaiting, r3.Status)
}

func TestFindMatchSweepsAbandonedRoomsFirst(t *testing.T) {
	svc, rooms, db := setupService(t)
	us := seedUsers(t, db, "alice", "bob")

	// alice opens a room and vanishes without ever connecting.
	stale, err := svc.FindMatch(us[0].ID)
	require.NoError(t, err)

	// Sweeping removes the stale room, so bob cannot be paired into it; and
	// alice's next call gets a fresh room rather than the swept one.
	got, err := svc.FindMatch(us[1].ID)
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, got.ID)

	_, err = rooms.GetRoom(stale.ID)
	assert.ErrorIs(t, err, repositories.ErrRoomNotFound)
}

func TestFindMatchKeepsRoomWithConnectedPlayer(t *testing.T) {
	svc, rooms, db := setupService(t)
	us := seedUsers(t, db, "alice", "bob")

	r1, err := svc.FindMatch(us[0].ID)
	require.NoError(t, err)
	require.NoError(t, rooms.SetConnected(r1.ID, us[0].ID, true))

	r2, err := svc.FindMatch(us[1].ID)
	require.NoError(t, err)
	assert.Equal(t, r1.ID, r2.ID)
}

func TestCreatePrivateRoomHasInvite(t *testing.T) {
	svc, rooms, db := setupService(t)
	us := seedUsers(t, db, "alice")

	room, err := svc.CreatePrivateRoom(us[0].ID)
	require.NoError(t, err)
	require.NotNil(t, room.InviteCode)
	assert.Len(t, *room.InviteCode, 8)

	n, err := rooms.CountPlayers(room.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestJoinByInvite(t *testing.T) {
	svc, rooms, db := setupService(t)
	us := seedUsers(t, db, "alice", "bob", "carol")

	room, err := svc.CreatePrivateRoom(us[0].ID)
	require.NoError(t, err)

	joined, err := svc.JoinByInvite(*room.InviteCode, us[1].ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, joined.ID)
	assert.Equal(t, models.RoomPlaying, joined.Status)

	// Rejoining is idempotent for a member.
	_, err = svc.JoinByInvite(*room.InviteCode, us[1].ID)
	require.NoError(t, err)
	n, err := rooms.CountPlayers(room.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// A third player is refused.
	_, err = svc.JoinByInvite(*room.InviteCode, us[2].ID)
	assert.ErrorIs(t, err, repositories.ErrRoomFull)

	_, err = svc.JoinByInvite("nope1234", us[2].ID)
	assert.ErrorIs(t, err, repositories.ErrInviteNotFound)
}

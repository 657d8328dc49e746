package models

import "time"

// Room lifecycle states. A room never reopens after finishing.
const (
	RoomWaiting  = "waiting"
	RoomPlaying  = "playing"
	RoomFinished = "finished"
)

// User is a registered player. Score is the persistent counter incremented
// once per decisive room win.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Score        int       `gorm:"default:0" json:"score"`
	IsAdmin      bool      `gorm:"default:false" json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Room is a 2-player match session container.
type Room struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Status       string    `gorm:"default:waiting;index" json:"status"`
	InviteCode   *string   `gorm:"uniqueIndex" json:"inviteCode,omitempty"`
	CurrentRound int       `gorm:"default:0" json:"currentRound"`
	CreatedAt    time.Time `json:"createdAt"`

	Players        []RoomPlayer    `json:"players,omitempty"`
	ActiveProblems []ActiveProblem `json:"-"`
}

// RoomPlayer links a user to a room. At most two rows exist per room.
type RoomPlayer struct {
	ID           uint `gorm:"primarykey" json:"id"`
	RoomID       uint `gorm:"index;not null" json:"roomId"`
	UserID       uint `gorm:"index;not null" json:"userId"`
	ScoreInRoom  int  `gorm:"default:0" json:"scoreInRoom"`
	Connected    bool `gorm:"default:false" json:"connected"`
	ReadyForNext bool `gorm:"default:false" json:"readyForNext"`
}

// ActiveProblem is the problem assigned to one round of a room. A nil
// WinnerUserID marks the open round; at most one per room is open.
type ActiveProblem struct {
	ID           uint  `gorm:"primarykey" json:"id"`
	RoomID       uint  `gorm:"index;not null" json:"roomId"`
	ProblemID    uint  `gorm:"not null" json:"problemId"`
	WinnerUserID *uint `json:"winnerUserId,omitempty"`
	RoundNumber  int   `gorm:"default:1" json:"roundNumber"`
}

// UserSeenProblem records that a problem was shown to a user. Append-only;
// used to avoid repeats across matches.
type UserSeenProblem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	ProblemID uint      `gorm:"not null" json:"problemId"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserMatch is one player's perspective of a finished room, written exactly
// once at finalization. Winner nil means the match was a draw.
type UserMatch struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"userId"`
	RoomID       uint      `json:"roomId"`
	OpponentName string    `json:"opponentName"`
	Winner       *bool     `json:"winner"`
	RoundsWon    int       `json:"roundsWon"`
	RoundsLost   int       `json:"roundsLost"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Problem is a bug-injected snippet plus its canonical fix and hidden tests.
type Problem struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Title       string `gorm:"uniqueIndex;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Language    string `gorm:"not null" json:"language"`
	Difficulty  string `gorm:"not null" json:"difficulty"`
	CodeWithBug string `gorm:"type:text;not null" json:"codeWithBug"`
	FixedCode   string `gorm:"type:text;not null" json:"-"`

	Tests []ProblemTest `gorm:"constraint:OnDelete:CASCADE" json:"tests,omitempty"`
}

// ProblemTest is a single hidden test case, run in ID order.
type ProblemTest struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	ProblemID      uint   `gorm:"index" json:"problemId"`
	Input          string `json:"input"`
	ExpectedOutput string `gorm:"not null" json:"expectedOutput"`
}

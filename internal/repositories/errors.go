package repositories

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrProblemNotFound    = errors.New("problem not found")
	ErrInviteNotFound     = errors.New("invalid invite code")
	ErrRoomFull           = errors.New("room is full")
	ErrPlayerCountInvalid = errors.New("room must have exactly 2 players")
	ErrNoProblems         = errors.New("no problems available")
)

package leaderboard

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Odeddidi/BugHunt/internal/repositories"
)

const scoreKey = "leaderboard:score"

// Entry is one leaderboard row.
type Entry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Board caches persistent scores in a Redis sorted set in front of the users
// table. Cache writes are best-effort; reads fall back to the database.
type Board struct {
	rdb    *redis.Client
	users  *repositories.UserRepository
	logger *zap.Logger
}

func New(rdb *redis.Client, users *repositories.UserRepository, logger *zap.Logger) *Board {
	return &Board{rdb: rdb, users: users, logger: logger}
}

// SetScore records a user's current persistent score in the cache.
func (b *Board) SetScore(ctx context.Context, username string, score int) {
	if b.rdb == nil {
		return
	}
	if err := b.rdb.ZAdd(ctx, scoreKey, redis.Z{Score: float64(score), Member: username}).Err(); err != nil {
		b.logger.Warn("leaderboard cache update failed", zap.String("username", username), zap.Error(err))
	}
}

// Top returns the n highest scores, preferring the cache and falling back to
// the database (repopulating the cache on the way out).
func (b *Board) Top(ctx context.Context, n int) ([]Entry, error) {
	if b.rdb != nil {
		zs, err := b.rdb.ZRevRangeWithScores(ctx, scoreKey, 0, int64(n-1)).Result()
		if err == nil && len(zs) > 0 {
			entries := make([]Entry, 0, len(zs))
			for _, z := range zs {
				name, _ := z.Member.(string)
				entries = append(entries, Entry{Username: name, Score: int(z.Score)})
			}
			return entries, nil
		}
		if err != nil {
			b.logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	users, err := b.users.TopByScore(n)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		entries = append(entries, Entry{Username: u.Username, Score: u.Score})
		b.SetScore(ctx, u.Username, u.Score)
	}
	return entries, nil
}

package redisstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshPrefix = "refresh_token:"

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) SaveRefresh(ctx context.Context, token string, userID uint64, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshPrefix+token, strconv.FormatUint(userID, 10), ttl).Err()
}

// RedeemRefresh consumes the token in one round trip. GETDEL is atomic on the
// redis side, so concurrent redemptions of the same token cannot both succeed.
func (s *Store) RedeemRefresh(ctx context.Context, token string) (uint64, bool, error) {
	v, err := s.rdb.GetDel(ctx, refreshPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	userID, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return userID, true, nil
}

func (s *Store) DeleteRefresh(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, refreshPrefix+token).Err()
}

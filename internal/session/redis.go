package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farmchainx/dashboard/internal/domain/user"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Login(ctx context.Context, sid string, u user.User, token string) error {
	if sid == "" || token == "" || !u.Valid() {
		return errors.New("session: login requires a session id, a token and a valid user")
	}

	raw, err := encodeUser(u)
	if err != nil {
		return err
	}

	// both keys land together or not at all
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKey(s.prefix, sid), token, s.ttl)
		pipe.Set(ctx, userKey(s.prefix, sid), raw, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session login: %w", err)
	}
	return nil
}

func (s *RedisStore) Logout(ctx context.Context, sid string) error {
	if err := s.rdb.Del(ctx, tokenKey(s.prefix, sid), userKey(s.prefix, sid)).Err(); err != nil {
		return fmt.Errorf("session logout: %w", err)
	}
	return nil
}

func (s *RedisStore) Current(ctx context.Context, sid string) (Session, error) {
	vals, err := s.rdb.MGet(ctx, tokenKey(s.prefix, sid), userKey(s.prefix, sid)).Result()
	if err != nil {
		return Session{}, fmt.Errorf("session lookup: %w", err)
	}

	token, _ := vals[0].(string)
	rawUser, _ := vals[1].(string)

	sess, clear, err := resolve(sid, token, rawUser)
	if clear {
		if logoutErr := s.Logout(ctx, sid); logoutErr != nil {
			return Session{}, errors.Join(err, logoutErr)
		}
	}
	return sess, err
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

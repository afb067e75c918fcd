package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisService stores each user as a JSON string under <prefix>user:<id> and
// keeps a sorted set <prefix>users scored by creation time for listing.
type RedisService struct {
	client redis.UniversalClient
	prefix string
	newID  func() string
	now    func() time.Time
}

func NewRedisService(client redis.UniversalClient, prefix string) *RedisService {
	return &RedisService{
		client: client,
		prefix: prefix,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

func (s *RedisService) userKey(id string) string { return s.prefix + "user:" + id }
func (s *RedisService) indexKey() string         { return s.prefix + "users" }

func (s *RedisService) List(ctx context.Context) ([]Summary, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(ids) == 0 {
		return []Summary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.userKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]Summary, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// index entry without value: deleted between ZRANGE and MGET
			continue
		}
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		out = append(out, u.Summary())
	}
	return out, nil
}

func (s *RedisService) Get(ctx context.Context, id string) (User, error) {
	raw, err := s.client.Get(ctx, s.userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

func (s *RedisService) Create(ctx context.Context, d Draft) (string, error) {
	d, err := prepare(d)
	if err != nil {
		return "", err
	}
	u := User{ID: s.newID(), Draft: d}
	raw, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.userKey(u.ID), raw, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(s.now().UnixNano()), Member: u.ID})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return u.ID, nil
}

func (s *RedisService) Update(ctx context.Context, u User) error {
	d, err := prepare(u.Draft)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(User{ID: u.ID, Draft: d})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	ok, err := s.client.SetXX(ctx, s.userKey(u.ID), raw, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisService) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.userKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// Seed writes users that are not stored yet, preserving their order.
func (s *RedisService) Seed(ctx context.Context, users []User) error {
	base := s.now().UnixNano()
	for i, u := range users {
		raw, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		ok, err := s.client.SetNX(ctx, s.userKey(u.ID), raw, 0).Result()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		if !ok {
			continue
		}
		if err := s.client.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(base + int64(i)), Member: u.ID}).Err(); err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
	}
	return nil
}

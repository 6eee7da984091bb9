package session

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/napryag/laundry_pickup/pkg/domain/mappan"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

const (
	keyPrefix    = "booking_session:"
	maxTxRetries = 3
)

// RedisStore keeps sessions in Redis with a per-key TTL, so several server
// instances can share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errs.New("failed to connect to redis").Arg("addr", cfg.Addr).Wrap(err)
	}
	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

func (s *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	data, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errs.New("failed to load session").Arg("id", id).Wrap(err)
	}
	return decode(data)
}

// Save stores s and restarts its TTL.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	data, err := encode(sess)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key(sess.ID), data, s.ttl).Err(); err != nil {
		return errs.New("failed to save session").Arg("id", sess.ID).Wrap(err)
	}
	return nil
}

// SaveMap rewrites the map state inside an optimistic transaction, so a
// concurrent Save of the wizard is never overwritten.
func (s *RedisStore) SaveMap(ctx context.Context, id string, m mappan.State) error {
	if !validID(id) {
		return ErrNotFound
	}
	k := key(id)
	update := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, k).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}
		sess, err := decode(data)
		if err != nil {
			return err
		}
		sess.Map = m
		if data, err = encode(sess); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, data, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, update, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return errs.New("failed to save map state").Arg("id", id).Wrap(err)
		}
		return err
	}
	return errs.New("failed to save map state").Arg("id", id).Wrap(redis.TxFailedErr)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return errs.New("failed to delete session").Arg("id", id).Wrap(err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"ems/src/config"
	"ems/src/models"
	"ems/src/types"

	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("booking session not found")
	ErrStaleSession    = errors.New("booking session was modified concurrently")
)

// SessionStore persists draft booking sessions. Update performs a
// compare-and-set on the session's current step so two concurrent submissions
// against the same session cannot both win.
type SessionStore interface {
	Create(ctx context.Context, sess *models.BookingSession) error
	Get(ctx context.Context, id string) (*models.BookingSession, error)
	Update(ctx context.Context, sess *models.BookingSession, expectStep types.SessionStep) error
	Delete(ctx context.Context, id string) error
}

type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func sessionKey(id string) string {
	return fmt.Sprintf("booking:session:%s", id)
}

func (s *RedisSessionStore) Create(ctx context.Context, sess *models.BookingSession) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.SetEx(ctx, sessionKey(sess.ID), string(b), config.SESSION_TTL).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.BookingSession, error) {
	val, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, err
	}
	var sess models.BookingSession
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Update writes the session only if the stored copy is still at expectStep.
// The write goes through WATCH so a concurrent writer aborts the
// transaction instead of being silently overwritten.
func (s *RedisSessionStore) Update(ctx context.Context, sess *models.BookingSession, expectStep types.SessionStep) error {
	key := sessionKey(sess.ID)
	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrSessionNotFound
		} else if err != nil {
			return err
		}
		var stored models.BookingSession
		if err := json.Unmarshal([]byte(val), &stored); err != nil {
			return err
		}
		if stored.CurrentStep != expectStep {
			return ErrStaleSession
		}
		b, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetEx(ctx, key, string(b), config.SESSION_TTL)
			return nil
		})
		return err
	}
	err := s.rdb.Watch(ctx, txf, key)
	if err == redis.TxFailedErr {
		log.Printf("[booking] Concurrent write on session %s\n", sess.ID)
		return ErrStaleSession
	}
	return err
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}

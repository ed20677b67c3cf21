package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/landmark-lsms/lsms-backend/internal/domain/otp"
	"github.com/landmark-lsms/lsms-backend/pkg/logger"
)

// challengesKey is the hash holding every outstanding challenge.
const challengesKey = "lsms:otp:challenges"

// ChallengeStore implements otp.ChallengeStore over a Redis hash.
type ChallengeStore struct {
	client *redis.Client
	log    *logger.Logger
}

// NewChallengeStore creates a ChallengeStore.
func NewChallengeStore(client *redis.Client, log *logger.Logger) *ChallengeStore {
	if log == nil {
		log = logger.Default()
	}
	return &ChallengeStore{
		client: client,
		log:    log.With(logger.Component("redis-otp")),
	}
}

// Get returns the outstanding challenge for the key. An unparseable
// field reads as absent.
func (s *ChallengeStore) Get(ctx context.Context, key string) (otp.Challenge, bool, error) {
	data, err := s.client.HGet(ctx, challengesKey, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return otp.Challenge{}, false, nil
	}
	if err != nil {
		return otp.Challenge{}, false, fmt.Errorf("redis: failed to get challenge: %w", err)
	}

	var challenge otp.Challenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		s.log.Warn("challenge unparseable, treating as absent",
			logger.String("key", key), logger.Err(err))
		return otp.Challenge{}, false, nil
	}
	return challenge, true, nil
}

// Put stores the challenge, overwriting any prior one for the key. No
// Redis TTL is set: expiry is checked lazily by the manager.
func (s *ChallengeStore) Put(ctx context.Context, key string, challenge otp.Challenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, challengesKey, key, data).Err(); err != nil {
		return fmt.Errorf("redis: failed to store challenge: %w", err)
	}
	return nil
}

// Delete removes the challenge for the key.
func (s *ChallengeStore) Delete(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, challengesKey, key).Err(); err != nil {
		return fmt.Errorf("redis: failed to delete challenge: %w", err)
	}
	return nil
}

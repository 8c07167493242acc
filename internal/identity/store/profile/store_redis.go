package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"worktrack/internal/identity/models"
	id "worktrack/pkg/domain"
	"worktrack/pkg/platform/sentinel"
)

// Store is the profile persistence contract the cache decorates.
type Store interface {
	Save(ctx context.Context, profile *models.Profile) error
	FindByUserID(ctx context.Context, userID id.UserID) (*models.Profile, error)
	Delete(ctx context.Context, userID id.UserID) error
}

// CachedStore is a read-through Redis cache in front of another profile
// store. Authorization resolves department membership on every request, so
// this is the hottest read path in the system. Cache failures degrade to
// the backing store; they never fail the operation.
//
// Negative results are cached too ("no profile") to protect the backing
// store from repeated misses for identities without profiles.
type CachedStore struct {
	backing Store
	client  *redis.Client
	ttl     time.Duration
}

const profileKeyPrefix = "worktrack:profile:"

// missMarker is stored for users with no profile.
const missMarker = "__none__"

// NewCached wraps a profile store with a Redis cache.
func NewCached(backing Store, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{backing: backing, client: client, ttl: ttl}
}

func (s *CachedStore) FindByUserID(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	key := profileKeyPrefix + userID.String()

	cached, err := s.client.Get(ctx, key).Result()
	if err == nil {
		if cached == missMarker {
			return nil, sentinel.ErrNotFound
		}
		var profile models.Profile
		if err := json.Unmarshal([]byte(cached), &profile); err == nil {
			return &profile, nil
		}
		// Corrupt entry: fall through to the backing store and rewrite.
	} else if !errors.Is(err, redis.Nil) {
		// Redis unavailable: serve from the backing store.
		return s.backing.FindByUserID(ctx, userID)
	}

	profile, err := s.backing.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.client.Set(ctx, key, missMarker, s.ttl)
		}
		return nil, err
	}

	if payload, err := json.Marshal(profile); err == nil {
		s.client.Set(ctx, key, payload, s.ttl)
	}
	return profile, nil
}

// Save writes through and invalidates the cached entry.
func (s *CachedStore) Save(ctx context.Context, profile *models.Profile) error {
	if err := s.backing.Save(ctx, profile); err != nil {
		return err
	}
	s.client.Del(ctx, profileKeyPrefix+profile.UserID.String())
	return nil
}

// Delete removes the profile and its cached entry.
func (s *CachedStore) Delete(ctx context.Context, userID id.UserID) error {
	if err := s.backing.Delete(ctx, userID); err != nil {
		return err
	}
	s.client.Del(ctx, profileKeyPrefix+userID.String())
	return nil
}

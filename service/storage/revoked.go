package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "vconnct:revoked:"

// RevocationList tracks session tokens invalidated by logout. Keys expire
// together with the token itself, so the set stays bounded.
//
// A nil *RevocationList is valid and means revocation is disabled (no redis
// configured): Revoke is a no-op and IsRevoked always reports false.
type RevocationList struct {
	rdb *redis.Client
}

func NewRevocationList(rdb *redis.Client) *RevocationList {
	if rdb == nil {
		return nil
	}
	return &RevocationList{rdb: rdb}
}

// Revoke marks a token hash as dead for its remaining lifetime.
func (r *RevocationList) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if r == nil {
		return nil
	}
	if ttl <= 0 {
		return nil // already expired, nothing to deny
	}
	if err := r.rdb.Set(ctx, revokedKeyPrefix+tokenHash, "1", ttl).Err(); err != nil {
		return errors.Wrap(err, "revoke token")
	}
	return nil
}

func (r *RevocationList) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	if r == nil {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, revokedKeyPrefix+tokenHash).Result()
	if err != nil {
		return false, errors.Wrap(err, "check revoked token")
	}
	return n > 0, nil
}

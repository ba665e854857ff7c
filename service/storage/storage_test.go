package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRevocationList(t *testing.T) {
	var r *RevocationList

	require.NoError(t, r.Revoke(context.Background(), "hash", time.Hour))
	dead, err := r.IsRevoked(context.Background(), "hash")
	require.NoError(t, err)
	assert.False(t, dead)
}

func TestNewRevocationListNilClient(t *testing.T) {
	assert.Nil(t, NewRevocationList(nil))
}

func TestNilRateLimiter(t *testing.T) {
	var l *RateLimiter

	for i := 0; i < 10; i++ {
		ok, err := l.Allow(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestNewRateLimiterInvalid(t *testing.T) {
	assert.Nil(t, NewRateLimiter(nil, 100, time.Minute))
}

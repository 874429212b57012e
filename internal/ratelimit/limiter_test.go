package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLimiterReusesPerHost(t *testing.T) {
	l := NewHostLimiterWithDefaults()

	a := l.GetLimiter("api.example.com")
	b := l.GetLimiter("api.example.com")
	other := l.GetLimiter("other.example.com")

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}

func TestSetHostLimitOverrides(t *testing.T) {
	l := NewHostLimiterWithDefaults()
	l.SetHostLimit("api.example.com", 1, 1)

	lim := l.GetLimiter("api.example.com")
	assert.Equal(t, float64(1), float64(lim.Limit()))
	assert.Equal(t, 1, lim.Burst())
}

func TestWaitHonorsContext(t *testing.T) {
	l := NewHostLimiter(Config{RequestsPerSecond: 0.001, BurstSize: 1})

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "h"), "burst token should be available")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "h"), "second call must block past the deadline")
}

package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_New(t *testing.T) {
	assert.Equal(t, 5, NewLimiter(10, 5).defaultBurst)
	assert.Equal(t, 1, NewLimiter(10, -1).defaultBurst)
}

func TestLimiter_PerHost(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"))

	assert.False(t, limiter.Allow("https://eutils.ncbi.nlm.nih.gov/other"), "token for host is spent")
	assert.True(t, limiter.Allow("https://api.openai.com/v1"), "other host has its own bucket")
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow("http://example.com"))
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewLimiter(0.1, 1)
	require.True(t, limiter.Allow("http://slow.example"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "http://slow.example")
	assert.Error(t, err)
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetHostRate("slow.example", 0.1, 1)

	assert.True(t, limiter.Allow("http://slow.example/a"))
	assert.False(t, limiter.Allow("http://slow.example/b"))
	assert.True(t, limiter.Allow("http://fast.example/a"))
}

func TestHostOf(t *testing.T) {
	host, err := HostOf("https://api.anthropic.com/v1/messages")
	require.NoError(t, err)
	assert.Equal(t, "api.anthropic.com", host)

	host, err = HostOf("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", host)
}

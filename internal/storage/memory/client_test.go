package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLoginRateLimit(t *testing.T) {
	c := New()
	ctx := context.Background()

	for i := 0; i < loginRateLimitMax; i++ {
		ok, err := c.CheckLoginRateLimit(ctx, "user@example.com")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i+1)
	}

	ok, err := c.CheckLoginRateLimit(ctx, "user@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	// Лимит считается на каждый email отдельно.
	ok, err = c.CheckLoginRateLimit(ctx, "other@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionSecretLifecycle(t *testing.T) {
	c := New()
	ctx := context.Background()

	got, err := c.GetSessionSecret(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, c.SetSessionSecret(ctx, "sess-1", "c2VjcmV0"))

	got, err = c.GetSessionSecret(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "c2VjcmV0", got)

	require.NoError(t, c.DeleteSessionSecret(ctx, "sess-1"))

	got, err = c.GetSessionSecret(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSessionSecretConcurrentAccess(t *testing.T) {
	c := New()
	ctx := context.Background()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("sess-%d-%d", g, i)
				_ = c.SetSessionSecret(ctx, id, "s")
				_, _ = c.GetSessionSecret(ctx, id)
				_ = c.DeleteSessionSecret(ctx, id)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}

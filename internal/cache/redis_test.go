package cache

import (
	"context"
	"net"
	"strconv"
	"testing"

	"usina-backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)

	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Redis.Host = host
	cfg.Redis.Port = port
	require.NoError(t, Init(cfg))

	t.Cleanup(func() {
		if client != nil {
			client.Close()
			client = nil
		}
	})
	return mr
}

func TestActiveGoalsRoundTrip(t *testing.T) {
	startCache(t)
	ctx := context.Background()

	_, ok := GetActiveGoals(ctx)
	assert.False(t, ok)

	SetActiveGoals(ctx, []byte(`[{"id":1}]`))
	data, ok := GetActiveGoals(ctx)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(data))

	InvalidateActiveGoals(ctx)
	_, ok = GetActiveGoals(ctx)
	assert.False(t, ok)
}

func TestFranchisePhonesKeyedPerFranchise(t *testing.T) {
	startCache(t)
	ctx := context.Background()

	SetFranchisePhones(ctx, 10, []byte(`[{"id":7}]`))
	SetFranchisePhones(ctx, 20, []byte(`[{"id":9}]`))

	data, ok := GetFranchisePhones(ctx, 10)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":7}]`, string(data))

	// Invalidating one franchise leaves the other's entry alone
	InvalidateFranchisePhones(ctx, 10)
	_, ok = GetFranchisePhones(ctx, 10)
	assert.False(t, ok)
	_, ok = GetFranchisePhones(ctx, 20)
	assert.True(t, ok)
}

func TestWebhookEventMarkAndRelease(t *testing.T) {
	startCache(t)
	ctx := context.Background()

	assert.True(t, MarkWebhookEvent(ctx, "evt-1"))
	assert.False(t, MarkWebhookEvent(ctx, "evt-1"))

	// Releasing the mark lets a retry of the same event through
	UnmarkWebhookEvent(ctx, "evt-1")
	assert.True(t, MarkWebhookEvent(ctx, "evt-1"))
}

func TestHelpersDegradeWithoutClient(t *testing.T) {
	client = nil
	ctx := context.Background()

	_, ok := GetActiveGoals(ctx)
	assert.False(t, ok)
	SetActiveGoals(ctx, []byte("x"))
	InvalidateActiveGoals(ctx)

	_, ok = GetFranchisePhones(ctx, 1)
	assert.False(t, ok)

	// Dedupe fails open: without Redis the table remains authoritative
	assert.True(t, MarkWebhookEvent(ctx, "evt-2"))
	assert.True(t, MarkWebhookEvent(ctx, "evt-2"))
	UnmarkWebhookEvent(ctx, "evt-2")
}

package status

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func fixed(level Level) Checker {
	return func(context.Context) Check { return Check{Name: string(level), Status: level} }
}

func TestRun_WorstWins(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, Healthy, Run(ctx).Status)
	assert.Equal(t, Healthy, Run(ctx, fixed(Healthy), fixed(Healthy)).Status)
	assert.Equal(t, Degraded, Run(ctx, fixed(Healthy), fixed(Degraded)).Status)

	r := Run(ctx, fixed(Unhealthy), fixed(Degraded), fixed(Healthy))
	assert.Equal(t, Unhealthy, r.Status)
	require.Len(t, r.Checks, 3)
	assert.Equal(t, "unhealthy", r.Checks[0].Name)
}

func TestStore(t *testing.T) {
	ok := Store(pingFunc(func(context.Context) error { return nil }))(context.Background())
	assert.Equal(t, Healthy, ok.Status)

	bad := Store(pingFunc(func(context.Context) error { return errors.New("closed") }))(context.Background())
	assert.Equal(t, Unhealthy, bad.Status)
	assert.Contains(t, bad.Message, "closed")
}

func TestAPIKey(t *testing.T) {
	assert.Equal(t, Unhealthy, APIKey("anthropic", "")(context.Background()).Status)

	c := APIKey("openai", "sk-secret")(context.Background())
	assert.Equal(t, Healthy, c.Status)
	assert.Equal(t, "openai_api_key", c.Name)
	assert.NotContains(t, c.Message, "sk-secret")
}

func TestDataDir(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Healthy, DataDir("")(ctx).Status)
	assert.Equal(t, Healthy, DataDir(filepath.Join(t.TempDir(), "critics.db"))(ctx).Status)
	assert.Equal(t, Unhealthy, DataDir(filepath.Join(t.TempDir(), "nope", "critics.db"))(ctx).Status)
}

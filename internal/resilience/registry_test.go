package resilience_test

import (
	"context"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfootprint/eventfootprint/internal/resilience"
)

func TestRegistry_TracksExecutor(t *testing.T) {
	cfg := testConfig("store", 0)
	registry := cfg.Registry
	exec := resilience.NewExecutor(cfg)

	assert.Equal(t, 1, registry.Count())

	health := registry.GetHealth("store")
	require.NotNil(t, health)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.IsHealthy())
	assert.Nil(t, health.LastSuccessAt)

	require.NoError(t, exec.Do(context.Background(), func(context.Context) error { return nil }))
	assert.NotNil(t, registry.GetHealth("store").LastSuccessAt)

	_ = exec.Do(context.Background(), func(context.Context) error { return errTransient })
	health = registry.GetHealth("store")
	assert.NotNil(t, health.LastFailureAt)
	assert.Equal(t, errTransient.Error(), health.LastError)
}

func TestRegistry_IgnoresPermanentErrors(t *testing.T) {
	cfg := testConfig("lookup", 0)
	exec := resilience.NewExecutor(cfg)

	_ = exec.Do(context.Background(), func(context.Context) error { return errNotFound })

	assert.Nil(t, cfg.Registry.GetHealth("lookup").LastFailureAt)
}

func TestRegistry_UnregisterAndList(t *testing.T) {
	registry := resilience.NewRegistry()
	for _, name := range []string{"b", "a"} {
		cfg := testConfig(name, 0)
		cfg.Registry = registry
		resilience.NewExecutor(cfg)
	}

	all := registry.GetAllHealth()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)

	registry.Unregister("a")
	assert.Nil(t, registry.GetHealth("a"))
	assert.Equal(t, 1, registry.Count())
}

package tools

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareNoPolicyAllows(t *testing.T) {
	m := NewToolMiddleware()
	assert.NoError(t, m.Check("anything", map[string]any{"x": "y"}))
}

func TestMiddlewareDisabledTool(t *testing.T) {
	m := NewToolMiddleware()
	m.SetPolicy("exec", ToolPolicy{Enabled: false})

	err := m.Check("exec", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestMiddlewareArgSizeLimit(t *testing.T) {
	m := NewToolMiddleware()
	m.SetPolicy("write_file", ToolPolicy{Enabled: true, MaxArgSize: 100})

	assert.NoError(t, m.Check("write_file", map[string]any{"content": "small"}))

	err := m.Check("write_file", map[string]any{"content": strings.Repeat("a", 200)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestMiddlewareRateLimit(t *testing.T) {
	m := NewToolMiddleware()
	m.SetPolicy("exec", ToolPolicy{Enabled: true, MaxCallsPerMin: 2})

	assert.NoError(t, m.Check("exec", nil))
	assert.NoError(t, m.Check("exec", nil))

	err := m.Check("exec", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestMiddlewareUpdatePolicyClearsLimiter(t *testing.T) {
	m := NewToolMiddleware()
	m.SetPolicy("exec", ToolPolicy{Enabled: true, MaxCallsPerMin: 1})
	require.NoError(t, m.Check("exec", nil))
	require.Error(t, m.Check("exec", nil))

	m.SetPolicy("exec", ToolPolicy{Enabled: true})
	assert.NoError(t, m.Check("exec", nil))
	assert.NoError(t, m.Check("exec", nil))
}

func TestEstimateArgSize(t *testing.T) {
	size := estimateArgSize(map[string]any{
		"s": "hello",
		"n": 3.14,
		"b": true,
	})
	assert.Equal(t, 5+8+1, size)
}

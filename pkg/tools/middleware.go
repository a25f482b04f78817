package tools

import (
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// ToolPolicy defines per-tool execution constraints.
type ToolPolicy struct {
	MaxArgSize     int  // max total size of all args in bytes (0 = unlimited)
	MaxCallsPerMin int  // rate limit: calls per minute (0 = unlimited)
	Enabled        bool // whether the tool is allowed to execute
}

// ToolMiddleware provides pre-execution policy checks for tool calls.
type ToolMiddleware struct {
	policies map[string]ToolPolicy
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

func NewToolMiddleware() *ToolMiddleware {
	return &ToolMiddleware{
		policies: make(map[string]ToolPolicy),
		limiters: make(map[string]*rate.Limiter),
	}
}

// SetPolicy configures the policy for a specific tool.
func (m *ToolMiddleware) SetPolicy(toolName string, policy ToolPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[toolName] = policy
	if policy.MaxCallsPerMin > 0 {
		m.limiters[toolName] = rate.NewLimiter(
			rate.Limit(float64(policy.MaxCallsPerMin)/60.0),
			policy.MaxCallsPerMin,
		)
	} else {
		delete(m.limiters, toolName)
	}
}

// Check validates a tool call against its policy.
// Returns nil if allowed, or an error describing why it was rejected.
func (m *ToolMiddleware) Check(toolName string, args map[string]any) error {
	m.mu.RLock()
	policy, hasPolicy := m.policies[toolName]
	limiter := m.limiters[toolName]
	m.mu.RUnlock()

	if !hasPolicy {
		return nil // no policy = allow
	}

	if !policy.Enabled {
		return fmt.Errorf("tool %q is disabled by policy", toolName)
	}

	if policy.MaxArgSize > 0 {
		if total := estimateArgSize(args); total > policy.MaxArgSize {
			return fmt.Errorf("tool %q input too large (%d bytes, max %d)", toolName, total, policy.MaxArgSize)
		}
	}

	if limiter != nil && !limiter.Allow() {
		return fmt.Errorf("tool %q rate limited (max %d/min)", toolName, policy.MaxCallsPerMin)
	}

	return nil
}

// estimateArgSize calculates the approximate size of tool arguments in bytes.
func estimateArgSize(args map[string]any) int {
	total := 0
	for _, v := range args {
		switch val := v.(type) {
		case string:
			total += len(val)
		case float64:
			total += 8
		case bool:
			total += 1
		default:
			total += 64 // estimate for complex types
		}
	}
	return total
}

package guard

import "sync"

// Capabilities holds the two capability slots the gate depends on. Both are
// written once during gateway startup, before any tool call is possible, and
// only read afterwards. An absent coach is a meaningful state of its own:
// the gate blocks every call until one is registered.
type Capabilities struct {
	mu    sync.RWMutex
	coach Coach
	hooks HookRunner
}

func NewCapabilities() *Capabilities {
	return &Capabilities{}
}

// SetCoach registers the security coach. Later calls overwrite earlier ones;
// startup is expected to call this exactly once.
func (c *Capabilities) SetCoach(coach Coach) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coach = coach
}

func (c *Capabilities) SetHookRunner(runner HookRunner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = runner
}

// Coach returns the registered coach, or nil when none has been registered
// yet.
func (c *Capabilities) Coach() Coach {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.coach
}

func (c *Capabilities) HookRunner() HookRunner {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hooks
}

// Package coach provides the built-in security coach: a pattern-rule
// evaluator for pending tool calls. The gate treats the coach as an injected
// capability; this is the implementation the gateway registers at startup.
package coach

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/femtoclaw/femtoclaw/pkg/guard"
)

// Rule matches a regex against the flattened string parameters of tool calls
// whose canonical name is in Tools (empty = every tool).
type Rule struct {
	Tools   []string
	Pattern string
	Reason  string
}

// Config holds the coach configuration.
type Config struct {
	Rules []Rule
}

type compiledRule struct {
	tools  map[string]struct{} // nil = all tools
	re     *regexp.Regexp
	reason string
}

// Coach evaluates tool invocations against its rule set. It implements
// guard.Coach.
type Coach struct {
	rules []compiledRule
}

// defaultRules screen for payloads no tool call should carry, regardless of
// which tool the agent picked.
var defaultRules = []Rule{
	{Pattern: `\brm\s+-[rf]{1,2}\s+(/|~)`, Reason: "recursive delete of home or root"},
	{Pattern: `\bmkfs\b|\bdd\s+if=.*of=/dev/`, Reason: "disk destruction"},
	{Pattern: `:\(\)\s*\{.*\};\s*:`, Reason: "fork bomb"},
	{Pattern: `\bcurl\b[^|]*\|\s*(sh|bash)\b`, Reason: "piping a download into a shell"},
	{Pattern: `\bwget\b[^|]*\|\s*(sh|bash)\b`, Reason: "piping a download into a shell"},
	{Pattern: `/dev/tcp/`, Reason: "raw socket redirection"},
	{Pattern: `(?i)ignore\s+(all\s+)?(previous|above)\s+instructions`, Reason: "prompt injection marker"},
	{Pattern: `(?i)\bbase64\b.*\|\s*(sh|bash|zsh)\b`, Reason: "obfuscated shell payload"},
}

// New compiles the default rules plus any custom rules from cfg. Custom
// rules that fail to compile are reported, not silently dropped: a rule the
// operator wrote must not vanish.
func New(cfg Config) (*Coach, error) {
	c := &Coach{}

	for _, r := range defaultRules {
		c.rules = append(c.rules, compiledRule{
			re:     regexp.MustCompile(r.Pattern),
			reason: r.Reason,
		})
	}

	for _, r := range cfg.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("coach rule %q: %w", r.Pattern, err)
		}
		var tools map[string]struct{}
		if len(r.Tools) > 0 {
			tools = make(map[string]struct{}, len(r.Tools))
			for _, t := range r.Tools {
				tools[guard.CanonicalToolName(t)] = struct{}{}
			}
		}
		c.rules = append(c.rules, compiledRule{tools: tools, re: re, reason: r.Reason})
	}

	return c, nil
}

// BeforeToolCall evaluates one invocation. The first matching rule blocks
// the call with its reason.
func (c *Coach) BeforeToolCall(ctx context.Context, inv *guard.ToolInvocation) (*guard.CoachVerdict, error) {
	haystack := flatten(inv.Params)

	for _, rule := range c.rules {
		if rule.tools != nil {
			if _, ok := rule.tools[inv.ToolName]; !ok {
				continue
			}
		}
		if rule.re.MatchString(haystack) {
			reason := rule.reason
			if reason == "" {
				reason = fmt.Sprintf("matched pattern %s", rule.re.String())
			}
			return &guard.CoachVerdict{Block: true, BlockReason: reason}, nil
		}
	}

	return &guard.CoachVerdict{}, nil
}

// flatten renders the string leaves of a parameter set into one searchable
// blob. Nested maps and slices are walked; non-string scalars are skipped,
// they cannot carry a textual payload.
func flatten(params map[string]any) string {
	var b strings.Builder
	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case string:
			b.WriteString(val)
			b.WriteByte('\n')
		case map[string]any:
			for _, inner := range val {
				walk(inner)
			}
		case []any:
			for _, inner := range val {
				walk(inner)
			}
		}
	}
	walk(params)
	return b.String()
}

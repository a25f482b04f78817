// femtoclaw - multi-channel AI agent gateway
// License: MIT

package builtin

import (
	"context"
	"regexp"
	"strings"

	"github.com/femtoclaw/femtoclaw/pkg/hooks"
	"github.com/femtoclaw/femtoclaw/pkg/plugin"
)

// secretPatterns cover the credential shapes that most often leak into chat
// output.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`),
	regexp.MustCompile(`ghp_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`xox[baprs]-[A-Za-z0-9-]{10,}`),
	regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`),
}

// RedactorPlugin scrubs credential-shaped substrings from outbound messages
// before they reach a channel.
type RedactorPlugin struct {
	extra []*regexp.Regexp
}

// NewRedactorPlugin compiles any extra patterns on top of the builtin set.
// Patterns that do not compile are skipped.
func NewRedactorPlugin(extraPatterns []string) *RedactorPlugin {
	p := &RedactorPlugin{}
	for _, raw := range extraPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if re, err := regexp.Compile(raw); err == nil {
			p.extra = append(p.extra, re)
		}
	}
	return p
}

func (p *RedactorPlugin) Name() string       { return "redactor" }
func (p *RedactorPlugin) APIVersion() string { return plugin.APIVersion }

func (p *RedactorPlugin) Register(r *hooks.HookRegistry) error {
	r.OnMessageSending("redactor", func(_ context.Context, e *hooks.MessageSendingEvent) error {
		e.Content = p.redact(e.Content)
		return nil
	})
	return nil
}

func (p *RedactorPlugin) redact(content string) string {
	for _, re := range secretPatterns {
		content = re.ReplaceAllString(content, "[redacted]")
	}
	for _, re := range p.extra {
		content = re.ReplaceAllString(content, "[redacted]")
	}
	return content
}

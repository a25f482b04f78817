// Package config holds the gateway configuration: JSON file on disk with
// environment variable overrides applied on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Agents   AgentsConfig   `json:"agents"`
	Channels ChannelsConfig `json:"channels"`
	Tools    ToolsConfig    `json:"tools"`
	Guard    GuardConfig    `json:"guard"`
	Session  SessionConfig  `json:"session"`
	Logging  LoggingConfig  `json:"logging"`
}

type AgentsConfig struct {
	Defaults AgentDefaults `json:"defaults"`
}

type AgentDefaults struct {
	ID                  string `json:"id" env:"FEMTOCLAW_AGENTS_DEFAULTS_ID"`
	Workspace           string `json:"workspace" env:"FEMTOCLAW_AGENTS_DEFAULTS_WORKSPACE"`
	RestrictToWorkspace bool   `json:"restrict_to_workspace" env:"FEMTOCLAW_AGENTS_DEFAULTS_RESTRICT_TO_WORKSPACE"`
}

type ChannelsConfig struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Discord   DiscordConfig   `json:"discord"`
	WebSocket WebSocketConfig `json:"websocket"`
}

type TelegramConfig struct {
	Enabled   bool                `json:"enabled" env:"FEMTOCLAW_CHANNELS_TELEGRAM_ENABLED"`
	Token     string              `json:"token" env:"FEMTOCLAW_CHANNELS_TELEGRAM_TOKEN"`
	Proxy     string              `json:"proxy" env:"FEMTOCLAW_CHANNELS_TELEGRAM_PROXY"`
	AllowFrom FlexibleStringSlice `json:"allow_from" env:"FEMTOCLAW_CHANNELS_TELEGRAM_ALLOW_FROM"`
}

type DiscordConfig struct {
	Enabled   bool                `json:"enabled" env:"FEMTOCLAW_CHANNELS_DISCORD_ENABLED"`
	Token     string              `json:"token" env:"FEMTOCLAW_CHANNELS_DISCORD_TOKEN"`
	AllowFrom FlexibleStringSlice `json:"allow_from" env:"FEMTOCLAW_CHANNELS_DISCORD_ALLOW_FROM"`
}

type WebSocketConfig struct {
	Enabled   bool                `json:"enabled" env:"FEMTOCLAW_CHANNELS_WEBSOCKET_ENABLED"`
	Host      string              `json:"host" env:"FEMTOCLAW_CHANNELS_WEBSOCKET_HOST"`
	Port      int                 `json:"port" env:"FEMTOCLAW_CHANNELS_WEBSOCKET_PORT"`
	Path      string              `json:"path" env:"FEMTOCLAW_CHANNELS_WEBSOCKET_PATH"`
	AllowFrom FlexibleStringSlice `json:"allow_from" env:"FEMTOCLAW_CHANNELS_WEBSOCKET_ALLOW_FROM"`
}

type ToolsConfig struct {
	Exec     ExecToolConfig            `json:"exec"`
	Policies map[string]ToolPolicyConf `json:"policies,omitempty"`
	Allow    []string                  `json:"allow,omitempty"`
	Deny     []string                  `json:"deny,omitempty"`
}

type ExecToolConfig struct {
	Enabled        bool     `json:"enabled" env:"FEMTOCLAW_TOOLS_EXEC_ENABLED"`
	DenyPatterns   []string `json:"deny_patterns,omitempty"`
	AllowPatterns  []string `json:"allow_patterns,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds" env:"FEMTOCLAW_TOOLS_EXEC_TIMEOUT_SECONDS"`
}

// ToolPolicyConf is the per-tool execution policy applied by the registry
// middleware.
type ToolPolicyConf struct {
	Enabled        bool `json:"enabled"`
	MaxArgBytes    int  `json:"max_arg_bytes,omitempty"`
	MaxCallsPerMin int  `json:"max_calls_per_min,omitempty"`
}

// GuardConfig configures the built-in security coach.
type GuardConfig struct {
	CoachEnabled bool       `json:"coach_enabled" env:"FEMTOCLAW_GUARD_COACH_ENABLED"`
	Rules        []RuleConf `json:"rules,omitempty"`
}

// RuleConf is one coach rule: a regex matched against the flattened string
// params of tools whose canonical name matches the Tools glob set.
type RuleConf struct {
	Tools   []string `json:"tools,omitempty"` // empty = all tools
	Pattern string   `json:"pattern"`
	Reason  string   `json:"reason,omitempty"`
}

type SessionConfig struct {
	Path string `json:"path" env:"FEMTOCLAW_SESSION_PATH"`
}

type LoggingConfig struct {
	Level string `json:"level" env:"FEMTOCLAW_LOG_LEVEL"`
	File  string `json:"file" env:"FEMTOCLAW_LOG_FILE"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

func (c *Config) WorkspacePath() string {
	return expandHome(c.Agents.Defaults.Workspace)
}

func (c *Config) SessionPath() string {
	return expandHome(c.Session.Path)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}

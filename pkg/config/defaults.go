package config

import (
	"os"
	"strings"
)

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() *Config {
	return &Config{
		Agents: AgentsConfig{
			Defaults: AgentDefaults{
				ID:                  "main",
				Workspace:           "~/.femtoclaw/workspace",
				RestrictToWorkspace: true,
			},
		},
		Channels: ChannelsConfig{
			Telegram: TelegramConfig{
				Enabled:   false,
				Token:     "",
				AllowFrom: FlexibleStringSlice{},
			},
			Discord: DiscordConfig{
				Enabled:   false,
				Token:     "",
				AllowFrom: FlexibleStringSlice{},
			},
			WebSocket: WebSocketConfig{
				Enabled:   true,
				Host:      "127.0.0.1",
				Port:      18793,
				Path:      "/ws",
				AllowFrom: FlexibleStringSlice{},
			},
		},
		Tools: ToolsConfig{
			Exec: ExecToolConfig{
				Enabled:        false,
				TimeoutSeconds: 60,
			},
		},
		Guard: GuardConfig{
			CoachEnabled: true,
		},
		Session: SessionConfig{
			Path: "~/.femtoclaw/sessions.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigPath resolves the config file location: $FEMTOCLAW_CONFIG if set,
// otherwise ~/.femtoclaw/config.json.
func ConfigPath() string {
	if p := strings.TrimSpace(os.Getenv("FEMTOCLAW_CONFIG")); p != "" {
		return expandHome(p)
	}
	return expandHome("~/.femtoclaw/config.json")
}

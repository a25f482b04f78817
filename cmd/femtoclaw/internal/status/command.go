// femtoclaw - multi-channel AI agent gateway
// License: MIT

// Package status prints a summary of the local configuration.
package status

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/femtoclaw/femtoclaw/cmd/femtoclaw/internal"
)

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the gateway configuration status",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return showStatus()
		},
	}
}

func showStatus() error {
	path := internal.GetConfigPath()
	fmt.Printf("%s femtoclaw %s\n\n", internal.Logo, internal.FormatVersion())
	fmt.Printf("Config: %s\n", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("  (not found, run: femtoclaw onboard)")
		return nil
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("Workspace: %s\n", cfg.WorkspacePath())
	fmt.Printf("Sessions: %s\n", cfg.SessionPath())
	fmt.Printf("Security coach: %s\n", onOff(cfg.Guard.CoachEnabled))
	fmt.Printf("Coach rules: %d\n", len(cfg.Guard.Rules))
	fmt.Println("Channels:")
	fmt.Printf("  telegram: %s\n", onOff(cfg.Channels.Telegram.Enabled && cfg.Channels.Telegram.Token != ""))
	fmt.Printf("  discord: %s\n", onOff(cfg.Channels.Discord.Enabled && cfg.Channels.Discord.Token != ""))
	fmt.Printf("  websocket: %s\n", onOff(cfg.Channels.WebSocket.Enabled))
	fmt.Printf("Shell tool: %s\n", onOff(cfg.Tools.Exec.Enabled))

	return nil
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// femtoclaw - multi-channel AI agent gateway
// License: MIT

// Package onboard implements first-run setup: it writes a default config and
// creates the workspace.
package onboard

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/femtoclaw/femtoclaw/cmd/femtoclaw/internal"
	"github.com/femtoclaw/femtoclaw/pkg/config"
)

func NewOnboardCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Create the default configuration and workspace",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return onboard(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")

	return cmd
}

func onboard(force bool) error {
	path := internal.GetConfigPath()

	if _, err := os.Stat(path); err == nil && !force {
		fmt.Printf("%s Config already exists at %s (use --force to overwrite)\n", internal.Logo, path)
		return nil
	}

	cfg := config.DefaultConfig()
	if err := config.SaveConfig(path, cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if ws := cfg.WorkspacePath(); ws != "" {
		if err := os.MkdirAll(ws, 0o755); err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}
	}

	fmt.Printf("%s Wrote default config to %s\n", internal.Logo, path)
	fmt.Println("Edit it to enable channels, then run: femtoclaw gateway")
	return nil
}

// femtoclaw - multi-channel AI agent gateway
// License: MIT

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/femtoclaw/femtoclaw/cmd/femtoclaw/internal"
	"github.com/femtoclaw/femtoclaw/cmd/femtoclaw/internal/gateway"
	"github.com/femtoclaw/femtoclaw/cmd/femtoclaw/internal/onboard"
	"github.com/femtoclaw/femtoclaw/cmd/femtoclaw/internal/status"
)

func main() {
	root := &cobra.Command{
		Use:           "femtoclaw",
		Short:         "Multi-channel AI agent gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		gateway.NewGatewayCommand(),
		onboard.NewOnboardCommand(),
		status.NewStatusCommand(),
		newVersionCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the femtoclaw version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("%s femtoclaw %s\n", internal.Logo, internal.FormatVersion())
			if build, goVer := internal.FormatBuildInfo(); build != "" {
				fmt.Printf("  Build: %s\n  Go: %s\n", build, goVer)
			} else {
				fmt.Printf("  Go: %s\n", goVer)
			}
		},
	}
}

// femtoclaw - multi-channel AI agent gateway
// License: MIT

// Package internal holds shared helpers for the femtoclaw CLI commands.
package internal

import (
	"fmt"
	"runtime"

	"github.com/femtoclaw/femtoclaw/pkg/config"
)

const Logo = "🦐"

var (
	version   = "dev"
	gitCommit string
	buildTime string
)

func GetConfigPath() string {
	return config.ConfigPath()
}

func LoadConfig() (*config.Config, error) {
	return config.LoadConfig(GetConfigPath())
}

// FormatVersion returns the version string with optional git commit.
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// FormatBuildInfo returns build time and go version info.
func FormatBuildInfo() (string, string) {
	return buildTime, runtime.Version()
}

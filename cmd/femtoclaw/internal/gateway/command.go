// femtoclaw - multi-channel AI agent gateway
// License: MIT

// Package gateway implements the command that runs the gateway in the
// foreground.
package gateway

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/femtoclaw/femtoclaw/cmd/femtoclaw/internal"
	"github.com/femtoclaw/femtoclaw/pkg/agent"
	"github.com/femtoclaw/femtoclaw/pkg/bus"
	"github.com/femtoclaw/femtoclaw/pkg/channels"
	"github.com/femtoclaw/femtoclaw/pkg/coach"
	"github.com/femtoclaw/femtoclaw/pkg/config"
	"github.com/femtoclaw/femtoclaw/pkg/guard"
	"github.com/femtoclaw/femtoclaw/pkg/hooks"
	"github.com/femtoclaw/femtoclaw/pkg/logger"
	"github.com/femtoclaw/femtoclaw/pkg/plugin"
	"github.com/femtoclaw/femtoclaw/pkg/plugin/builtin"
	"github.com/femtoclaw/femtoclaw/pkg/session"
	"github.com/femtoclaw/femtoclaw/pkg/tools"
)

func NewGatewayCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "gateway",
		Aliases: []string{"g"},
		Short:   "Run the femtoclaw gateway",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGateway(debug)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

func runGateway(debug bool) error {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if debug {
		logger.SetLevel(logger.DEBUG)
	} else {
		logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	}
	if cfg.Logging.File != "" {
		if err := logger.EnableFileLogging(cfg.Logging.File); err != nil {
			logger.WarnCF("gateway", "File logging disabled", map[string]any{
				"error": err.Error(),
			})
		}
	}

	logger.InfoCF("gateway", "Starting femtoclaw gateway", map[string]any{
		"version": internal.FormatVersion(),
	})

	msgBus := bus.NewMessageBus()

	// Plugins register their hooks into the shared registry.
	pluginMgr := plugin.NewManager()
	if err := pluginMgr.RegisterAll(
		builtin.NewArgLimitPlugin(builtin.ArgLimitConfig{MaxTimeoutSeconds: 300}),
		builtin.NewRedactorPlugin(nil),
	); err != nil {
		return fmt.Errorf("failed to load plugins: %w", err)
	}
	registerPolicyHook(pluginMgr.HookRegistry(), cfg)

	// The gate's capability slots are filled before any channel can
	// deliver a message, so no tool call ever races the setup.
	caps := guard.NewCapabilities()
	if cfg.Guard.CoachEnabled {
		coachRules := make([]coach.Rule, 0, len(cfg.Guard.Rules))
		for _, r := range cfg.Guard.Rules {
			coachRules = append(coachRules, coach.Rule{
				Tools:   r.Tools,
				Pattern: r.Pattern,
				Reason:  r.Reason,
			})
		}
		c, err := coach.New(coach.Config{Rules: coachRules})
		if err != nil {
			return fmt.Errorf("failed to build security coach: %w", err)
		}
		caps.SetCoach(c)
	} else {
		logger.WarnC("gateway", "Security coach disabled, all tool calls will be blocked")
	}
	caps.SetHookRunner(guard.NewRegistryRunner(pluginMgr.HookRegistry()))

	gate := guard.NewGate(caps)
	registry := tools.NewGatedRegistry(func(t tools.Tool) tools.Tool {
		return guard.WrapTool(t, gate)
	})
	registerTools(registry, cfg, msgBus)

	store, err := session.NewStore(cfg.SessionPath())
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()

	channelMgr, err := channels.NewManager(cfg, msgBus)
	if err != nil {
		return fmt.Errorf("failed to initialize channels: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := channelMgr.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start channels: %w", err)
	}

	loop := agent.NewLoop(
		cfg.Agents.Defaults.ID,
		msgBus,
		registry,
		pluginMgr.HookRegistry(),
		store,
	)
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	logger.InfoCF("gateway", "Gateway running", map[string]any{
		"channels": channelMgr.Names(),
		"tools":    registry.List(),
		"plugins":  pluginMgr.Names(),
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCF("gateway", "Shutting down", map[string]any{
			"signal": sig.String(),
		})
	case err := <-loopDone:
		if err != nil && err != context.Canceled {
			logger.ErrorCF("gateway", "Agent loop exited", map[string]any{
				"error": err.Error(),
			})
		}
	}

	cancel()
	channelMgr.StopAll(context.Background())
	msgBus.Close()
	logger.DisableFileLogging()
	return nil
}

// registerTools builds the tool surface from the config. Every tool passes
// through the registry's wrapper, so there is no unguarded execution path.
func registerTools(registry *tools.ToolRegistry, cfg *config.Config, msgBus *bus.MessageBus) {
	workspace := cfg.WorkspacePath()
	restrict := cfg.Agents.Defaults.RestrictToWorkspace

	registry.Register(tools.NewReadFileTool(workspace, restrict))
	registry.Register(tools.NewWriteFileTool(workspace, restrict))
	registry.Register(tools.NewListDirTool(workspace, restrict))
	registry.Register(tools.NewMessageTool(msgBus))

	if cfg.Tools.Exec.Enabled {
		registry.Register(tools.NewShellToolWithConfig(workspace, tools.ShellToolConfig{
			DenyPatterns:  cfg.Tools.Exec.DenyPatterns,
			AllowPatterns: cfg.Tools.Exec.AllowPatterns,
			MaxTimeout:    cfg.Tools.Exec.TimeoutSeconds,
		}))
	}

	tools.ApplyPolicy(registry, tools.AccessPolicy{
		Allow: cfg.Tools.Allow,
		Deny:  cfg.Tools.Deny,
	})
}

// registerPolicyHook wires the per-tool execution policies into the hook
// chain, so rate limits and size caps are enforced on the same path as every
// other hook.
func registerPolicyHook(reg *hooks.HookRegistry, cfg *config.Config) {
	if len(cfg.Tools.Policies) == 0 {
		return
	}

	middleware := tools.NewToolMiddleware()
	for name, p := range cfg.Tools.Policies {
		middleware.SetPolicy(name, tools.ToolPolicy{
			Enabled:        p.Enabled,
			MaxArgSize:     p.MaxArgBytes,
			MaxCallsPerMin: p.MaxCallsPerMin,
		})
	}

	reg.OnBeforeToolCall("tool-policy", func(_ context.Context, e *hooks.ToolCallEvent) (*hooks.ToolCallDecision, error) {
		if err := middleware.Check(e.ToolName, e.Params); err != nil {
			return &hooks.ToolCallDecision{Block: true, BlockReason: err.Error()}, nil
		}
		return nil, nil
	})
}

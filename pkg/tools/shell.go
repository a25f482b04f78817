package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"time"
)

// ShellToolConfig holds configurable options for ShellTool.
type ShellToolConfig struct {
	DenyPatterns  []string // additional regex deny patterns from config
	AllowPatterns []string // if set, only matching commands are allowed
	MaxTimeout    int      // seconds, default 60
}

// ShellTool executes shell commands in the agent workspace. The command is
// screened against deny patterns before it is run; the tool-call gate has
// already evaluated the call by the time Execute is reached.
type ShellTool struct {
	workingDir    string
	timeout       time.Duration
	denyPatterns  []*regexp.Regexp
	allowPatterns []*regexp.Regexp
	channel       string
	chatID        string
}

var defaultDenyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\s+-[rf]{1,2}\b`),
	regexp.MustCompile(`\b(format|mkfs|diskpart)\b\s`),
	regexp.MustCompile(`\bdd\s+if=`),
	regexp.MustCompile(`>\s*/dev/sd[a-z]\b`),
	regexp.MustCompile(`\b(shutdown|reboot|poweroff)\b`),
	regexp.MustCompile(`:\(\)\s*\{.*\};\s*:`),
	regexp.MustCompile(`\|\s*sh\b`),
	regexp.MustCompile(`\|\s*bash\b`),
	regexp.MustCompile(`;\s*rm\s+-[rf]`),
	regexp.MustCompile(`&&\s*rm\s+-[rf]`),
	regexp.MustCompile(`\bsudo\b`),
	regexp.MustCompile(`\bchown\b`),
	regexp.MustCompile(`\bpkill\b`),
	regexp.MustCompile(`\bkillall\b`),
	regexp.MustCompile(`/dev/tcp/`),
	regexp.MustCompile(`\bcurl\b.*\|\s*(sh|bash)`),
	regexp.MustCompile(`\bwget\b.*\|\s*(sh|bash)`),
	regexp.MustCompile(`\beval\b`),
}

func NewShellTool(workingDir string) *ShellTool {
	return NewShellToolWithConfig(workingDir, ShellToolConfig{})
}

func NewShellToolWithConfig(workingDir string, cfg ShellToolConfig) *ShellTool {
	denyPatterns := make([]*regexp.Regexp, len(defaultDenyPatterns))
	copy(denyPatterns, defaultDenyPatterns)

	for _, p := range cfg.DenyPatterns {
		if re, err := regexp.Compile(p); err == nil {
			denyPatterns = append(denyPatterns, re)
		}
	}

	var allowPatterns []*regexp.Regexp
	for _, p := range cfg.AllowPatterns {
		if re, err := regexp.Compile(p); err == nil {
			allowPatterns = append(allowPatterns, re)
		}
	}

	timeout := 60 * time.Second
	if cfg.MaxTimeout > 0 {
		timeout = time.Duration(cfg.MaxTimeout) * time.Second
	}

	return &ShellTool{
		workingDir:    workingDir,
		timeout:       timeout,
		denyPatterns:  denyPatterns,
		allowPatterns: allowPatterns,
	}
}

// SetContext implements ContextualTool.
func (t *ShellTool) SetContext(channel, chatID string) {
	t.channel = channel
	t.chatID = chatID
}

func (t *ShellTool) Name() string { return "exec" }

func (t *ShellTool) Description() string {
	return "Execute a shell command and return its output. Use with caution."
}

func (t *ShellTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The shell command to execute",
			},
			"working_dir": map[string]any{
				"type":        "string",
				"description": "Optional working directory for the command",
			},
		},
		"required": []string{"command"},
	}
}

func (t *ShellTool) screen(command string) string {
	if len(t.allowPatterns) > 0 {
		allowed := false
		for _, re := range t.allowPatterns {
			if re.MatchString(command) {
				allowed = true
				break
			}
		}
		if !allowed {
			return "Command rejected: not on the allow list"
		}
	}

	for _, re := range t.denyPatterns {
		if re.MatchString(command) {
			return fmt.Sprintf("Command rejected by safety filter: %s", re.String())
		}
	}
	return ""
}

func (t *ShellTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	command, ok := args["command"].(string)
	if !ok || command == "" {
		return ErrorResult("command is required")
	}

	cwd := t.workingDir
	if wd, ok := args["working_dir"].(string); ok && wd != "" {
		cwd = wd
	}
	if cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			cwd = wd
		}
	}

	if reason := t.screen(command); reason != "" {
		return ErrorResult(reason)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(cmdCtx, "powershell", "-NoProfile", "-NonInteractive", "-Command", command)
	} else {
		cmd = exec.CommandContext(cmdCtx, "sh", "-c", command)
	}
	cmd.Dir = cwd

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\nSTDERR:\n" + stderr.String()
	}

	if err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return ErrorResult(fmt.Sprintf("Command timed out after %v", t.timeout))
		}
		output += fmt.Sprintf("\nExit code: %v", err)
	}

	if output == "" {
		output = "(no output)"
	}

	const maxLen = 10000
	if len(output) > maxLen {
		output = output[:maxLen] + fmt.Sprintf("\n... (truncated, %d more chars)", len(output)-maxLen)
	}

	if err != nil {
		return ErrorResult(output)
	}
	return NewToolResult(output)
}

package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/Iron-Ham/lfslocker/internal/logging"
)

// DefaultTitle is the notification title used by the desktop sink.
const DefaultTitle = "Git LFS Auto-Locker"

// Starter launches a command without waiting for it.
type Starter func(name string, args ...string) error

func startCommand(name string, args ...string) error {
	_, err := startReaped(exec.Command(name, args...))
	return err
}

// startReaped starts cmd and waits for it in the background so the child
// is reaped. The returned channel yields the exit result.
func startReaped(cmd *exec.Cmd) (<-chan error, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	return done, nil
}

// Desktop shows native desktop notifications: notify-send on Linux and
// the BSDs, osascript on macOS, a PowerShell balloon tip on Windows.
type Desktop struct {
	title  string
	goos   string
	start  Starter
	logger *logging.Logger
}

// DesktopOption configures a Desktop sink.
type DesktopOption func(*Desktop)

// WithTitle overrides the notification title.
func WithTitle(title string) DesktopOption {
	return func(d *Desktop) {
		d.title = title
	}
}

// WithStarter replaces the command launcher.
func WithStarter(start Starter) DesktopOption {
	return func(d *Desktop) {
		d.start = start
	}
}

// WithOS overrides the target platform.
func WithOS(goos string) DesktopOption {
	return func(d *Desktop) {
		d.goos = goos
	}
}

// WithDesktopLogger sets the logger used to report delivery failures.
func WithDesktopLogger(logger *logging.Logger) DesktopOption {
	return func(d *Desktop) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDesktop creates a desktop sink for the running platform.
func NewDesktop(opts ...DesktopOption) *Desktop {
	d := &Desktop{
		title:  DefaultTitle,
		goos:   runtime.GOOS,
		start:  startCommand,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Desktop) Info(message string)    { d.show(LevelInfo, message) }
func (d *Desktop) Warning(message string) { d.show(LevelWarning, message) }
func (d *Desktop) Error(message string)   { d.show(LevelError, message) }

func (d *Desktop) show(level Level, message string) {
	name, args := d.command(level, message)
	if name == "" {
		d.logger.Debug("desktop notifications unsupported", "os", d.goos, "message", message)
		return
	}
	if err := d.start(name, args...); err != nil {
		d.logger.Debug("desktop notification failed", "command", name, "error", err)
	}
}

// command builds the platform command for one notification.
func (d *Desktop) command(level Level, message string) (string, []string) {
	switch d.goos {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", appleScriptString(message), appleScriptString(d.title))
		if level != LevelInfo {
			script += ` sound name "Basso"`
		}
		return "osascript", []string{"-e", script}
	case "windows":
		icon := map[Level]string{LevelInfo: "Info", LevelWarning: "Warning", LevelError: "Error"}[level]
		script := strings.Join([]string{
			"Add-Type -AssemblyName System.Windows.Forms",
			"$n = New-Object System.Windows.Forms.NotifyIcon",
			"$n.Icon = [System.Drawing.SystemIcons]::Information",
			"$n.Visible = $true",
			fmt.Sprintf("$n.ShowBalloonTip(10000, %s, %s, [System.Windows.Forms.ToolTipIcon]::%s)",
				powerShellString(d.title), powerShellString(message), icon),
			"Start-Sleep -Seconds 10",
			"$n.Dispose()",
		}, "; ")
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-WindowStyle", "Hidden", "-Command", script}
	case "linux", "freebsd", "openbsd", "netbsd":
		urgency := map[Level]string{LevelInfo: "low", LevelWarning: "normal", LevelError: "critical"}[level]
		return "notify-send", []string{"--app-name=lfslocker", "--urgency=" + urgency, d.title, message}
	default:
		return "", nil
	}
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func powerShellString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

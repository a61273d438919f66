package winutil

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/types"
)

// Shortcut describes one .lnk file
type Shortcut struct {
	Path        string
	Target      string
	Arguments   string
	WorkingDir  string
	Icon        string
	Description string
}

// ShortcutWriter creates .lnk files
type ShortcutWriter interface {
	Create(s Shortcut) error
}

// PowerShellShortcuts writes shortcuts through the WScript.Shell COM
// object driven by a PowerShell one-off script
type PowerShellShortcuts struct {
	Runner types.Runner
}

// NewShortcutWriter returns the PowerShell-backed writer
func NewShortcutWriter(runner types.Runner) ShortcutWriter {
	return &PowerShellShortcuts{Runner: runner}
}

// Create implements ShortcutWriter
func (p *PowerShellShortcuts) Create(s Shortcut) error {
	script := ShortcutScript(s)
	if _, err := p.Runner.Run("powershell", "-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", script); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create shortcut %s", s.Path).
			WithDetail("path", s.Path)
	}
	return nil
}

// ShortcutScript renders the PowerShell that saves s
func ShortcutScript(s Shortcut) string {
	var b strings.Builder
	b.WriteString("$WshShell = New-Object -ComObject WScript.Shell\n")
	fmt.Fprintf(&b, "$Shortcut = $WshShell.CreateShortcut(%s)\n", psQuote(s.Path))
	fmt.Fprintf(&b, "$Shortcut.TargetPath = %s\n", psQuote(s.Target))
	if s.Arguments != "" {
		fmt.Fprintf(&b, "$Shortcut.Arguments = %s\n", psQuote(s.Arguments))
	}
	if s.WorkingDir != "" {
		fmt.Fprintf(&b, "$Shortcut.WorkingDirectory = %s\n", psQuote(s.WorkingDir))
	}
	if s.Icon != "" {
		fmt.Fprintf(&b, "$Shortcut.IconLocation = %s\n", psQuote(s.Icon))
	}
	if s.Description != "" {
		fmt.Fprintf(&b, "$Shortcut.Description = %s\n", psQuote(s.Description))
	}
	b.WriteString("$Shortcut.Save()")
	return b.String()
}

// psQuote makes a single-quoted PowerShell literal
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

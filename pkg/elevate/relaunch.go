package elevate

import (
	"strings"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/filesystem"
	"github.com/arthur-debert/menuinst/pkg/logging"
	"github.com/arthur-debert/menuinst/pkg/types"
)

// PowerShellRelauncher asks for elevation through Start-Process -Verb RunAs.
// A declined UAC prompt makes Start-Process throw, which surfaces as a
// non-zero exit code.
type PowerShellRelauncher struct {
	Runner types.Runner
}

// NewRelauncher returns the PowerShell-backed relauncher
func NewRelauncher(runner types.Runner) Relauncher {
	return &PowerShellRelauncher{Runner: runner}
}

// Relaunch implements Relauncher
func (p *PowerShellRelauncher) Relaunch(exe string, args []string) (int, error) {
	script := RelaunchScript(exe, args)
	psArgs := []string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", script}
	logging.LogCommand("powershell", psArgs)

	_, err := p.Runner.Run("powershell", psArgs...)
	if err == nil {
		return 0, nil
	}
	code := filesystem.ExitCode(err)
	if code < 0 {
		return code, errors.Wrap(err, errors.ErrElevation, "cannot start the elevation request")
	}
	return code, nil
}

// RelaunchScript is the PowerShell that starts exe elevated, waits for
// it and exits with its status
func RelaunchScript(exe string, args []string) string {
	var b strings.Builder
	b.WriteString("$p = Start-Process -FilePath ")
	b.WriteString(psQuote(exe))
	if len(args) > 0 {
		quoted := make([]string, len(args))
		for i, a := range args {
			quoted[i] = psQuote(psArgument(a))
		}
		b.WriteString(" -ArgumentList ")
		b.WriteString(strings.Join(quoted, ","))
	}
	b.WriteString(" -Verb RunAs -Wait -PassThru; exit $p.ExitCode")
	return b.String()
}

// psArgument protects spaces for the child's command line parser
func psArgument(a string) string {
	if strings.ContainsAny(a, " \t") {
		return `"` + a + `"`
	}
	return a
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

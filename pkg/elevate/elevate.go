// Package elevate decides whether a system-wide Windows install can run
// in the current process, has to be handed to an elevated copy of the
// program, or falls back to a per-user install.
//
// The decision is a small state machine:
//
//	user requested            -> proceed as user
//	sentinel in base prefix   -> proceed as user
//	caller is administrator   -> proceed as requested
//	already the elevated child -> proceed as user
//	elevation disabled        -> proceed as user
//	relaunch exits 0          -> delegated, nothing left to do here
//	relaunch fails            -> proceed as user
//
// The elevated child is told apart by ChildFlag on its command line, so
// a child that still lacks rights can never relaunch again.
package elevate

import (
	"path/filepath"

	"github.com/arthur-debert/menuinst/pkg/config"
	"github.com/arthur-debert/menuinst/pkg/filesystem"
	"github.com/arthur-debert/menuinst/pkg/logging"
	"github.com/arthur-debert/menuinst/pkg/types"
	"github.com/rs/zerolog"
)

// ChildFlag is appended to the relaunched command line
const ChildFlag = "--elevated-child"

// Decision is the outcome of Controller.Decide
type Decision int

const (
	// Proceed means the caller performs the operation itself at Outcome.Mode
	Proceed Decision = iota
	// Delegated means an elevated child already performed the operation
	Delegated
)

func (d Decision) String() string {
	if d == Delegated {
		return "delegated"
	}
	return "proceed"
}

// Outcome is a Decision plus the mode to run in and why
type Outcome struct {
	Decision Decision
	Mode     types.Mode
	Reason   string
}

// Prober reports whether the current process has administrator rights
type Prober interface {
	IsAdmin() (bool, error)
}

// Relauncher runs exe with args elevated and returns its exit code once it ends
type Relauncher interface {
	Relaunch(exe string, args []string) (int, error)
}

// Controller holds what the decision depends on
type Controller struct {
	FS         types.FS
	Prober     Prober
	Relauncher Relauncher

	// Sentinel is the file name in the base prefix marking a user-only installation
	Sentinel string
	// Enabled allows relaunching; when false a non-admin system request falls back to user
	Enabled bool
	// IsChild is true inside the relaunched process
	IsChild bool

	// Executable and Args are the command line to relaunch, without ChildFlag
	Executable string
	Args       []string

	logger zerolog.Logger
}

// New builds a controller for the running process from configuration
func New(cfg *config.Config, fs types.FS, runner types.Runner, exe string, args []string, isChild bool) *Controller {
	return &Controller{
		FS:         fs,
		Prober:     NewProber(),
		Relauncher: NewRelauncher(runner),
		Sentinel:   cfg.Windows.NonadminSentinel,
		Enabled:    cfg.Windows.Elevate,
		IsChild:    isChild,
		Executable: exe,
		Args:       args,
		logger:     logging.GetLogger("elevate"),
	}
}

// Decide resolves the mode for an operation requested at mode on the
// environment rooted at basePrefix. It never fails: every problem ends
// in a user-mode fallback with a warning.
func (c *Controller) Decide(requested types.Mode, basePrefix string) Outcome {
	logger := c.logger.With().Str("requested", string(requested)).Str("base_prefix", basePrefix).Logger()

	if requested != types.ModeSystem {
		return Outcome{Decision: Proceed, Mode: types.ModeUser, Reason: "user mode requested"}
	}

	if c.Sentinel != "" && c.FS != nil && filesystem.Exists(c.FS, filepath.Join(basePrefix, c.Sentinel)) {
		logger.Info().Str("sentinel", c.Sentinel).Msg("Base environment is user-only, installing for the current user")
		return Outcome{Decision: Proceed, Mode: types.ModeUser, Reason: "non-admin installation"}
	}

	admin, err := c.Prober.IsAdmin()
	if err != nil {
		logger.Warn().Err(err).Msg("Could not determine privileges, assuming none")
	}
	if admin {
		return Outcome{Decision: Proceed, Mode: types.ModeSystem, Reason: "administrator"}
	}

	if c.IsChild {
		logger.Warn().Msg("Elevated process still lacks administrator rights, falling back to user mode")
		return Outcome{Decision: Proceed, Mode: types.ModeUser, Reason: "elevation ineffective"}
	}
	if !c.Enabled {
		logger.Warn().Msg("Elevation disabled, falling back to user mode")
		return Outcome{Decision: Proceed, Mode: types.ModeUser, Reason: "elevation disabled"}
	}

	args := append(append([]string{}, c.Args...), ChildFlag)
	logger.Info().Str("exe", c.Executable).Strs("args", args).Msg("Relaunching with administrator rights")
	code, err := c.Relauncher.Relaunch(c.Executable, args)
	if err == nil && code == 0 {
		return Outcome{Decision: Delegated, Mode: types.ModeSystem, Reason: "elevated child succeeded"}
	}

	logger.Warn().Err(err).Int("exit_code", code).Msg("Could not install with administrator rights, falling back to user mode")
	return Outcome{Decision: Proceed, Mode: types.ModeUser, Reason: "elevation failed"}
}

package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigFile points at an explicit configuration file
	EnvConfigFile = "MENUINST_CONFIG"

	// EnvStateDir overrides the directory holding the log file
	EnvStateDir = "MENUINST_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name for menuinst-specific files
	AppDirName = "menuinst"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "menuinst.log"
)

// Paths provides centralized path management for menuinst
type Paths interface {
	HomeDir() string
	DataHome() string
	ConfigHome() string
	StateDir() string
	LogFilePath() string
	ConfigFilePath() string
}

type paths struct {
	home       string
	dataHome   string
	configHome string
	stateDir   string
}

// New snapshots the XDG environment. The xdg package caches its values
// at init, so they are reloaded here to pick up changes made since.
func New() Paths {
	xdg.Reload()

	p := &paths{
		home:       xdg.Home,
		dataHome:   xdg.DataHome,
		configHome: xdg.ConfigHome,
	}

	if stateDir := os.Getenv(EnvStateDir); stateDir != "" {
		p.stateDir = ExpandHome(stateDir)
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}

	return p
}

// HomeDir returns the user's home directory
func (p *paths) HomeDir() string {
	return p.home
}

// DataHome returns $XDG_DATA_HOME (default ~/.local/share)
func (p *paths) DataHome() string {
	return p.dataHome
}

// ConfigHome returns $XDG_CONFIG_HOME (default ~/.config)
func (p *paths) ConfigHome() string {
	return p.configHome
}

// StateDir returns the menuinst state directory
func (p *paths) StateDir() string {
	return p.stateDir
}

// LogFilePath returns the path of the menuinst log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// ConfigFilePath returns the user configuration file, honoring MENUINST_CONFIG
func (p *paths) ConfigFilePath() string {
	if explicit := os.Getenv(EnvConfigFile); explicit != "" {
		return ExpandHome(explicit)
	}
	return filepath.Join(p.configHome, AppDirName, ConfigFileName)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

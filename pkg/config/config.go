package config

import (
	"github.com/arthur-debert/menuinst/pkg/types"
)

// Config is the effective menuinst configuration
type Config struct {
	Install    Install    `koanf:"install" toml:"install"`
	Activation Activation `koanf:"activation" toml:"activation"`
	Linux      Linux      `koanf:"linux" toml:"linux"`
	OSX        OSX        `koanf:"osx" toml:"osx"`
	Windows    Windows    `koanf:"windows" toml:"windows"`
	Output     Output     `koanf:"output" toml:"output"`
}

type Install struct {
	Mode types.Mode `koanf:"mode" toml:"mode"`
}

type Activation struct {
	CondaExe string `koanf:"conda_exe" toml:"conda_exe"`
}

type Linux struct {
	RefreshCaches   bool   `koanf:"refresh_caches" toml:"refresh_caches"`
	SystemConfigDir string `koanf:"system_config_dir" toml:"system_config_dir"`
	SystemDataDir   string `koanf:"system_data_dir" toml:"system_data_dir"`
}

type OSX struct {
	UserRoot               string `koanf:"user_root" toml:"user_root"`
	SystemRoot             string `koanf:"system_root" toml:"system_root"`
	RegisterLaunchServices bool   `koanf:"register_launch_services" toml:"register_launch_services"`
}

type Windows struct {
	Elevate          bool   `koanf:"elevate" toml:"elevate"`
	NonadminSentinel string `koanf:"nonadmin_sentinel" toml:"nonadmin_sentinel"`
}

type Output struct {
	Format string `koanf:"format" toml:"format"`
}

package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/paths"
	"github.com/arthur-debert/menuinst/pkg/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every configuration environment variable
const EnvPrefix = "MENUINST_"

//go:embed embedded/defaults.toml
var defaultConfig []byte

var sections = map[string]bool{
	"install":    true,
	"activation": true,
	"linux":      true,
	"osx":        true,
	"windows":    true,
	"output":     true,
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Load builds the effective configuration from the embedded defaults,
// the user config file and MENUINST_* environment variables.
func Load() (*Config, error) {
	return LoadFrom(paths.New().ConfigFilePath(), nil)
}

// LoadFrom is Load with an explicit config file path and optional
// overrides applied last (dotted keys, e.g. "install.mode").
func LoadFrom(configPath string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config file, if present
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", configPath).
					WithDetail("path", configPath)
			}
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Explicit overrides (command-line flags)
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := postProcess(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the embedded defaults and MENUINST_* environment, without a config file
func Default() *Config {
	cfg, err := LoadFrom("", nil)
	if err != nil {
		// The embedded file is part of the binary
		panic(err)
	}
	return cfg
}

// envKey maps MENUINST_ACTIVATION_CONDA_EXE to activation.conda_exe.
// Variables that do not name a known section are ignored.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok || !sections[section] {
		return ""
	}
	return section + "." + rest
}

func postProcess(cfg *Config) error {
	mode, err := types.ParseMode(string(cfg.Install.Mode))
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "invalid install.mode")
	}
	cfg.Install.Mode = mode

	cfg.Activation.CondaExe = paths.ExpandHome(cfg.Activation.CondaExe)
	cfg.OSX.UserRoot = paths.ExpandHome(cfg.OSX.UserRoot)

	if cfg.Windows.NonadminSentinel == "" {
		cfg.Windows.NonadminSentinel = ".nonadmin"
	}
	return nil
}

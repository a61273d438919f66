// Package config loads the menuinst configuration.
//
// Configuration is layered with koanf, later layers winning:
//
//  1. defaults.toml embedded in the binary
//  2. the user file ($XDG_CONFIG_HOME/menuinst/config.toml or $MENUINST_CONFIG)
//  3. MENUINST_<SECTION>_<KEY> environment variables
//  4. explicit overrides from command-line flags
//
// The result is decoded into Config with mapstructure.
package config

package menuinst

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Create and remove menu shortcuts for conda environments"
	MsgInstallShort    = "Install the menu and items of a JSON document"
	MsgRemoveShort     = "Remove the menu and items of a JSON document"
	MsgInstallAllShort = "Install every menu document of an environment"
	MsgRemoveAllShort  = "Remove every menu document of an environment"
	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig       = "Configuration file (default $XDG_CONFIG_HOME/menuinst/config.toml)"
	MsgFlagFormat       = "Output format: auto, term, text, json or yaml"
	MsgFlagPrefix       = "Environment prefix the menu belongs to (default $CONDA_PREFIX)"
	MsgFlagBasePrefix   = "Base installation prefix (default: the environment prefix)"
	MsgFlagMode         = "Install scope: user or system (default from configuration)"
	MsgFlagPlatform     = "Target platform: linux, osx or win (default: the running OS)"
	MsgFlagMatch        = "Only process documents whose file name matches this pattern"
	MsgFlagDefaults     = "Print the commented default configuration instead"
	MsgFlagElevated     = "Internal: set on the elevated re-invocation"
	MsgVersionFormat    = "menuinst version %s\n  commit: %s\n  built:  %s\n"
	MsgErrNoPrefix      = "no prefix given: use --prefix or activate an environment"
	MsgErrNoCommand     = "no command specified"
	MsgDebugElevatedRun = "Running as elevated child"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/install-example.txt
	msgInstallExampleRaw string
	MsgInstallExample    = strings.TrimRight(msgInstallExampleRaw, "\n")

	//go:embed msgs/remove-long.txt
	msgRemoveLongRaw string
	MsgRemoveLong    = strings.TrimSpace(msgRemoveLongRaw)

	//go:embed msgs/remove-example.txt
	msgRemoveExampleRaw string
	MsgRemoveExample    = strings.TrimRight(msgRemoveExampleRaw, "\n")

	//go:embed msgs/install-all-long.txt
	msgInstallAllLongRaw string
	MsgInstallAllLong    = strings.TrimSpace(msgInstallAllLongRaw)

	//go:embed msgs/remove-all-long.txt
	msgRemoveAllLongRaw string
	MsgRemoveAllLong    = strings.TrimSpace(msgRemoveAllLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)

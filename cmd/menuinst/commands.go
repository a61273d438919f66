package menuinst

import (
	"fmt"
	"os"

	"github.com/arthur-debert/menuinst/internal/version"
	"github.com/arthur-debert/menuinst/pkg/config"
	"github.com/arthur-debert/menuinst/pkg/core"
	"github.com/arthur-debert/menuinst/pkg/elevate"
	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/logging"
	"github.com/arthur-debert/menuinst/pkg/paths"
	"github.com/arthur-debert/menuinst/pkg/platforms"
	"github.com/arthur-debert/menuinst/pkg/types"
	"github.com/arthur-debert/menuinst/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// osArgs returns the arguments an elevated child is relaunched with
var osArgs = func() []string { return os.Args[1:] }

// options hold the parsed flags of one invocation
type options struct {
	verbosity  int
	configPath string
	format     string

	prefix        string
	basePrefix    string
	mode          string
	platform      string
	match         string
	elevatedChild bool
	defaults      bool

	// resolved is the output format errors are rendered with
	resolved ui.Format
}

// Execute runs the root command and renders any error. It returns the
// process exit code.
func Execute() int {
	o := &options{}
	rootCmd := newRootCmd(o)
	if err := rootCmd.Execute(); err != nil {
		renderer, rerr := ui.NewRenderer(o.resolved, rootCmd.ErrOrStderr())
		if rerr != nil {
			fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
			return 1
		}
		_ = renderer.RenderError(err)
		return 1
	}
	return 0
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(o *options) *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	rootCmd := &cobra.Command{
		Use:     "menuinst",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(o.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")

			format, err := ui.ParseFormat(o.format)
			if err != nil {
				return err
			}
			o.resolved = format
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&o.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&o.configPath, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&o.format, "format", "", MsgFlagFormat)
	_ = rootCmd.RegisterFlagCompletionFunc("format", fixedCompletion("auto", "term", "text", "json", "yaml"))

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetHelpCommandGroupID("misc")
	rootCmd.SetCompletionCommandGroupID("misc")

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newInstallCmd(o))
	rootCmd.AddCommand(newRemoveCmd(o))
	rootCmd.AddCommand(newInstallAllCmd(o))
	rootCmd.AddCommand(newRemoveAllCmd(o))
	rootCmd.AddCommand(newConfigCmd(o))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newInstallCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install <document.json>",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runOne(cmd, core.Install, args[0])
		},
	}
	o.addOperationFlags(cmd)
	return cmd
}

func newRemoveCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <document.json>",
		Short:   MsgRemoveShort,
		Long:    MsgRemoveLong,
		Example: MsgRemoveExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runOne(cmd, core.Remove, args[0])
		},
	}
	o.addOperationFlags(cmd)
	return cmd
}

func newInstallAllCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install-all",
		Short:   MsgInstallAllShort,
		Long:    MsgInstallAllLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runAll(cmd, core.InstallAll)
		},
	}
	o.addOperationFlags(cmd)
	cmd.Flags().StringVar(&o.match, "match", "", MsgFlagMatch)
	return cmd
}

func newRemoveAllCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove-all",
		Short:   MsgRemoveAllShort,
		Long:    MsgRemoveAllLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runAll(cmd, core.RemoveAll)
		},
	}
	o.addOperationFlags(cmd)
	cmd.Flags().StringVar(&o.match, "match", "", MsgFlagMatch)
	return cmd
}

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.defaults {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GenerateConfigContent())
				return err
			}

			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			content, err := config.ToTOML(cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		},
	}
	cmd.Flags().BoolVar(&o.defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}
}

func (o *options) addOperationFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.prefix, "prefix", "", MsgFlagPrefix)
	cmd.Flags().StringVar(&o.basePrefix, "base-prefix", "", MsgFlagBasePrefix)
	cmd.Flags().StringVar(&o.mode, "mode", "", MsgFlagMode)
	cmd.Flags().StringVar(&o.platform, "platform", "", MsgFlagPlatform)
	cmd.Flags().BoolVar(&o.elevatedChild, elevatedFlagName, false, MsgFlagElevated)
	_ = cmd.Flags().MarkHidden(elevatedFlagName)

	_ = cmd.MarkFlagDirname("prefix")
	_ = cmd.MarkFlagDirname("base-prefix")
	_ = cmd.RegisterFlagCompletionFunc("mode", fixedCompletion(string(types.ModeUser), string(types.ModeSystem)))
	platformNames := make([]string, 0, len(types.AllPlatforms()))
	for _, p := range types.AllPlatforms() {
		platformNames = append(platformNames, string(p))
	}
	_ = cmd.RegisterFlagCompletionFunc("platform", fixedCompletion(platformNames...))
}

func (o *options) runOne(cmd *cobra.Command, op func(core.Options) (*core.Result, error), document string) error {
	opts, renderer, err := o.prepare(cmd)
	if err != nil {
		return err
	}
	opts.Document = document

	result, err := op(opts)
	if err != nil {
		return err
	}
	return renderer.RenderResult(result)
}

func (o *options) runAll(cmd *cobra.Command, op func(core.BatchOptions) ([]*core.Result, error)) error {
	opts, renderer, err := o.prepare(cmd)
	if err != nil {
		return err
	}

	results, opErr := op(core.BatchOptions{Options: opts, Match: o.match})
	if err := renderer.RenderResult(results); err != nil {
		return err
	}
	return opErr
}

// prepare turns the flags into core options and picks the renderer
func (o *options) prepare(cmd *cobra.Command) (core.Options, ui.Renderer, error) {
	logger := logging.GetLogger("cmd")

	cfg, err := o.loadConfig()
	if err != nil {
		return core.Options{}, nil, err
	}

	format, err := ui.ParseFormat(cfg.Output.Format)
	if err != nil {
		return core.Options{}, nil, err
	}
	o.resolved = format
	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout())
	if err != nil {
		return core.Options{}, nil, err
	}

	prefix := o.prefix
	if prefix == "" {
		prefix = os.Getenv("CONDA_PREFIX")
	}
	if prefix == "" {
		return core.Options{}, nil, errors.New(errors.ErrInvalidInput, MsgErrNoPrefix)
	}

	var platform types.Platform
	if o.platform != "" {
		if platform, err = types.ParsePlatform(o.platform); err != nil {
			return core.Options{}, nil, err
		}
	}

	deps := platforms.DefaultDeps(cfg)

	exe, err := os.Executable()
	if err != nil {
		logger.Warn().Err(err).Msg("Cannot locate own executable, elevation will fall back to user mode")
	}
	if o.elevatedChild {
		logger.Debug().Msg(MsgDebugElevatedRun)
	}
	elevator := elevate.New(cfg, deps.FS, deps.Runner, exe, childArgs(osArgs()), o.elevatedChild)

	return core.Options{
		Prefix:     prefix,
		BasePrefix: o.basePrefix,
		Mode:       cfg.Install.Mode,
		Platform:   platform,
		Deps:       deps,
		Elevator:   elevator,
	}, renderer, nil
}

// loadConfig layers the flag values over the configuration files
func (o *options) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = paths.New().ConfigFilePath()
	} else if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", path).
			WithDetail("path", path)
	}

	overrides := map[string]interface{}{}
	if o.mode != "" {
		overrides["install.mode"] = o.mode
	}
	if o.format != "" {
		overrides["output.format"] = o.format
	}
	return config.LoadFrom(path, overrides)
}

const elevatedFlagName = "elevated-child"

// childArgs drops a previous elevation marker so it is not repeated
func childArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == elevate.ChildFlag {
			continue
		}
		out = append(out, arg)
	}
	return out
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

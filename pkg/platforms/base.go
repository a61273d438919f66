package platforms

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/logging"
	"github.com/arthur-debert/menuinst/pkg/render"
	"github.com/arthur-debert/menuinst/pkg/schema"
	"github.com/arthur-debert/menuinst/pkg/types"
	"github.com/rs/zerolog"
)

var osGetenv = os.Getenv

// fileUnsafe matches what Windows and macOS refuse in a file name
var fileUnsafe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// baseMenu holds what every platform's menu shares: the environment
// it belongs to and the placeholder context, fixed at construction
type baseMenu struct {
	deps       Deps
	rawName    string
	name       string
	prefix     string
	basePrefix string
	mode       types.Mode
	renderer   *render.Renderer
	logger     zerolog.Logger

	condaExe   string
	micromamba *bool
}

func newBaseMenu(deps Deps, component, name string, opts MenuOptions) (*baseMenu, error) {
	if name == "" {
		return nil, errors.New(errors.ErrInvalidInput, "menu name must not be empty")
	}
	if opts.Prefix == "" {
		return nil, errors.New(errors.ErrInvalidInput, "prefix must not be empty")
	}
	if opts.BasePrefix == "" {
		opts.BasePrefix = opts.Prefix
	}
	if opts.Mode == "" {
		opts.Mode = deps.Config.Install.Mode
	}

	return &baseMenu{
		deps:       deps,
		rawName:    name,
		prefix:     cleanPath(opts.Prefix),
		basePrefix: cleanPath(opts.BasePrefix),
		mode:       opts.Mode,
		logger:     logging.GetLogger(component),
	}, nil
}

// finish installs the renderer and renders the menu name
func (b *baseMenu) finish(placeholders map[string]string, post func(string) string) {
	b.renderer = render.New(placeholders)
	if post != nil {
		b.renderer = b.renderer.WithPostProcess(post)
	}
	b.name = b.renderer.Render(b.rawName)
	b.logger = b.logger.With().Str("menu", b.name).Str("mode", string(b.mode)).Logger()
}

func (b *baseMenu) Name() string               { return b.name }
func (b *baseMenu) Mode() types.Mode           { return b.mode }
func (b *baseMenu) Prefix() string             { return b.prefix }
func (b *baseMenu) BasePrefix() string         { return b.basePrefix }
func (b *baseMenu) Renderer() *render.Renderer { return b.renderer }

func (b *baseMenu) isBase() bool {
	return b.prefix == b.basePrefix
}

func (b *baseMenu) slug() string {
	return render.Slugify(b.name)
}

// commonPlaceholders are shared by every platform
func (b *baseMenu) commonPlaceholders() map[string]string {
	envName := baseName(b.prefix)
	if b.isBase() {
		envName = "base"
	}
	return map[string]string{
		"PREFIX":            b.prefix,
		"BASE_PREFIX":       b.basePrefix,
		"ENV_NAME":          envName,
		"DISTRIBUTION_NAME": baseName(b.basePrefix),
		"HOME":              b.deps.Paths.HomeDir(),
	}
}

// posixPlaceholders add the bin/ layout used on Linux and macOS
func (b *baseMenu) posixPlaceholders() map[string]string {
	p := b.commonPlaceholders()
	p["PYTHON"] = filepath.Join(b.prefix, "bin", "python")
	p["BASE_PYTHON"] = filepath.Join(b.basePrefix, "bin", "python")
	p["MENU_DIR"] = filepath.Join(b.prefix, "Menu")
	p["BIN_DIR"] = filepath.Join(b.prefix, "bin")
	p["ICON_EXT"] = "png"
	if spDir, pyVer := b.detectSitePackages(); spDir != "" {
		p["SP_DIR"] = spDir
		p["PY_VER"] = pyVer
	}
	return p
}

// detectSitePackages finds <prefix>/lib/pythonX.Y/site-packages
func (b *baseMenu) detectSitePackages() (string, string) {
	lib := filepath.Join(b.prefix, "lib")
	entries, err := b.deps.FS.ReadDir(lib)
	if err != nil {
		return "", ""
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "python") {
			continue
		}
		spDir := filepath.Join(lib, entry.Name(), "site-packages")
		if _, err := b.deps.FS.Stat(spDir); err == nil {
			return spDir, strings.TrimPrefix(entry.Name(), "python")
		}
	}
	return "", ""
}

// itemName renders the variant of the item name for this environment
func (b *baseMenu) itemName(md *schema.Metadata) string {
	return b.renderer.Render(md.Name.Resolve(b.isBase()))
}

// runPrecreate executes the item's precreate snippet through shell
func (b *baseMenu) runPrecreate(md *schema.Metadata, shell ...string) error {
	if md.Precreate == "" {
		return nil
	}
	script := b.renderer.Render(md.Precreate)
	b.logger.Debug().Str("precreate", script).Msg("Running precreate")

	args := append(append([]string{}, shell[1:]...), script)
	if out, err := b.deps.Runner.Run(shell[0], args...); err != nil {
		return errors.Wrap(err, errors.ErrCommandFailed, "precreate failed").
			WithDetail("script", script).
			WithDetail("output", string(out))
	}
	return nil
}

// removeFile deletes path; a missing file is not an error
func removeFile(fsys types.FS, path string) error {
	if err := fsys.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrRemove, "cannot remove %s", path).WithDetail("path", path)
	}
	return nil
}

func mkdirAll(fsys types.FS, path string) error {
	if err := fsys.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %s", path).WithDetail("path", path)
	}
	return nil
}

func writeFile(fsys types.FS, path string, data []byte, perm os.FileMode) error {
	if err := fsys.WriteFile(path, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path).WithDetail("path", path)
	}
	return nil
}

// cleanPath trims trailing separators of either kind
func cleanPath(p string) string {
	trimmed := strings.TrimRight(p, `/\`)
	if trimmed == "" {
		return p[:1]
	}
	return trimmed
}

// fileName turns a display name into a single path element. Trailing
// dots and spaces are dropped as Windows ignores them.
func fileName(name string) string {
	name = strings.TrimRight(fileUnsafe.ReplaceAllString(name, ""), ". ")
	if name == "" {
		return "_"
	}
	return name
}

// baseName is filepath.Base for both separator styles
func baseName(p string) string {
	p = strings.TrimRight(p, `/\`)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

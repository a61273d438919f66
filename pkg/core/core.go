package core

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/config"
	"github.com/arthur-debert/menuinst/pkg/elevate"
	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/filesystem"
	"github.com/arthur-debert/menuinst/pkg/logging"
	"github.com/arthur-debert/menuinst/pkg/platforms"
	"github.com/arthur-debert/menuinst/pkg/schema"
	"github.com/arthur-debert/menuinst/pkg/types"
)

// Operation names what a Result did
type Operation string

const (
	OperationInstall Operation = "install"
	OperationRemove  Operation = "remove"
)

// Elevator decides the effective mode of a Windows operation
type Elevator interface {
	Decide(requested types.Mode, basePrefix string) elevate.Outcome
}

// Options describe one operation on one document
type Options struct {
	// Document is the path of the JSON menu description
	Document string
	// Data is the document content; when set, Document is only a label
	Data []byte

	Prefix     string
	BasePrefix string
	// Mode is the requested mode; empty means the configured default
	Mode types.Mode
	// Platform defaults to the running OS
	Platform types.Platform

	Deps platforms.Deps
	// Elevator is consulted for Windows operations; nil means no elevation
	Elevator Elevator
}

// Result reports what one operation touched
type Result struct {
	Operation Operation      `json:"operation" yaml:"operation"`
	Document  string         `json:"document,omitempty" yaml:"document,omitempty"`
	MenuName  string         `json:"menu_name" yaml:"menu_name"`
	Platform  types.Platform `json:"platform" yaml:"platform"`
	Mode      types.Mode     `json:"mode" yaml:"mode"`
	Paths     []string       `json:"paths" yaml:"paths"`
	// Skipped lists items not enabled for the platform
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	// Delegated is true when an elevated child did the work
	Delegated bool `json:"delegated,omitempty" yaml:"delegated,omitempty"`
}

// Install creates the menu and every enabled item of a document
func Install(opts Options) (*Result, error) {
	return run(OperationInstall, opts)
}

// Remove deletes every enabled item of a document, then its menu
func Remove(opts Options) (*Result, error) {
	return run(OperationRemove, opts)
}

func run(op Operation, opts Options) (*Result, error) {
	logger := logging.GetLogger("core." + string(op))
	done := logging.LogOperationStart(logger, string(op))
	defer done()

	opts, err := normalize(opts)
	if err != nil {
		return nil, err
	}
	doc, err := loadDocument(opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Operation: op,
		Document:  opts.Document,
		MenuName:  doc.MenuName,
		Platform:  opts.Platform,
		Mode:      opts.Mode,
		Paths:     []string{},
	}

	if opts.Platform == types.PlatformWindows && opts.Elevator != nil {
		outcome := opts.Elevator.Decide(opts.Mode, opts.BasePrefix)
		logger.Debug().Str("decision", outcome.Decision.String()).Str("mode", string(outcome.Mode)).Str("reason", outcome.Reason).Msg("Elevation decided")
		result.Mode = outcome.Mode
		if outcome.Decision == elevate.Delegated {
			result.Delegated = true
			return result, nil
		}
	}

	plat, err := platforms.For(opts.Platform, opts.Deps)
	if err != nil {
		return nil, err
	}
	menu, err := plat.NewMenu(doc.MenuName, platforms.MenuOptions{
		Prefix:     opts.Prefix,
		BasePrefix: opts.BasePrefix,
		Mode:       result.Mode,
	})
	if err != nil {
		return nil, err
	}
	result.MenuName = menu.Name()

	items, skipped, err := buildItems(plat, menu, doc, opts.Platform)
	if err != nil {
		return nil, err
	}
	result.Skipped = skipped

	logger.Info().
		Str("menu", menu.Name()).
		Str("platform", string(opts.Platform)).
		Str("mode", string(result.Mode)).
		Int("items", len(items)).
		Msg("Processing menu document")

	switch op {
	case OperationInstall:
		paths, err := menu.Create()
		if err != nil {
			return nil, err
		}
		result.Paths = append(result.Paths, paths...)
		for _, item := range items {
			paths, err := item.Create()
			if err != nil {
				return nil, errors.Wrapf(err, errors.GetErrorCode(err), "cannot install %q", item.Name()).
					WithDetail("item", item.Name())
			}
			result.Paths = append(result.Paths, paths...)
		}

	case OperationRemove:
		for _, item := range items {
			paths, err := item.Remove()
			if err != nil {
				return nil, errors.Wrapf(err, errors.GetErrorCode(err), "cannot remove %q", item.Name()).
					WithDetail("item", item.Name())
			}
			result.Paths = append(result.Paths, paths...)
		}
		paths, err := menu.Remove()
		if err != nil {
			return nil, err
		}
		result.Paths = append(result.Paths, paths...)
	}

	return result, nil
}

// normalize fills defaults and checks the options
func normalize(opts Options) (Options, error) {
	if opts.Prefix == "" {
		return opts, errors.New(errors.ErrInvalidInput, "a target prefix is required")
	}
	if opts.BasePrefix == "" {
		opts.BasePrefix = opts.Prefix
	}
	if opts.Platform == "" {
		opts.Platform = types.CurrentPlatform()
	}
	if opts.Deps.Config == nil {
		opts.Deps.Config = config.Default()
	}
	if opts.Deps.FS == nil {
		opts.Deps.FS = filesystem.NewOS()
	}
	if opts.Mode == "" {
		opts.Mode = opts.Deps.Config.Install.Mode
	}
	if opts.Mode == "" {
		opts.Mode = types.ModeUser
	}
	return opts, nil
}

func loadDocument(opts Options) (*schema.Document, error) {
	if opts.Data == nil {
		if opts.Document == "" {
			return nil, errors.New(errors.ErrInvalidInput, "no menu document given")
		}
		return schema.Load(opts.Deps.FS, opts.Document)
	}
	doc, err := schema.Parse(opts.Data)
	if err != nil && opts.Document != "" {
		return nil, errors.Wrapf(err, errors.GetErrorCode(err), "invalid menu document %s", opts.Document).
			WithDetail("path", opts.Document)
	}
	return doc, err
}

// buildItems merges every raw item for p and keeps the enabled ones
func buildItems(plat platforms.Platform, menu platforms.Menu, doc *schema.Document, p types.Platform) ([]platforms.MenuItem, []string, error) {
	var items []platforms.MenuItem
	var skipped []string
	isBase := menu.Prefix() == menu.BasePrefix()

	for i, raw := range doc.MenuItems {
		md, err := schema.Merge(raw, p)
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.GetErrorCode(err), "menu item %d", i).WithDetail("index", i)
		}
		if !md.EnabledOn(p) {
			skipped = append(skipped, menu.Renderer().Render(md.Name.Resolve(isBase)))
			continue
		}
		item, err := plat.NewMenuItem(menu, md)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

// BatchOptions select the documents of InstallAll and RemoveAll
type BatchOptions struct {
	Options
	// Match is a glob on the document file name; empty matches all
	Match string
}

// InstallAll installs every menu document under <prefix>/Menu
func InstallAll(opts BatchOptions) ([]*Result, error) {
	return runAll(Install, opts)
}

// RemoveAll removes every menu document under <prefix>/Menu
func RemoveAll(opts BatchOptions) ([]*Result, error) {
	return runAll(Remove, opts)
}

func runAll(fn func(Options) (*Result, error), opts BatchOptions) ([]*Result, error) {
	logger := logging.GetLogger("core.batch")
	base, err := normalize(opts.Options)
	if err != nil {
		return nil, err
	}

	documents, err := FindDocuments(base.Deps.FS, base.Prefix, opts.Match)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("prefix", base.Prefix).Int("documents", len(documents)).Msg("Processing menu documents")

	results := []*Result{}
	var errs []error
	for _, document := range documents {
		each := base
		each.Document = document
		each.Data = nil
		result, err := fn(each)
		if err != nil {
			logger.Error().Err(err).Str("document", document).Msg("Menu document failed")
			errs = append(errs, err)
			continue
		}
		results = append(results, result)
	}
	return results, stderrors.Join(errs...)
}

// FindDocuments lists <prefix>/Menu/*.json whose file name matches the
// glob match, sorted by name
func FindDocuments(fsys types.FS, prefix, match string) ([]string, error) {
	menuDir := filepath.Join(prefix, "Menu")
	entries, err := fsys.ReadDir(menuDir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", menuDir).WithDetail("path", menuDir)
	}

	var documents []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}
		if match != "" {
			ok, err := filepath.Match(match, name)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid pattern %q", match)
			}
			if !ok {
				continue
			}
		}
		documents = append(documents, filepath.Join(menuDir, name))
	}
	sort.Strings(documents)
	return documents, nil
}

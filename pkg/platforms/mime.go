package platforms

import (
	"bufio"
	"bytes"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/filesystem"
	"github.com/arthur-debert/menuinst/pkg/logging"
	"github.com/beevik/etree"
)

const sharedMimeInfoNS = "http://www.freedesktop.org/standards/shared-mime-info"

// mimeFragmentName is the shared-mime-info package file for mimeType
func mimeFragmentName(mimeType string) string {
	return strings.ReplaceAll(mimeType, "/", "-") + ".xml"
}

// mimeFragment builds a shared-mime-info document declaring mimeType
// with one glob pattern
func mimeFragment(mimeType, pattern string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	info := doc.CreateElement("mime-info")
	info.CreateAttr("xmlns", sharedMimeInfoNS)
	mt := info.CreateElement("mime-type")
	mt.CreateAttr("type", mimeType)
	mt.CreateElement("glob").CreateAttr("pattern", pattern)
	doc.Indent(2)
	return doc.WriteToBytes()
}

// findMimeFragment looks in dir for a package file whose name contains
// the subtype of mimeType
func (i *linuxMenuItem) findMimeFragment(dir, mimeType string) string {
	subtype := mimeType
	if idx := strings.Index(mimeType, "/"); idx >= 0 {
		subtype = mimeType[idx+1:]
	}
	entries, err := i.menu.deps.FS.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasSuffix(name, ".xml") && strings.Contains(name, subtype) {
			return filepath.Join(dir, name)
		}
	}
	return ""
}

// ownedMimeFragment returns the package file describing mimeType and
// whether this entry writes it. The file named after the type is shared
// by every entry declaring it; any other file describing the type was
// installed by someone else and is left alone.
func (i *linuxMenuItem) ownedMimeFragment(mimeType string) (string, bool) {
	packages := i.menu.mimePackagesDir()
	own := filepath.Join(packages, mimeFragmentName(mimeType))
	if filesystem.Exists(i.menu.deps.FS, own) {
		return own, true
	}
	if existing := i.findMimeFragment(packages, mimeType); existing != "" {
		return existing, false
	}
	return own, true
}

// globbedMimeTypes are the declared types that come with a glob pattern
func (i *linuxMenuItem) globbedMimeTypes() []string {
	var out []string
	for _, mimeType := range i.mimeTypes() {
		if i.globPattern(mimeType) != "" {
			out = append(out, mimeType)
		}
	}
	return out
}

func (i *linuxMenuItem) globPattern(mimeType string) string {
	return i.menu.renderer.Render(i.md.GlobPatterns[mimeType])
}

// mimeFragments lists the package files this entry owns
func (i *linuxMenuItem) mimeFragments() []string {
	var out []string
	for _, mimeType := range i.globbedMimeTypes() {
		if fragment, owned := i.ownedMimeFragment(mimeType); owned {
			out = append(out, fragment)
		}
	}
	return out
}

// registerMimeTypes installs a fragment for every declared MIME type
// that has a glob pattern and makes this entry their default handler.
// Only owned fragments are returned.
func (i *linuxMenuItem) registerMimeTypes() []string {
	m := i.menu
	var written []string

	for _, mimeType := range i.globbedMimeTypes() {
		if fragment, owned := i.ownedMimeFragment(mimeType); !owned {
			m.logger.Debug().Str("mime", mimeType).Str("fragment", fragment).Msg("Reusing MIME fragment")
			continue
		}
		path, err := i.installMimeFragment(mimeType, i.globPattern(mimeType))
		if err != nil {
			m.logger.Warn().Err(err).Str("mime", mimeType).Msg("Could not register MIME type")
			continue
		}
		written = append(written, path)
	}

	if xdgMime, err := m.deps.Runner.LookPath("xdg-mime"); err == nil {
		for _, mimeType := range i.mimeTypes() {
			m.runBestEffort(xdgMime, "default", filepath.Base(i.location()), mimeType)
		}
	}
	return written
}

// installMimeFragment prefers `xdg-mime install` from a staging copy
// and falls back to writing into <data>/mime/packages directly
func (i *linuxMenuItem) installMimeFragment(mimeType, pattern string) (string, error) {
	m := i.menu
	content, err := mimeFragment(mimeType, pattern)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileWrite, "cannot build MIME fragment")
	}
	dest := filepath.Join(m.mimePackagesDir(), mimeFragmentName(mimeType))

	if xdgMime, err := m.deps.Runner.LookPath("xdg-mime"); err == nil {
		staging := filepath.Join(m.dataDir, "mime", "menuinst-staging")
		staged := filepath.Join(staging, mimeFragmentName(mimeType))
		if err := mkdirAll(m.deps.FS, staging); err == nil {
			if err := writeFile(m.deps.FS, staged, content, 0644); err == nil {
				args := []string{"install", "--mode", string(m.mode), "--novendor", staged}
				logging.LogCommand(xdgMime, args)
				_, runErr := m.deps.Runner.Run(xdgMime, args...)
				_ = m.deps.FS.RemoveAll(staging)
				if runErr == nil {
					return dest, nil
				}
				m.logger.Debug().Err(runErr).Msg("xdg-mime install failed, writing the fragment directly")
			}
		}
	}

	if err := mkdirAll(m.deps.FS, m.mimePackagesDir()); err != nil {
		return "", err
	}
	if err := writeFile(m.deps.FS, dest, content, 0644); err != nil {
		return "", err
	}
	m.updateMimeDatabase()
	return dest, nil
}

// unregisterMimeTypes drops this entry from mimeapps.list and removes
// fragments no other desktop entry still declares
func (i *linuxMenuItem) unregisterMimeTypes() []string {
	m := i.menu
	declared := i.mimeTypes()
	if len(declared) == 0 {
		return nil
	}

	i.removeFromMimeApps(declared)

	var removed []string
	for _, mimeType := range declared {
		if i.mimeTypeDeclaredElsewhere(mimeType) {
			m.logger.Debug().Str("mime", mimeType).Msg("MIME type still declared by another entry, keeping fragment")
			continue
		}
		fragment := filepath.Join(m.mimePackagesDir(), mimeFragmentName(mimeType))
		if !filesystem.Exists(m.deps.FS, fragment) {
			continue
		}
		if err := removeFile(m.deps.FS, fragment); err != nil {
			m.logger.Warn().Err(err).Str("fragment", fragment).Msg("Could not remove MIME fragment")
			continue
		}
		removed = append(removed, fragment)
	}
	if len(removed) > 0 {
		m.updateMimeDatabase()
	}
	return removed
}

func (i *linuxMenuItem) mimeTypes() []string {
	var out []string
	for _, t := range i.md.MimeType {
		if t = strings.TrimSpace(i.menu.renderer.Render(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// mimeTypeDeclaredElsewhere scans the other .desktop files for mimeType
func (i *linuxMenuItem) mimeTypeDeclaredElsewhere(mimeType string) bool {
	apps := i.menu.appsDir
	entries, err := i.menu.deps.FS.ReadDir(apps)
	if err != nil {
		return false
	}
	own := filepath.Base(i.location())
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == own || !strings.HasSuffix(entry.Name(), ".desktop") {
			continue
		}
		data, err := i.menu.deps.FS.ReadFile(filepath.Join(apps, entry.Name()))
		if err != nil {
			continue
		}
		for _, declared := range desktopListValue(data, "MimeType") {
			if declared == mimeType {
				return true
			}
		}
	}
	return false
}

// removeFromMimeApps strips this entry from the associations of mimeTypes
func (i *linuxMenuItem) removeFromMimeApps(mimeTypes []string) {
	path := filepath.Join(i.menu.configDir, "mimeapps.list")
	data, err := i.menu.deps.FS.ReadFile(path)
	if err != nil {
		return
	}

	wanted := make(map[string]bool, len(mimeTypes))
	for _, t := range mimeTypes {
		wanted[t] = true
	}
	own := filepath.Base(i.location())

	var out bytes.Buffer
	changed := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, "=")
		if !ok || !wanted[strings.TrimSpace(key)] {
			out.WriteString(line + "\n")
			continue
		}
		var kept []string
		for _, app := range strings.Split(value, ";") {
			if app = strings.TrimSpace(app); app != "" && app != own {
				kept = append(kept, app)
			}
		}
		changed = true
		if len(kept) > 0 {
			out.WriteString(key + "=" + strings.Join(kept, ";") + ";\n")
		}
	}
	if !changed {
		return
	}
	if err := writeFile(i.menu.deps.FS, path, out.Bytes(), 0644); err != nil {
		i.menu.logger.Warn().Err(err).Str("path", path).Msg("Could not update mimeapps.list")
	}
}

// desktopListValue reads a ";"-separated key from desktop entry data
func desktopListValue(data []byte, key string) []string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		k, v, ok := strings.Cut(scanner.Text(), "=")
		if !ok || strings.TrimSpace(k) != key {
			continue
		}
		var out []string
		for _, item := range strings.Split(v, ";") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		sort.Strings(out)
		return out
	}
	return nil
}

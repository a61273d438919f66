package platforms

import (
	"time"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/filesystem"
	"github.com/arthur-debert/menuinst/pkg/types"
	"github.com/beevik/etree"
)

// menuDoctype is prepended on every write; etree does not keep it
// across the copy made before indenting.
const menuDoctype = `<!DOCTYPE Menu PUBLIC "-//freedesktop//DTD Menu 1.0//EN"
 "http://standards.freedesktop.org/menu-spec/menu-1.0.dtd">
`

// backupTimeFormat names backups <file>.2006-01-02_15h04m05
const backupTimeFormat = "2006-01-02_15h04m05"

var now = time.Now

// menuFile is the freedesktop applications.menu shared by every menu
type menuFile struct {
	fs   types.FS
	path string
	// parent is the system menu file merged into a user file, empty
	// for system installs
	parent string
}

// load parses the file. A missing or unparseable file, or one whose
// root is not <Menu>, reports ok=false.
func (m *menuFile) load() (*etree.Element, bool) {
	data, err := m.fs.ReadFile(m.path)
	if err != nil {
		return nil, false
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, false
	}
	root := doc.Root()
	if root == nil || root.Tag != "Menu" {
		return nil, false
	}
	return root, true
}

// bootstrap is the tree written when there is no usable file
func (m *menuFile) bootstrap() *etree.Element {
	root := etree.NewElement("Menu")
	root.CreateElement("Name").SetText("Applications")
	if m.parent != "" {
		merge := root.CreateElement("MergeFile")
		merge.CreateAttr("type", "parent")
		merge.SetText(m.parent)
	}
	return root
}

// ensure returns a usable tree, backing up and replacing an invalid file
func (m *menuFile) ensure() (*etree.Element, error) {
	if root, ok := m.load(); ok {
		return root, nil
	}
	if filesystem.Exists(m.fs, m.path) {
		if info, err := m.fs.Stat(m.path); err == nil && info.IsDir() {
			return nil, errors.Newf(errors.ErrMenuFile, "menu file %s is a directory", m.path).
				WithDetail("path", m.path)
		}
		if err := m.backup(); err != nil {
			return nil, err
		}
	}
	root := m.bootstrap()
	if err := m.write(root, false); err != nil {
		return nil, err
	}
	return root, nil
}

// findMenu returns the direct <Menu> child whose <Name> is name
func findMenu(root *etree.Element, name string) *etree.Element {
	for _, child := range root.SelectElements("Menu") {
		if n := child.SelectElement("Name"); n != nil && n.Text() == name {
			return child
		}
	}
	return nil
}

// addMenu appends a <Menu> that includes every entry in category name
func addMenu(root *etree.Element, name, directory string) {
	menu := root.CreateElement("Menu")
	menu.CreateElement("Name").SetText(name)
	menu.CreateElement("Directory").SetText(directory)
	menu.CreateElement("Include").CreateElement("Category").SetText(name)
}

// removeMenus drops every <Menu> child named name and reports whether
// anything changed
func removeMenus(root *etree.Element, name string) bool {
	changed := false
	for menu := findMenu(root, name); menu != nil; menu = findMenu(root, name) {
		root.RemoveChild(menu)
		changed = true
	}
	return changed
}

// backup copies the current file next to itself with a timestamp suffix
func (m *menuFile) backup() error {
	data, err := m.fs.ReadFile(m.path)
	if err != nil {
		return nil
	}
	return writeFile(m.fs, m.path+"."+now().Format(backupTimeFormat), data, 0644)
}

// write serializes root with two-space indentation after the doctype
func (m *menuFile) write(root *etree.Element, backup bool) error {
	if backup {
		if err := m.backup(); err != nil {
			return err
		}
	}

	doc := etree.NewDocument()
	doc.SetRoot(root.Copy())
	doc.Indent(2)
	body, err := doc.WriteToBytes()
	if err != nil {
		return errors.Wrapf(err, errors.ErrMenuFile, "cannot serialize %s", m.path).WithDetail("path", m.path)
	}
	return writeFile(m.fs, m.path, append([]byte(menuDoctype), body...), 0644)
}

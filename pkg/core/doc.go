// Package core is the document-level API of menuinst. It turns one menu
// description into the platform's menu and items and reports every path
// it created or removed. On Windows the install mode goes through the
// elevation controller first.
//
// # Install and remove order
//
// Install creates the menu first, then every item enabled for the
// target platform. Remove walks the items first and the menu last, so
// a menu shared with other installed documents is only dropped once
// its last entry is gone.
//
// # Batch operations
//
// InstallAll and RemoveAll process every <prefix>/Menu/*.json document,
// optionally narrowed by a glob on the file name. A failing document
// does not stop the others; the errors are returned together.
package core

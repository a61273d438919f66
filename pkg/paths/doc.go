// Package paths provides centralized path handling for menuinst.
// It resolves the XDG base directories used for the tool's own state
// and for the Linux freedesktop menu tree, honoring environment
// overrides so tests can redirect everything into a temporary home.
package paths

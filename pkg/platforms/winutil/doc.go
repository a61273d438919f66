// Package winutil wraps the Windows facilities the menu managers need:
// known-folder lookup, .lnk shortcut creation and registry
// associations for file extensions and URL protocols.
//
// Each facility is an interface. The real implementations live in
// _windows.go files; other platforms get implementations that report
// ErrNotImplemented, and tests substitute fakes.
package winutil

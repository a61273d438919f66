// Package testutil provides fakes for testing menuinst components.
//
// Key components:
//   - MemoryFS: in-memory types.FS with error injection and snapshots
//   - Runner: testify mock for types.Runner that records every command
//   - StaticPaths: fixed paths.Paths rooted under a test directory
//
// Usage guidelines:
//   - Platform managers are tested against MemoryFS; only pkg/filesystem
//     touches the real disk
//   - Runners default to "executable not found" so optional tools
//     (xdg-mime, lsregister, kbuildsycoca) are skipped unless a test opts in
//   - Each test builds its own fakes; nothing is shared between tests
package testutil

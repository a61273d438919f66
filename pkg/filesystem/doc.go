// Package filesystem provides the OS-backed implementations of the
// types.FS and types.Runner interfaces used by the platform managers.
package filesystem

package types

import (
	"io/fs"
)

// FS is the filesystem surface used by the platform managers
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Lstat(name string) (fs.FileInfo, error)
}

// Runner executes external programs and reports their combined output
type Runner interface {
	Run(name string, args ...string) ([]byte, error)
	LookPath(name string) (string, error)
}

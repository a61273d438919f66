// Package types defines the small set of shared types used throughout
// menuinst. Platform code touches the filesystem and runs external
// programs only through the FS and Runner interfaces defined here.
package types

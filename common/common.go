// Package common holds process-wide values shared by the commands: version
// information and logger construction.
package common

var (
	// PackageName is used as the metrics namespace.
	PackageName = "random_string"

	// Version is set at build time via -ldflags.
	Version = "dev"
)

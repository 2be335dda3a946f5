// Package constant defines immutable application-level identifiers and build metadata.
package constant

const (
	// Lectern is the canonical application identifier used for filesystem paths, env prefixes and CLI branding.
	Lectern = "lectern"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// Repository is the upstream location used for release lookups.
	Repository = "lectern-cli/lectern"
)

// Build metadata, overridden with -ldflags "-X" at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

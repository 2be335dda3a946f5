// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Media Playback - these keys govern the external player and the playback controller.
const (
	Player                    = "player.default"
	PlayerCompletionThreshold = "player.completion_threshold"
	PlayerControlsTimeout     = "player.controls_timeout"
	PlayerSkipSeconds         = "player.skip_seconds"
	PlayerVolumeStep          = "player.volume_step"
	PlayerAutoplay            = "player.autoplay"
	PlayerFullscreen          = "player.fullscreen"
)

// Catalog - location of the course catalog.
const (
	CatalogPath = "catalog.path"
)

// Progress Tracking - these keys configure how chapter completion is recorded.
const (
	ProgressAutoComplete = "progress.auto_complete"
)

// Certificates.
const (
	CertificateExportDir       = "certificate.export_dir"
	CertificateOpenAfterExport = "certificate.open_after_export"
)

// Discussion threads.
const (
	DiscussionMaxLength = "discussion.max_length"
)

// Search Interaction - these keys define the parameters for catalog search.
const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

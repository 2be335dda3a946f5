// Package player drives the native media engine a chapter is played in.
//
// The playback controller only sees Resource: a handful of commands and a
// stream of notifications. MPV implements it over mpv's JSON-IPC socket.
package player

import (
	"fmt"
	"strings"
)

// Events are the notifications a Resource delivers. Nil handlers are skipped.
type Events struct {
	// TimeAdvance reports the current position. duration is NaN while unknown.
	TimeAdvance func(current, duration float64)
	// MetadataLoaded reports the media duration once it is known.
	MetadataLoaded func(duration float64)
	// Ended fires when playback reaches the end of the media.
	Ended func()
	// FullscreenChange reports the engine's actual fullscreen state.
	FullscreenChange func(on bool)
	// PauseChange reports the engine's actual pause state.
	PauseChange func(paused bool)
}

// Resource is a native media element.
type Resource interface {
	// Load opens url, titled title, positioned at start seconds.
	Load(url, title string, start float64) error
	// Play may be rejected by the engine, in which case an error is returned and playback stays paused.
	Play() error
	Pause() error
	Seek(seconds float64) error
	// SetVolume takes a level in [0, 1].
	SetVolume(level float64) error
	SetMuted(muted bool) error
	SetSpeed(rate float64) error
	SetFullscreen(on bool) error
	// Subscribe registers handlers and returns the func that removes them.
	Subscribe(events Events) (cancel func())
	Close() error
}

// Options configure a Resource at creation.
type Options struct {
	Autoplay   bool
	Fullscreen bool
}

// New creates the engine named by player.default.
func New(name string, options Options) (Resource, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mpv":
		return NewMPV(options), nil
	default:
		return nil, fmt.Errorf("unsupported player %q: only mpv is supported", name)
	}
}

// Package playback mediates between the watch screen and a native media resource.
//
// A Controller owns exactly one player.Resource. Commands mutate the
// presentation State under a lock and are then forwarded to the resource
// outside it; resource notifications are folded back into the State. The
// completion signal (Options.OnComplete) fires at most once per opened media.
package playback

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/lectern-cli/lectern/log"
	"github.com/lectern-cli/lectern/player"
	"github.com/lectern-cli/lectern/util"
	"github.com/samber/lo"
)

// Rates are the accepted playback speeds.
var Rates = []float64{0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

const (
	DefaultThreshold       = 0.95
	DefaultControlsTimeout = 3 * time.Second
)

// ErrClosed is returned by Open on a closed controller.
var ErrClosed = errors.New("playback controller is closed")

// State is a snapshot of the presentation state.
type State struct {
	CurrentTime float64
	// Duration is NaN until the media's metadata is loaded.
	Duration        float64
	Playing         bool
	Muted           bool
	Volume          float64
	Rate            float64
	Fullscreen      bool
	ControlsVisible bool
	// Watched reports whether the completion signal fired for the current media.
	Watched bool
}

// DurationKnown reports whether the media's length has been reported.
func (s State) DurationKnown() bool {
	return !math.IsNaN(s.Duration)
}

// Percent returns how much of the media has been played, 0 while the duration is unknown.
func (s State) Percent() float64 {
	if !s.DurationKnown() || s.Duration <= 0 {
		return 0
	}
	return util.Clamp(s.CurrentTime/s.Duration, 0, 1) * 100
}

// Timer is the part of *time.Timer the controller needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Options struct {
	// Threshold is the watched fraction past which the completion signal fires.
	Threshold float64
	// ControlsTimeout is the idle time before controls hide while playing.
	ControlsTimeout time.Duration
	// Volume is the initial level in [0, 1].
	Volume float64
	// Autoplay starts playback once the media is loaded.
	Autoplay bool
	// OnComplete is the completion signal, called with the Key of the media that was watched.
	// It runs outside the controller's lock.
	OnComplete func(key string)
	// AfterFunc schedules the controls countdown; time.AfterFunc when nil.
	AfterFunc AfterFunc
}

// Media is what Open plays. Key tells sessions apart in the completion signal.
type Media struct {
	Key   string
	URL   string
	Title string
	Start float64
}

type Controller struct {
	resource player.Resource
	options  Options

	mu       sync.Mutex
	state    State
	opened   bool
	closed   bool
	fired    bool
	key      string
	session  int
	// loading is set while the resource switches media; its events belong to the old media.
	loading bool
	// loaded is set once the current media reported its duration.
	loaded bool
	unsub    func()
	timer    Timer
	timerGen int
	changes  chan struct{}
}

func New(resource player.Resource, options Options) *Controller {
	if options.Threshold <= 0 || options.Threshold > 1 {
		options.Threshold = DefaultThreshold
	}
	if options.ControlsTimeout <= 0 {
		options.ControlsTimeout = DefaultControlsTimeout
	}
	if options.AfterFunc == nil {
		options.AfterFunc = realAfterFunc
	}
	options.Volume = util.Clamp(options.Volume, 0, 1)

	return &Controller{
		resource: resource,
		options:  options,
		state: State{
			Duration:        math.NaN(),
			Volume:          options.Volume,
			Muted:           options.Volume == 0,
			Rate:            1,
			ControlsVisible: true,
		},
		changes: make(chan struct{}, 1),
	}
}

// Open loads media into the resource and starts a new playback session.
// Opening again replaces the media and resets the session, including the completion signal.
// Time and end notifications are ignored until the new media reports its duration.
func (c *Controller) Open(media Media) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	if !c.opened {
		c.unsub = c.resource.Subscribe(player.Events{
			TimeAdvance:      c.onTimeAdvance,
			MetadataLoaded:   c.onMetadataLoaded,
			Ended:            c.onEnded,
			FullscreenChange: c.onFullscreenChange,
			PauseChange:      c.onPauseChange,
		})
		c.opened = true
	}

	c.session++
	session := c.session
	c.key = media.Key
	c.fired = false
	c.loading = true
	c.loaded = false
	c.state.Watched = false
	c.state.Duration = math.NaN()
	c.state.CurrentTime = math.Max(0, media.Start)
	c.state.Playing = false
	c.state.ControlsVisible = true
	volume, muted, rate := c.state.Volume, c.state.Muted, c.state.Rate
	c.mu.Unlock()

	err := c.resource.Load(media.URL, media.Title, media.Start)

	c.mu.Lock()
	if c.session == session {
		c.loading = false
	}
	c.mu.Unlock()

	if err != nil {
		return err
	}

	c.warn("set volume", c.resource.SetVolume(volume))
	c.warn("set mute", c.resource.SetMuted(muted))
	c.warn("set speed", c.resource.SetSpeed(rate))

	if c.options.Autoplay {
		c.play()
	}

	c.Interact()
	return nil
}

// Close ends the session: handlers are removed, the controls timer is cancelled
// and the resource is released. Every later call is a no-op.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.stopTimer()
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	close(c.changes)
	c.mu.Unlock()

	return c.resource.Close()
}

// State returns a snapshot of the presentation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Changes is signalled after every state change and closed on Close.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

// TogglePlay pauses while playing and plays otherwise.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	playing := c.state.Playing
	c.mu.Unlock()

	if playing {
		c.pause()
	} else {
		c.play()
	}
}

func (c *Controller) play() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Playing = true
	c.restartTimer()
	c.mu.Unlock()
	c.notify()

	if err := c.resource.Play(); err != nil {
		log.WithError(err).Warn("play rejected")

		c.mu.Lock()
		if !c.closed {
			c.state.Playing = false
			c.state.ControlsVisible = true
			c.stopTimer()
		}
		c.mu.Unlock()
		c.notify()
	}
}

func (c *Controller) pause() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Playing = false
	c.state.ControlsVisible = true
	c.stopTimer()
	c.mu.Unlock()
	c.notify()

	c.warn("pause", c.resource.Pause())
}

// Seek moves to t clamped to [0, duration]; only the lower bound applies while the duration is unknown.
func (c *Controller) Seek(t float64) {
	if math.IsNaN(t) {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	t = c.clamp(t)
	c.state.CurrentTime = t
	c.mu.Unlock()
	c.notify()

	c.warn("seek", c.resource.Seek(t))
}

// Skip seeks delta seconds from the current position.
func (c *Controller) Skip(delta float64) {
	c.mu.Lock()
	current := c.state.CurrentTime
	c.mu.Unlock()

	c.Seek(current + delta)
}

// SetVolume stores level clamped to [0, 1]. Zero mutes; any positive level unmutes.
func (c *Controller) SetVolume(level float64) {
	if math.IsNaN(level) {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	level = util.Clamp(level, 0, 1)
	c.state.Volume = level
	if level == 0 {
		c.state.Muted = true
	} else if c.state.Muted {
		c.state.Muted = false
	}
	muted := c.state.Muted
	c.mu.Unlock()
	c.notify()

	c.warn("set volume", c.resource.SetVolume(level))
	c.warn("set mute", c.resource.SetMuted(muted))
}

// ToggleMute flips mute and leaves the stored volume alone.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Muted = !c.state.Muted
	muted := c.state.Muted
	c.mu.Unlock()
	c.notify()

	c.warn("set mute", c.resource.SetMuted(muted))
}

// SetPlaybackRate applies rate if it is one of Rates and reports whether it did.
func (c *Controller) SetPlaybackRate(rate float64) bool {
	if !lo.Contains(Rates, rate) {
		return false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.state.Rate = rate
	c.mu.Unlock()
	c.notify()

	c.warn("set speed", c.resource.SetSpeed(rate))
	return true
}

// ShiftRate moves steps positions through Rates, stopping at either end, and returns the new rate.
func (c *Controller) ShiftRate(steps int) float64 {
	c.mu.Lock()
	current := c.state.Rate
	c.mu.Unlock()

	i := lo.IndexOf(Rates, current)
	if i < 0 {
		i = lo.IndexOf(Rates, 1)
	}
	rate := Rates[util.Clamp(i+steps, 0, len(Rates)-1)]
	c.SetPlaybackRate(rate)
	return rate
}

// ToggleFullscreen asks the resource to enter or leave fullscreen.
// State.Fullscreen only follows the resource's own notification.
func (c *Controller) ToggleFullscreen() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	want := !c.state.Fullscreen
	c.mu.Unlock()

	c.warn("fullscreen", c.resource.SetFullscreen(want))
}

// Interact shows the controls and restarts the hide countdown.
func (c *Controller) Interact() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.ControlsVisible = true
	c.restartTimer()
	c.mu.Unlock()
	c.notify()
}

// Leave hides the controls while playing and shows them while paused.
func (c *Controller) Leave() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimer()
	c.state.ControlsVisible = !c.state.Playing
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) onTimeAdvance(current, duration float64) {
	c.mu.Lock()
	if c.closed || !c.current() || math.IsNaN(current) {
		c.mu.Unlock()
		return
	}
	if !math.IsNaN(duration) && duration > 0 {
		c.state.Duration = duration
	}
	c.state.CurrentTime = c.clamp(current)

	fire := false
	if c.state.DurationKnown() && current > c.options.Threshold*c.state.Duration {
		fire = c.markWatched()
	}
	key := c.key
	c.mu.Unlock()
	c.notify()

	if fire {
		c.complete(key)
	}
}

func (c *Controller) onMetadataLoaded(duration float64) {
	c.mu.Lock()
	if c.closed || c.loading || math.IsNaN(duration) || duration <= 0 {
		c.mu.Unlock()
		return
	}
	c.loaded = true
	c.state.Duration = duration
	c.state.CurrentTime = c.clamp(c.state.CurrentTime)
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) onEnded() {
	c.mu.Lock()
	if c.closed || !c.current() {
		c.mu.Unlock()
		return
	}
	c.state.Playing = false
	c.state.ControlsVisible = true
	c.stopTimer()
	fire := c.markWatched()
	key := c.key
	c.mu.Unlock()
	c.notify()

	if fire {
		c.complete(key)
	}
}

func (c *Controller) onFullscreenChange(on bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Fullscreen = on
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) onPauseChange(paused bool) {
	c.mu.Lock()
	if c.closed || c.state.Playing == !paused {
		c.mu.Unlock()
		return
	}
	c.state.Playing = !paused
	if paused {
		c.state.ControlsVisible = true
		c.stopTimer()
	} else {
		c.restartTimer()
	}
	c.mu.Unlock()
	c.notify()
}

// current reports whether notifications belong to the open media. Caller holds mu.
func (c *Controller) current() bool {
	return c.loaded && !c.loading
}

// markWatched flips the per-session flag and reports whether this call did. Caller holds mu.
func (c *Controller) markWatched() bool {
	if c.fired {
		return false
	}
	c.fired = true
	c.state.Watched = true
	return true
}

func (c *Controller) complete(key string) {
	if c.options.OnComplete != nil {
		c.options.OnComplete(key)
	}
}

// clamp bounds t to the media. Caller holds mu.
func (c *Controller) clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if c.state.DurationKnown() && t > c.state.Duration {
		return c.state.Duration
	}
	return t
}

// restartTimer arms the hide countdown. Caller holds mu.
func (c *Controller) restartTimer() {
	c.stopTimer()
	c.timerGen++
	gen := c.timerGen
	c.timer = c.options.AfterFunc(c.options.ControlsTimeout, func() {
		c.onControlsTimeout(gen)
	})
}

// stopTimer cancels the countdown; a callback already in flight is discarded by its generation. Caller holds mu.
func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

func (c *Controller) onControlsTimeout(gen int) {
	c.mu.Lock()
	if c.closed || gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if c.state.Playing {
		c.state.ControlsVisible = false
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

func (c *Controller) warn(action string, err error) {
	if err != nil {
		log.WithError(err).WithField("action", action).Warn("media resource refused command")
	}
}

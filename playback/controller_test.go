package playback

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/lectern-cli/lectern/player"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeResource records commands and lets tests raise notifications.
type fakeResource struct {
	player.Broadcaster

	mu            sync.Mutex
	loaded        string
	start         float64
	position      float64
	volume        float64
	muted         bool
	speed         float64
	playErr       error
	fullscreenErr error
	fullscreenReq []bool
	closed        int
	// switching runs inside Load, before the new media is in place.
	switching func()
}

func (f *fakeResource) Load(url, _ string, start float64) error {
	if f.switching != nil {
		f.switching()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded, f.start = url, start
	return nil
}

func (f *fakeResource) Play() error {
	if f.playErr != nil {
		return f.playErr
	}
	f.EmitPauseChange(false)
	return nil
}

func (f *fakeResource) Pause() error {
	f.EmitPauseChange(true)
	return nil
}

func (f *fakeResource) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = seconds
	return nil
}

func (f *fakeResource) SetVolume(level float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = level
	return nil
}

func (f *fakeResource) SetMuted(muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = muted
	return nil
}

func (f *fakeResource) SetSpeed(rate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speed = rate
	return nil
}

func (f *fakeResource) SetFullscreen(on bool) error {
	f.mu.Lock()
	f.fullscreenReq = append(f.fullscreenReq, on)
	f.mu.Unlock()
	return f.fullscreenErr
}

func (f *fakeResource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

// manualClock hands out timers that only fire when the test says so.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// Expire fires every pending timer, as if the countdown elapsed.
func (c *manualClock) Expire() {
	c.mu.Lock()
	pending := c.timers
	c.timers = nil
	c.mu.Unlock()

	for _, t := range pending {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}

// FireStopped runs only the callbacks of cancelled timers.
func (c *manualClock) FireStopped() {
	c.mu.Lock()
	pending := c.timers
	c.mu.Unlock()

	for _, t := range pending {
		if t.stopped {
			t.f()
		}
	}
}

// ExpireStale fires timers even if they were stopped, like a callback already in flight.
func (c *manualClock) ExpireStale() {
	c.mu.Lock()
	pending := c.timers
	c.timers = nil
	c.mu.Unlock()

	for _, t := range pending {
		t.f()
	}
}

const chapterURL = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4"

var (
	introduction = Media{Key: "1-1", URL: chapterURL, Title: "Introduction to HTML"}
	fundamentals = Media{Key: "1-2", URL: chapterURL, Title: "CSS Fundamentals"}
)

// signals records completion signals by media key.
type signals struct {
	mu   sync.Mutex
	keys []string
}

func (c *signals) add(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, key)
}

func (c *signals) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

func (c *signals) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.keys...)
}

func setup(options Options) (*Controller, *fakeResource, *manualClock, *signals) {
	resource := &fakeResource{}
	clock := &manualClock{}
	done := &signals{}

	options.AfterFunc = clock.AfterFunc
	if options.Volume == 0 {
		options.Volume = 1
	}
	options.OnComplete = done.add

	c := New(resource, options)
	So(c.Open(introduction), ShouldBeNil)
	return c, resource, clock, done
}

func TestOpenClose(t *testing.T) {
	Convey("Given an opened controller", t, func() {
		c, resource, _, _ := setup(Options{})

		Convey("The media should be loaded with handlers registered", func() {
			So(resource.loaded, ShouldEqual, chapterURL)
			So(resource.Subscribers(), ShouldEqual, 1)
			So(math.IsNaN(c.State().Duration), ShouldBeTrue)
			So(c.State().ControlsVisible, ShouldBeTrue)
		})

		Convey("The start offset should become the current time", func() {
			media := introduction
			media.Start = 12
			So(c.Open(media), ShouldBeNil)
			So(resource.start, ShouldEqual, 12)
			So(c.State().CurrentTime, ShouldEqual, 12)
			So(resource.Subscribers(), ShouldEqual, 1)
		})

		Convey("When closed", func() {
			resource.EmitMetadataLoaded(60)
			So(c.Close(), ShouldBeNil)

			Convey("Handlers are deregistered and the resource released once", func() {
				So(resource.Subscribers(), ShouldEqual, 0)
				So(c.Close(), ShouldBeNil)
				So(resource.closed, ShouldEqual, 1)
			})

			Convey("Commands and late events are ignored", func() {
				before := c.State()
				c.Seek(30)
				c.SetVolume(0.2)
				c.TogglePlay()
				c.onTimeAdvance(50, 60)
				So(c.State(), ShouldResemble, before)
			})

			Convey("Reopening fails", func() {
				So(errors.Is(c.Open(introduction), ErrClosed), ShouldBeTrue)
			})

			Convey("The changes channel is closed", func() {
				_, ok := <-c.Changes()
				for ok {
					_, ok = <-c.Changes()
				}
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestSeek(t *testing.T) {
	Convey("Given media of 600 seconds", t, func() {
		c, resource, _, _ := setup(Options{})
		resource.EmitMetadataLoaded(600)

		Convey("Seeking past the end clamps to the duration", func() {
			c.Seek(900)
			So(c.State().CurrentTime, ShouldEqual, 600)
			So(resource.position, ShouldEqual, 600)
		})

		Convey("Seeking before the start clamps to zero", func() {
			c.Seek(-5)
			So(c.State().CurrentTime, ShouldEqual, 0)
		})

		Convey("Skip applies the same clamping", func() {
			c.Seek(595)
			c.Skip(10)
			So(c.State().CurrentTime, ShouldEqual, 600)
			c.Skip(-1000)
			So(c.State().CurrentTime, ShouldEqual, 0)
		})

		Convey("NaN is ignored", func() {
			c.Seek(20)
			c.Seek(math.NaN())
			So(c.State().CurrentTime, ShouldEqual, 20)
		})
	})

	Convey("Given the duration is unknown", t, func() {
		c, _, _, _ := setup(Options{})

		Convey("Only the lower bound applies", func() {
			c.Seek(9000)
			So(c.State().CurrentTime, ShouldEqual, 9000)
			c.Seek(-1)
			So(c.State().CurrentTime, ShouldEqual, 0)
		})

		Convey("Loading metadata re-clamps the position", func() {
			c.Seek(9000)
			c.onMetadataLoaded(120)
			So(c.State().CurrentTime, ShouldEqual, 120)
			So(c.State().DurationKnown(), ShouldBeTrue)
		})
	})
}

func TestVolume(t *testing.T) {
	Convey("Given a controller at full volume", t, func() {
		c, resource, _, _ := setup(Options{Volume: 1})

		Convey("Zero volume mutes", func() {
			c.SetVolume(0)
			So(c.State().Muted, ShouldBeTrue)
			So(resource.muted, ShouldBeTrue)

			Convey("and a positive level unmutes with that level", func() {
				c.SetVolume(0.4)
				So(c.State().Muted, ShouldBeFalse)
				So(c.State().Volume, ShouldEqual, 0.4)
				So(resource.volume, ShouldEqual, 0.4)
			})
		})

		Convey("Levels are clamped", func() {
			c.SetVolume(3)
			So(c.State().Volume, ShouldEqual, 1)
			c.SetVolume(-1)
			So(c.State().Volume, ShouldEqual, 0)
			So(c.State().Muted, ShouldBeTrue)
		})

		Convey("Toggling mute keeps the stored volume", func() {
			c.SetVolume(0.7)
			c.ToggleMute()
			So(c.State().Muted, ShouldBeTrue)
			So(c.State().Volume, ShouldEqual, 0.7)
			c.ToggleMute()
			So(c.State().Muted, ShouldBeFalse)
			So(c.State().Volume, ShouldEqual, 0.7)
		})
	})
}

func TestRate(t *testing.T) {
	Convey("Given a controller", t, func() {
		c, resource, _, _ := setup(Options{})

		Convey("Supported rates are applied", func() {
			So(c.SetPlaybackRate(1.5), ShouldBeTrue)
			So(c.State().Rate, ShouldEqual, 1.5)
			So(resource.speed, ShouldEqual, 1.5)
		})

		Convey("Other rates are ignored", func() {
			So(c.SetPlaybackRate(3), ShouldBeFalse)
			So(c.SetPlaybackRate(1.1), ShouldBeFalse)
			So(c.State().Rate, ShouldEqual, 1)
		})

		Convey("ShiftRate walks the rate list and stops at the ends", func() {
			So(c.ShiftRate(1), ShouldEqual, 1.25)
			So(c.ShiftRate(10), ShouldEqual, 2)
			So(c.ShiftRate(-10), ShouldEqual, 0.5)
		})
	})
}

func TestPlay(t *testing.T) {
	Convey("Given the environment rejects playback", t, func() {
		c, resource, _, _ := setup(Options{})
		resource.playErr = errors.New("autoplay blocked")

		Convey("TogglePlay leaves the controller paused without panicking", func() {
			So(func() { c.TogglePlay() }, ShouldNotPanic)
			So(c.State().Playing, ShouldBeFalse)
			So(c.State().ControlsVisible, ShouldBeTrue)
		})
	})

	Convey("Given playback is allowed", t, func() {
		c, resource, _, _ := setup(Options{})

		Convey("TogglePlay alternates", func() {
			c.TogglePlay()
			So(c.State().Playing, ShouldBeTrue)
			c.TogglePlay()
			So(c.State().Playing, ShouldBeFalse)
		})

		Convey("The resource's own pause notifications win", func() {
			c.TogglePlay()
			resource.EmitPauseChange(true)
			So(c.State().Playing, ShouldBeFalse)
		})
	})

	Convey("Given autoplay", t, func() {
		c, _, _, _ := setup(Options{Autoplay: true})

		Convey("The media starts playing on open", func() {
			So(c.State().Playing, ShouldBeTrue)
		})
	})
}

func TestFullscreen(t *testing.T) {
	Convey("Given a controller", t, func() {
		c, resource, _, _ := setup(Options{})

		Convey("The request alone does not change state", func() {
			c.ToggleFullscreen()
			So(resource.fullscreenReq, ShouldResemble, []bool{true})
			So(c.State().Fullscreen, ShouldBeFalse)

			resource.EmitFullscreenChange(true)
			So(c.State().Fullscreen, ShouldBeTrue)

			c.ToggleFullscreen()
			So(resource.fullscreenReq, ShouldResemble, []bool{true, false})
		})

		Convey("A denied request is not fatal", func() {
			resource.fullscreenErr = errors.New("denied")
			So(func() { c.ToggleFullscreen() }, ShouldNotPanic)
			So(c.State().Fullscreen, ShouldBeFalse)
		})
	})
}

func TestCompletionSignal(t *testing.T) {
	Convey("Given media of 100 seconds", t, func() {
		c, resource, _, completions := setup(Options{})
		resource.EmitMetadataLoaded(100)

		Convey("Nothing fires at or below 95%", func() {
			resource.EmitTimeAdvance(50, 100)
			resource.EmitTimeAdvance(95, 100)
			So(completions.Count(), ShouldEqual, 0)
			So(c.State().Watched, ShouldBeFalse)
		})

		Convey("It fires once past 95% however many updates follow", func() {
			for _, t := range []float64{95.5, 96, 97, 99, 100} {
				resource.EmitTimeAdvance(t, 100)
			}
			So(completions.Count(), ShouldEqual, 1)
			So(c.State().Watched, ShouldBeTrue)

			Convey("and ending does not fire it again", func() {
				resource.EmitEnded()
				So(completions.Count(), ShouldEqual, 1)
				So(c.State().Playing, ShouldBeFalse)
			})
		})

		Convey("Ending fires it if the threshold was never crossed", func() {
			resource.EmitEnded()
			So(completions.Count(), ShouldEqual, 1)
		})

		Convey("The signal carries the key of the watched media", func() {
			resource.EmitTimeAdvance(96, 100)
			So(completions.Keys(), ShouldResemble, []string{"1-1"})
		})

		Convey("Reopening starts a new session", func() {
			resource.EmitTimeAdvance(99, 100)
			So(c.Open(fundamentals), ShouldBeNil)
			So(c.State().Watched, ShouldBeFalse)
			resource.EmitMetadataLoaded(100)
			resource.EmitTimeAdvance(99, 100)
			So(completions.Keys(), ShouldResemble, []string{"1-1", "1-2"})
		})

		Convey("When switching media", func() {
			resource.EmitTimeAdvance(50, 100)
			resource.switching = func() {
				resource.EmitTimeAdvance(97, 100)
				resource.EmitMetadataLoaded(100)
				resource.EmitEnded()
			}
			So(c.Open(fundamentals), ShouldBeNil)

			Convey("notifications from the old media are ignored", func() {
				So(completions.Count(), ShouldEqual, 0)
				So(c.State().Watched, ShouldBeFalse)
				So(c.State().DurationKnown(), ShouldBeFalse)
			})

			Convey("time updates wait for the new media's duration", func() {
				resource.EmitTimeAdvance(98, 100)
				resource.EmitEnded()
				So(completions.Count(), ShouldEqual, 0)

				resource.EmitMetadataLoaded(200)
				resource.EmitTimeAdvance(98, 200)
				So(completions.Count(), ShouldEqual, 0)
				resource.EmitTimeAdvance(191, 200)
				So(completions.Keys(), ShouldResemble, []string{"1-2"})
			})
		})
	})

	Convey("Given the duration is unknown", t, func() {
		_, resource, _, completions := setup(Options{})

		Convey("Time updates never fire it", func() {
			resource.EmitTimeAdvance(5000, math.NaN())
			So(completions.Count(), ShouldEqual, 0)
		})
	})

	Convey("Given a custom threshold", t, func() {
		_, resource, _, completions := setup(Options{Threshold: 0.5})
		resource.EmitMetadataLoaded(100)

		Convey("It fires past that fraction", func() {
			resource.EmitTimeAdvance(51, 100)
			So(completions.Count(), ShouldEqual, 1)
		})
	})
}

func TestControlsVisibility(t *testing.T) {
	Convey("Given a playing controller", t, func() {
		c, _, clock, _ := setup(Options{})
		c.TogglePlay()

		Convey("Controls hide when the countdown expires", func() {
			clock.Expire()
			So(c.State().ControlsVisible, ShouldBeFalse)

			Convey("and interaction shows them again", func() {
				c.Interact()
				So(c.State().ControlsVisible, ShouldBeTrue)
				clock.Expire()
				So(c.State().ControlsVisible, ShouldBeFalse)
			})
		})

		Convey("Leaving hides them immediately", func() {
			c.Leave()
			So(c.State().ControlsVisible, ShouldBeFalse)
		})

		Convey("Pausing forces them visible", func() {
			clock.Expire()
			c.TogglePlay()
			So(c.State().ControlsVisible, ShouldBeTrue)
		})
	})

	Convey("Given a paused controller", t, func() {
		c, _, clock, _ := setup(Options{})

		Convey("Expiry keeps the controls visible", func() {
			c.Interact()
			clock.Expire()
			So(c.State().ControlsVisible, ShouldBeTrue)
		})

		Convey("Leaving keeps them visible", func() {
			c.Leave()
			So(c.State().ControlsVisible, ShouldBeTrue)
		})
	})

	Convey("Given a countdown that was superseded", t, func() {
		c, _, clock, _ := setup(Options{})
		c.TogglePlay()
		c.Interact()

		Convey("Its late callback is discarded", func() {
			clock.FireStopped()
			So(c.State().ControlsVisible, ShouldBeTrue)

			clock.Expire()
			So(c.State().ControlsVisible, ShouldBeFalse)
		})
	})

	Convey("Given a closed controller", t, func() {
		c, _, clock, _ := setup(Options{})
		c.TogglePlay()
		So(c.Close(), ShouldBeNil)

		Convey("A pending countdown does nothing", func() {
			So(func() { clock.ExpireStale() }, ShouldNotPanic)
			So(c.State().ControlsVisible, ShouldBeTrue)
		})
	})
}

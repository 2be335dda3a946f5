package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/internal/ui"
	"github.com/lectern-cli/lectern/key"
	"github.com/lectern-cli/lectern/playback"
	"github.com/lectern-cli/lectern/player"
	lprogress "github.com/lectern-cli/lectern/progress"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// bubble is the watch screen model. Everything except the completion queue
// is owned by the Bubble Tea loop.
type bubble struct {
	state  state
	keymap *keymap

	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model
	notifier  *ui.Model

	controller *playback.Controller
	resource   player.Resource
	playback   playback.State

	chapter  *catalog.Chapter
	chapters []*catalog.Chapter
	states   map[string]lprogress.ChapterState
	progress int

	// watched queues chapters reported by the completion signal until the loop drains them.
	watchedMu sync.Mutex
	watched   []*catalog.Chapter
	pending   chan struct{}

	skip, volumeStep float64
	autoComplete     bool

	width, height int
	lastError     error

	options *Options
}

func newBubble(options *Options) (*bubble, error) {
	chapters, err := options.Catalog.Chapters(options.Course.ID)
	if err != nil {
		return nil, err
	}

	resource := options.Resource
	if resource == nil {
		resource, err = player.New(viper.GetString(key.Player), player.Options{
			Autoplay:   viper.GetBool(key.PlayerAutoplay),
			Fullscreen: viper.GetBool(key.PlayerFullscreen),
		})
		if err != nil {
			return nil, err
		}
	}

	b := &bubble{
		state:        loadingState,
		keymap:       newKeymap(),
		spinnerC:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		progressC:    progress.New(progress.WithGradient(string(color.Ink), string(color.Gold)), progress.WithoutPercentage()),
		helpC:        help.New(),
		notifier:     &ui.Model{},
		resource:     resource,
		chapter:      options.Chapter,
		chapters:     chapters,
		states:       make(map[string]lprogress.ChapterState),
		pending:      make(chan struct{}, 1),
		skip:         float64(viper.GetInt(key.PlayerSkipSeconds)),
		volumeStep:   float64(viper.GetInt(key.PlayerVolumeStep)) / 100,
		autoComplete: viper.GetBool(key.ProgressAutoComplete),
		options:      options,
	}
	b.spinnerC.Style = b.spinnerC.Style.Foreground(color.Gold)

	b.controller = playback.New(resource, playback.Options{
		Threshold:       float64(viper.GetInt(key.PlayerCompletionThreshold)) / 100,
		ControlsTimeout: time.Duration(viper.GetInt(key.PlayerControlsTimeout)) * time.Second,
		Volume:          1,
		Autoplay:        viper.GetBool(key.PlayerAutoplay),
		OnComplete:      b.signalCompletion,
	})
	b.playback = b.controller.State()

	return b, nil
}

// signalCompletion runs on the player's goroutine, so it only queues the chapter.
// A pending wake-up always covers everything queued before it is drained.
func (b *bubble) signalCompletion(chapterID string) {
	chapter, ok := lo.Find(b.chapters, func(ch *catalog.Chapter) bool { return ch.ID == chapterID })
	if !ok {
		return
	}

	b.watchedMu.Lock()
	b.watched = append(b.watched, chapter)
	b.watchedMu.Unlock()

	select {
	case b.pending <- struct{}{}:
	default:
	}
}

func (b *bubble) drainWatched() []*catalog.Chapter {
	b.watchedMu.Lock()
	defer b.watchedMu.Unlock()
	watched := b.watched
	b.watched = nil
	return watched
}

func (b *bubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *bubble) raiseError(err error) {
	b.lastError = err
	b.setState(errorState)
}

func (b *bubble) resize(width, height int) {
	x, _ := paddingStyle.GetFrameSize()
	b.width, b.height = width, height
	b.helpC.Width = width - x
	b.progressC.Width = max(10, min(width-x-24, 60))
}

func (b *bubble) close() {
	if err := b.controller.Close(); err != nil {
		b.lastError = err
	}
}

package player

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lectern-cli/lectern/constant"
	"github.com/lectern-cli/lectern/log"
	"github.com/lectern-cli/lectern/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// MPV is a Resource backed by an mpv process controlled over JSON-IPC.
type MPV struct {
	options    Options
	binary     string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	listener   *EventListener
	events     Broadcaster

	// mu serializes IPC commands.
	mu sync.Mutex

	stateMu  sync.Mutex
	duration float64
	closed   bool
}

// NewMPV returns an idle MPV; the process starts on the first Load.
func NewMPV(options Options) *MPV {
	return &MPV{
		options:  options,
		binary:   "mpv",
		duration: math.NaN(),
	}
}

// Load starts mpv on first use and replaces the current file afterwards.
func (m *MPV) Load(rawURL, title string, start float64) error {
	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}
	title = sanitizeTitle(title)

	m.stateMu.Lock()
	m.duration = math.NaN()
	m.stateMu.Unlock()

	if m.running() {
		if _, err := m.sendCommand("set_property", "force-media-title", title); err != nil {
			return err
		}
		if _, err := m.sendCommand("set_property", "start", formatStart(start)); err != nil {
			return err
		}
		_, err := m.sendCommand("loadfile", target, "replace")
		return err
	}

	return m.spawn(target, title, start)
}

func formatStart(start float64) string {
	if start <= 0 || math.IsNaN(start) {
		return "none"
	}
	return strconv.FormatFloat(start, 'f', 3, 64)
}

func (m *MPV) args(target, title string, start float64) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + m.socketPath,
		"--force-media-title=" + title,
		"--title=" + title,
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
	}

	if start > 0 {
		args = append(args, "--start="+formatStart(start))
	}
	if !m.options.Autoplay {
		args = append(args, "--pause=yes")
	}
	if m.options.Fullscreen {
		args = append(args, "--fullscreen=yes")
	}

	return append(args, "--", target)
}

func (m *MPV) spawn(target, title string, start float64) error {
	if m.socketPath == "" {
		m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("%s-%s.sock", constant.Lectern, uuid.NewString()[:8]))
	}

	m.cmd = exec.Command(m.binary, m.args(target, title, start)...)
	m.cmd.SysProcAttr = sysProcAttr()

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	m.exited = exited
	cmd := m.cmd
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-exited:
		default:
			log.WithField("socket", m.socketPath).Warn("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = NewEventListener(m.socketPath, m.handleProperty)
	if err := m.listener.Start(); err != nil {
		return err
	}

	log.WithField("socket", m.socketPath).Info("mpv started")
	return nil
}

func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		if conn, err := net.Dial("unix", m.socketPath); err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) running() bool {
	if m.socketPath == "" || m.exited == nil {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// handleProperty translates observed mpv properties into Events.
func (m *MPV) handleProperty(name string, data any) {
	switch name {
	case "duration":
		d, ok := data.(float64)
		if !ok {
			return
		}
		m.stateMu.Lock()
		m.duration = d
		m.stateMu.Unlock()
		m.events.EmitMetadataLoaded(d)
	case "time-pos":
		pos, ok := data.(float64)
		if !ok {
			return
		}
		m.stateMu.Lock()
		d := m.duration
		m.stateMu.Unlock()
		m.events.EmitTimeAdvance(pos, d)
	case "pause":
		if paused, ok := data.(bool); ok {
			m.events.EmitPauseChange(paused)
		}
	case "eof-reached":
		if eof, ok := data.(bool); ok && eof {
			m.events.EmitEnded()
		}
	case "fullscreen":
		if on, ok := data.(bool); ok {
			m.events.EmitFullscreenChange(on)
		}
	}
}

func (m *MPV) set(property string, value any) error {
	if !m.running() {
		return fmt.Errorf("mpv is not running")
	}
	_, err := m.sendCommand("set_property", property, value)
	return err
}

func (m *MPV) Play() error {
	return m.set("pause", false)
}

func (m *MPV) Pause() error {
	return m.set("pause", true)
}

func (m *MPV) Seek(seconds float64) error {
	if !m.running() {
		return fmt.Errorf("mpv is not running")
	}
	_, err := m.sendCommand("seek", seconds, "absolute")
	return err
}

// SetVolume maps [0, 1] onto mpv's 0-100 scale.
func (m *MPV) SetVolume(level float64) error {
	return m.set("volume", math.Round(level*100))
}

func (m *MPV) SetMuted(muted bool) error {
	return m.set("mute", muted)
}

func (m *MPV) SetSpeed(rate float64) error {
	return m.set("speed", rate)
}

func (m *MPV) SetFullscreen(on bool) error {
	return m.set("fullscreen", on)
}

func (m *MPV) Subscribe(events Events) (cancel func()) {
	return m.events.Subscribe(events)
}

// Exited is closed when the mpv process exits, for instance when the user closes its window.
func (m *MPV) Exited() <-chan struct{} {
	return m.exited
}

// Close quits mpv, killing it if it does not exit in time. It is safe to call twice.
func (m *MPV) Close() error {
	m.stateMu.Lock()
	if m.closed {
		m.stateMu.Unlock()
		return nil
	}
	m.closed = true
	m.stateMu.Unlock()

	if m.listener != nil {
		m.listener.Stop()
	}

	if !m.running() {
		return nil
	}

	_, _ = m.sendCommand("quit")

	select {
	case <-m.exited:
	case <-time.After(quitTimeout):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// sanitizeMediaTarget rejects anything mpv could read as a flag and any scheme other than http, https or file.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-'")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}

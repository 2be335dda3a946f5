package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/lectern-cli/lectern/log"
)

// observed are the properties the listener subscribes to. mpv scopes
// observe_property to the connection, so they are requested on the
// listener's own connection.
var observed = []string{
	"time-pos",
	"duration",
	"pause",
	"eof-reached",
	"fullscreen",
}

// EventCallback receives a property name and its new value.
type EventCallback func(property string, data any)

// EventListener holds a persistent mpv connection and reports property changes.
type EventListener struct {
	socketPath string
	callback   EventCallback

	mu        sync.Mutex
	conn      net.Conn
	listening bool
	done      chan struct{}
}

func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
	}
}

// Start connects, observes every property in observed and begins reading.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err != nil {
			conn.Close()
			return err
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true
	el.done = make(chan struct{})
	go el.readLoop(conn, el.done)

	log.WithField("socket", el.socketPath).Debug("mpv event listener started")
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (el *EventListener) Stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}
	el.listening = false
	conn, done := el.conn, el.done
	el.mu.Unlock()

	_ = conn.Close()
	<-done
}

func (el *EventListener) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		el.process(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.WithError(err).Warn("mpv event listener stopped")
	}
}

func (el *EventListener) process(line []byte) {
	var event struct {
		Event string `json:"event"`
		Name  string `json:"name"`
		Data  any    `json:"data"`
	}
	if err := json.Unmarshal(line, &event); err != nil {
		return
	}

	switch event.Event {
	case "":
		// command reply
	case "property-change":
		if event.Name != "" && el.callback != nil {
			el.callback(event.Name, event.Data)
		}
	default:
		if el.callback != nil {
			el.callback(event.Event, nil)
		}
	}
}

// Package transcript writes chat transcripts as per-session NDJSON files.
//
// Logging is asynchronous: Log enqueues and returns immediately, a single
// worker goroutine owns all file handles, and events are dropped with a
// warning when the queue is full. Close drains the queue and flushes.
package transcript

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one logged chat message.
type Event struct {
	EventID    string    `json:"eventId"`
	Timestamp  time.Time `json:"timestamp"`
	CustomerID string    `json:"customerId"`
	SessionID  string    `json:"sessionId"`
	Channel    string    `json:"channel"` // chat_http or chat_ws
	Role       string    `json:"role"`
	AgentName  string    `json:"agentName,omitempty"`
	Content    string    `json:"content"`
}

// Logger accepts chat events for asynchronous persistence.
type Logger interface {
	Log(event Event)
	Close() error
}

// Config controls the file logger.
type Config struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// New returns a logger for the given config. Disabled config yields a noop
// logger.
func New(cfg Config, log *slog.Logger) (Logger, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}

	l := &fileLogger{
		dir:   cfg.Dir,
		log:   log,
		queue: make(chan Event, cfg.QueueSize),
		done:  make(chan struct{}),
		files: map[string]*os.File{},
	}
	go l.run()
	return l, nil
}

type fileLogger struct {
	dir   string
	log   *slog.Logger
	queue chan Event
	done  chan struct{}

	closeOnce sync.Once

	// files is touched only by the worker goroutine.
	files map[string]*os.File
}

// Log enqueues an event, stamping its ID and timestamp if unset. Never
// blocks; events are dropped when the queue is full.
func (l *fileLogger) Log(event Event) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case l.queue <- event:
	default:
		l.log.Warn("transcript queue full, dropping event",
			"session", event.SessionID, "customer", event.CustomerID)
	}
}

// Close stops the worker, draining any queued events first.
func (l *fileLogger) Close() error {
	l.closeOnce.Do(func() {
		close(l.queue)
		<-l.done
	})
	return nil
}

func (l *fileLogger) run() {
	defer close(l.done)
	defer func() {
		for _, f := range l.files {
			if err := f.Close(); err != nil {
				l.log.Warn("failed to close transcript file", "error", err)
			}
		}
	}()

	for event := range l.queue {
		l.write(event)
	}
}

func (l *fileLogger) write(event Event) {
	f, err := l.file(event.CustomerID, event.SessionID)
	if err != nil {
		l.log.Warn("failed to open transcript file", "error", err)
		return
	}

	line, err := json.Marshal(event)
	if err != nil {
		l.log.Warn("failed to marshal transcript event", "error", err)
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		l.log.Warn("failed to write transcript event", "error", err)
	}
}

func (l *fileLogger) file(customerID, sessionID string) (*os.File, error) {
	key := customerID + "/" + sessionID
	if f, ok := l.files[key]; ok {
		return f, nil
	}

	dir := filepath.Join(l.dir, sanitize(customerID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, sanitize(sessionID)+".ndjson"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	l.files[key] = f
	return f, nil
}

// sanitize keeps IDs safe to use as path segments.
func sanitize(s string) string {
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// Noop discards all events.
type Noop struct{}

func (Noop) Log(Event) {}

func (Noop) Close() error { return nil }

package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultRecorderSize is how many entries a console keeps on screen.
const DefaultRecorderSize = 50

// Entry is one recorded log line.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   string // key=value pairs, space separated
}

func (e Entry) String() string {
	s := e.Time.Format("15:04:05") + " " + e.Level.String() + " " + e.Message
	if e.Attrs != "" {
		s += " " + e.Attrs
	}
	return s
}

type ring struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

func (r *ring) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

func (r *ring) snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		out := make([]Entry, r.next)
		copy(out, r.entries[:r.next])
		return out
	}
	out := make([]Entry, 0, len(r.entries))
	out = append(out, r.entries[r.next:]...)
	return append(out, r.entries[:r.next]...)
}

func (r *ring) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
	r.next = 0
	r.full = false
}

// Recorder is a slog.Handler that keeps the most recent entries in memory
// and forwards every record to an optional next handler.
type Recorder struct {
	buf    *ring
	next   slog.Handler
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*Recorder)(nil)

// NewRecorder keeps the last n entries at level or above. next may be nil.
func NewRecorder(next slog.Handler, level slog.Leveler, n int) *Recorder {
	if n <= 0 {
		n = DefaultRecorderSize
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &Recorder{
		buf:   &ring{entries: make([]Entry, n)},
		next:  next,
		level: level,
	}
}

func (r *Recorder) Enabled(ctx context.Context, l slog.Level) bool {
	if l >= r.level.Level() {
		return true
	}
	return r.next != nil && r.next.Enabled(ctx, l)
}

func (r *Recorder) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level >= r.level.Level() {
		var b strings.Builder
		write := func(a slog.Attr) {
			if a.Equal(slog.Attr{}) {
				return
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%v", a.Key, a.Value.Resolve())
		}
		for _, a := range r.attrs {
			write(a)
		}
		rec.Attrs(func(a slog.Attr) bool {
			a.Key = r.qualify(a.Key)
			write(a)
			return true
		})
		r.buf.add(Entry{Time: rec.Time, Level: rec.Level, Message: rec.Message, Attrs: b.String()})
	}

	if r.next != nil && r.next.Enabled(ctx, rec.Level) {
		return r.next.Handle(ctx, rec)
	}
	return nil
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *r
	if r.next != nil {
		c.next = r.next.WithAttrs(attrs)
	}
	c.attrs = append([]slog.Attr(nil), r.attrs...)
	for _, a := range attrs {
		a.Key = r.qualify(a.Key)
		c.attrs = append(c.attrs, a)
	}
	return &c
}

// qualify prefixes key with the open groups.
func (r *Recorder) qualify(key string) string {
	if len(r.groups) == 0 {
		return key
	}
	return strings.Join(r.groups, ".") + "." + key
}

func (r *Recorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	c := *r
	if r.next != nil {
		c.next = r.next.WithGroup(name)
	}
	c.groups = append(append([]string(nil), r.groups...), name)
	return &c
}

// Entries returns the recorded entries, oldest first. Handlers derived
// with WithAttrs or WithGroup share the same buffer.
func (r *Recorder) Entries() []Entry {
	return r.buf.snapshot()
}

// Clear drops every recorded entry.
func (r *Recorder) Clear() {
	r.buf.clear()
}

// Package logger the console log handler
package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

const (
	red    = 31
	yellow = 33
	blue   = 36
	grey   = 38
)

var bufPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

func freeBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufPool.Put(buf)
}

// ConsoleHandler is a Handler that writes Records to an io.Writer as
// colored single lines.
type ConsoleHandler struct {
	mu           *sync.Mutex
	level        slog.Leveler
	w            io.Writer
	attrs, group string
	noColor      bool
}

// NewConsoleHandler creates a ConsoleHandler that writes to w,
// colors are disabled when NO_COLOR is set.
func NewConsoleHandler(w io.Writer, l slog.Leveler) *ConsoleHandler {
	return &ConsoleHandler{
		mu:      new(sync.Mutex),
		level:   l,
		w:       w,
		noColor: os.Getenv("NO_COLOR") != "",
	}
}

// Enabled reports whether the handler handles records at the given level.
// The handler ignores records whose level is lower.
func (c *ConsoleHandler) Enabled(_ context.Context, l slog.Level) bool {
	minLevel := slog.LevelInfo
	if c.level != nil {
		minLevel = c.level.Level()
	}
	return l >= minLevel
}

// WithAttrs returns a new ConsoleHandler whose attributes consists
// of h's attributes followed by attrs.
func (c *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	buf := bufPool.Get().(*bytes.Buffer)
	defer freeBuffer(buf)

	buf.WriteString(c.attrs)
	for _, attr := range attrs {
		c.writeAttr(buf, attr)
	}

	return &ConsoleHandler{
		mu:      c.mu,
		level:   c.level,
		w:       c.w,
		group:   c.group,
		attrs:   buf.String(),
		noColor: c.noColor,
	}
}

// WithGroup returns a new Handler with the given group appended to
// the receiver's existing groups.
func (c *ConsoleHandler) WithGroup(name string) slog.Handler {
	group := name
	if c.group != "" {
		group = c.group + "." + name
	}
	return &ConsoleHandler{
		mu:      c.mu,
		level:   c.level,
		w:       c.w,
		group:   group,
		attrs:   c.attrs,
		noColor: c.noColor,
	}
}

// Handle formats its argument Record as single line.
//
// If the Record's time is zero, the time is omitted.
//
// Each call to Handle results in a single serialized call to io.Writer.Write.
func (c *ConsoleHandler) Handle(_ context.Context, r slog.Record) (err error) {
	time := ""
	if !r.Time.IsZero() {
		time = r.Time.Format("15:04:05.000")
	}

	buf := bufPool.Get().(*bytes.Buffer)
	defer freeBuffer(buf)

	buf.WriteString(c.attrs)
	r.Attrs(func(a slog.Attr) bool {
		c.writeAttr(buf, a)
		return true
	})

	var levelColor = grey
	switch r.Level {
	case slog.LevelDebug:
		levelColor = blue
	case slog.LevelWarn:
		levelColor = yellow
	case slog.LevelError:
		levelColor = red
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.noColor {
		_, err = fmt.Fprintf(c.w, "[%s] %s %s %s\n", time, r.Level.String(), r.Message, buf.String())
		return
	}

	_, err = fmt.Fprintf(c.w, "[%s] \x1b[%dm%s \x1b[0m%s %s\n", time, levelColor, r.Level.String(), r.Message, buf.String())

	return
}

func (c *ConsoleHandler) writeAttr(buf *bytes.Buffer, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	if c.group != "" {
		buf.WriteString(c.group)
		buf.WriteByte('.')
	}
	buf.WriteString(a.Key)
	buf.WriteString(": ")
	buf.WriteString(a.Value.String())
	buf.WriteByte(' ')
}

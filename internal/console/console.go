// Package console is the debug text output used by the trace command and the
// optional live mutation echo. Callers do not rely on its return values.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Console writes formatted text to a sink. Concurrent Printf calls never
// interleave within one message.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// New returns a console writing to w (os.Stdout when nil).
func New(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{out: w}
}

// Printf formats and writes one message.
func (c *Console) Printf(format string, args ...any) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Fprintf(c.out, format, args...)
}

// SetOutput redirects subsequent output; nil restores os.Stdout.
func (c *Console) SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = w
}

var std = New(os.Stdout)

// Printf writes to the process-wide console.
func Printf(format string, args ...any) (int, error) {
	return std.Printf(format, args...)
}

// SetOutput redirects the process-wide console.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

package logging

import (
	"bytes"
	"context"
)

// NewTestContext returns a context carrying a logger configured with flags
// and the buffer it writes to.
func NewTestContext(flags Flags) (context.Context, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := NewLogger(buf)
	Configure(l, flags)
	return WithLogger(context.Background(), l), buf
}

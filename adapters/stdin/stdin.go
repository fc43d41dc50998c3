// Package stdin implements a core.Adapter that reads newline-delimited
// messages from an io.Reader (os.Stdin by default), grounded directly on
// original_source/missive/adapters/stdin.py.
package stdin

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/forgemsg/dispatch/core"
)

// Adapter reads one message per line. It has no concept of redelivery, so
// Nack is unsupported.
type Adapter struct {
	reader *bufio.Scanner
}

// New builds an Adapter reading from r.
func New(r io.Reader) *Adapter {
	return &Adapter{reader: bufio.NewScanner(r)}
}

// NewFromStdin builds an Adapter reading from os.Stdin.
func NewFromStdin() *Adapter {
	return New(os.Stdin)
}

// Ack is a no-op: stdin has no acknowledgement concept to forward to.
func (a *Adapter) Ack(context.Context, core.Message) error { return nil }

// Nack always fails: there is nothing to redeliver a line of stdin to.
func (a *Adapter) Nack(context.Context, core.Message) error {
	return &core.TransportFault{Op: "nack", Reason: "stdin adapter has no nack"}
}

// Run reads lines from the underlying reader, calling handle for each until
// EOF, shutdown signals, ctx is cancelled, or handle returns an error.
// shutdown may be nil, in which case the shutdown flag is not watched.
func (a *Adapter) Run(ctx context.Context, shutdown *core.ShutdownCoordinator, handle func(context.Context, core.Message) error) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		for a.reader.Scan() {
			line := append([]byte(nil), a.reader.Bytes()...)
			lines <- line
		}
		scanErr <- a.reader.Err()
	}()

	var done <-chan struct{}
	if shutdown != nil {
		done = shutdown.Done()
	}

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if err := handle(ctx, core.NewRawMessage(line)); err != nil {
				return err
			}
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

var _ core.Adapter = (*Adapter)(nil)

package rpc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
)

const maxMessageSize = 4 << 20

// StdioTransport reads newline-delimited JSON-RPC messages from in and writes
// replies to out, one message per line.
type StdioTransport struct {
	server *Server
	in     io.Reader
	out    io.Writer
	logger logger.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewStdioTransport creates a transport over the given streams
func NewStdioTransport(server *Server, in io.Reader, out io.Writer, log logger.Logger) *StdioTransport {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &StdioTransport{
		server: server,
		in:     in,
		out:    out,
		logger: log,
		done:   make(chan struct{}),
	}
}

// Serve handles messages until the input ends, ctx is cancelled or Close is
// called. Messages are answered in the order they arrive.
func (t *StdioTransport) Serve(ctx context.Context) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(t.in)
		scanner.Buffer(make([]byte, 64*1024), maxMessageSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-t.done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	t.logger.Info("Serving JSON-RPC on stdio", nil)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.done:
			return nil
		case err := <-readErr:
			select {
			case <-t.done:
				// Close closed the input under the reader
				return nil
			default:
			}
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			t.logger.Info("Input closed", nil)
			return nil
		case line := <-lines:
			reply, ok := t.server.Handle(ctx, line)
			if !ok {
				continue
			}
			if err := t.write(reply); err != nil {
				return err
			}
		}
	}
}

// Close stops Serve and closes the input when it supports closing
func (t *StdioTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		if c, ok := t.in.(io.Closer); ok {
			err = c.Close()
		}
	})
	return err
}

func (t *StdioTransport) write(msg []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.out.Write(append(msg, '\n')); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

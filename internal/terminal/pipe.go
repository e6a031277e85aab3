package terminal

import (
	"bytes"
	"io"
	"sync"

	"github.com/go-errors/errors"
)

// Pipe is an in-memory connector. Bytes written to its Far end are read by
// the session; bytes the session writes are collected for the far end.
type Pipe struct {
	name string
	r    *io.PipeReader

	mu       sync.Mutex
	sent     bytes.Buffer
	resizes  []Size
	writeErr error
	closed   bool
}

// Far is the program side of a Pipe.
type Far struct {
	p *Pipe
	w *io.PipeWriter
}

// NewPipe returns a connected Pipe and its far end.
func NewPipe(name string) (*Pipe, *Far) {
	r, w := io.Pipe()
	p := &Pipe{name: name, r: r}
	return p, &Far{p: p, w: w}
}

func (p *Pipe) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if errors.Is(err, io.ErrClosedPipe) {
		err = ErrClosed
	}
	return n, err
}

func (p *Pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrClosed
	}
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.sent.Write(b)
}

// Resize records the requested size.
func (p *Pipe) Resize(cols, rows int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.resizes = append(p.resizes, Size{Cols: cols, Rows: rows})
	return nil
}

func (p *Pipe) Name() string {
	return p.name
}

// Close unblocks any pending Read. It is safe to call more than once.
func (p *Pipe) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return p.r.Close()
}

// Closed reports whether the connector side has been closed.
func (p *Pipe) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Write delivers program output to the connector. It blocks until the
// session has read it.
func (f *Far) Write(b []byte) (int, error) {
	return f.w.Write(b)
}

// WriteString is Write for strings.
func (f *Far) WriteString(s string) (int, error) {
	return f.w.Write([]byte(s))
}

// Close ends the stream; the connector reads io.EOF.
func (f *Far) Close() error {
	return f.w.Close()
}

// CloseWithError ends the stream with a read error.
func (f *Far) CloseWithError(err error) error {
	return f.w.CloseWithError(err)
}

// Sent returns everything the connector has written so far.
func (f *Far) Sent() string {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()
	return f.p.sent.String()
}

// Resizes returns the sizes passed to Resize, in order.
func (f *Far) Resizes() []Size {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()
	return append([]Size(nil), f.p.resizes...)
}

// FailWrites makes subsequent connector writes return err.
func (f *Far) FailWrites(err error) {
	f.p.mu.Lock()
	defer f.p.mu.Unlock()
	f.p.writeErr = err
}

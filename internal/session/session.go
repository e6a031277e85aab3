// Package session runs one connector through a stream interpreter into a
// screen buffer.
//
// Each running session has a reader goroutine that owns the interpreter
// and a writer goroutine that drains a bounded keystroke queue. The buffer
// is the only state shared with the display host.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-errors/errors"
	"github.com/google/uuid"

	"github.com/abdullathedruid/vtsession/internal/screen"
	"github.com/abdullathedruid/vtsession/internal/terminal"
	"github.com/abdullathedruid/vtsession/internal/vt"
)

var (
	// ErrStopped is returned by operations on a stopped session.
	ErrStopped = errors.New("session stopped")
	// ErrNotStarted is returned when sending to a session that has not
	// been started.
	ErrNotStarted = errors.New("session not started")
	// ErrSizeLimit is returned for a resize beyond MaxCols or MaxRows.
	ErrSizeLimit = errors.New("size exceeds limit")
)

// State is a session's lifecycle state.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

const (
	readChunk = 32 * 1024

	defaultMaxCols     = 1000
	defaultMaxRows     = 500
	defaultResizeDelay = 100 * time.Millisecond
)

// Options configures a Session. Zero values take defaults.
type Options struct {
	Handle           Handle
	Name             string
	Cols, Rows       int
	MaxCols, MaxRows int
	Scrollback       int
	TabWidth         int
	WriteQueue       int
	MaxParams        int
	MaxSequenceBytes int
	// ResizeDelay is how long a resize queued mid-sequence waits for the
	// stream to go quiet before it is applied anyway.
	ResizeDelay time.Duration
	Emitter     Emitter
	Logger      *slog.Logger
}

func (o *Options) defaults() {
	if o.Cols <= 0 {
		o.Cols = 80
	}
	if o.Rows <= 0 {
		o.Rows = 24
	}
	if o.MaxCols <= 0 {
		o.MaxCols = defaultMaxCols
	}
	if o.MaxRows <= 0 {
		o.MaxRows = defaultMaxRows
	}
	if o.ResizeDelay <= 0 {
		o.ResizeDelay = defaultResizeDelay
	}
	if o.Scrollback < 0 {
		o.Scrollback = 0
	}
	if o.WriteQueue <= 0 {
		o.WriteQueue = 64
	}
	if o.Emitter == nil {
		o.Emitter = discard{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Status is what the reader last observed about the interpreter.
// RejectedResizes counts size requests from the stream that were out of
// bounds; DroppedReplies counts terminal replies lost to a full write
// queue.
type Status struct {
	Modes           vt.Modes
	Stats           vt.Stats
	Parse           vt.State
	RejectedResizes int
	DroppedReplies  int
}

// Frame is one redraw: the damaged rows, taken atomically with the damage
// reset, and how to show the cursor.
type Frame struct {
	screen.Frame
	CursorVisible bool
}

type resize struct {
	cols, rows int
	origin     Origin
}

// Session owns one connector, one interpreter and one buffer.
type Session struct {
	id     string
	handle Handle
	conn   terminal.Connector
	buf    *screen.Buffer
	interp *vt.Interpreter
	emit   Emitter
	log    *slog.Logger

	maxCols, maxRows int
	resizeDelay      time.Duration

	// feedMu serializes interpretation with resizes. Everything up to mu
	// is guarded by it.
	feedMu   sync.Mutex
	pending  *resize
	queued   []Event
	lastFeed time.Time
	rejected int
	dropped  int

	mu     sync.Mutex
	state  State
	name   string
	title  string
	err    error
	status Status

	writeCh   chan []byte
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup

	redrawQueued atomic.Bool
}

// New creates a session bound to conn. The session does not read until
// Start is called.
func New(conn terminal.Connector, opts Options) *Session {
	opts.defaults()
	s := &Session{
		id:      uuid.NewString(),
		handle:  opts.Handle,
		conn:    conn,
		buf:     screen.NewBuffer(min(opts.Cols, opts.MaxCols), min(opts.Rows, opts.MaxRows), opts.Scrollback),
		maxCols: opts.MaxCols,
		maxRows: opts.MaxRows,

		resizeDelay: opts.ResizeDelay,
		emit:    opts.Emitter,
		name:    opts.Name,
		writeCh: make(chan []byte, opts.WriteQueue),
		done:    make(chan struct{}),
	}
	if opts.TabWidth > 0 {
		s.buf.SetTabWidth(opts.TabWidth)
	}
	if s.name == "" {
		s.name = conn.Name()
	}
	s.log = opts.Logger.With("session", s.id, "handle", s.handle.String())
	s.interp = vt.New(s.buf, handler{s}, vt.Options{
		MaxParams:        opts.MaxParams,
		MaxSequenceBytes: opts.MaxSequenceBytes,
		Logger:           s.log,
	})
	s.status = Status{Modes: s.interp.Modes()}
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Handle returns the session's handle.
func (s *Session) Handle() Handle { return s.handle }

// Buffer returns the screen buffer. Callers must treat it as read-only.
func (s *Session) Buffer() *screen.Buffer { return s.buf }

// Connector returns the session's connector.
func (s *Session) Connector() terminal.Connector { return s.conn }

// Cursor returns the cursor position.
func (s *Session) Cursor() screen.Position { return s.buf.Cursor() }

// Done is closed when the session stops.
func (s *Session) Done() <-chan struct{} { return s.done }

// Name returns the protocol-set title, or the connector's name if the
// stream never set one.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.title != "" {
		return s.title
	}
	return s.name
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that stopped the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Status returns the interpreter state as of the last chunk.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Modes returns the terminal modes as of the last chunk.
func (s *Session) Modes() vt.Modes {
	return s.Status().Modes
}

// Start begins reading the connector. It is a no-op on a running session
// and returns ErrStopped on a stopped one.
func (s *Session) Start() error {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == StateStopped {
		return ErrStopped
	}

	s.startOnce.Do(func() {
		s.mu.Lock()
		if s.state != StateCreated {
			s.mu.Unlock()
			return
		}
		s.state = StateRunning
		s.mu.Unlock()

		s.wg.Add(2)
		go s.readLoop()
		go s.writeLoop()
		s.log.Info("session started", "name", s.Name())
	})

	if s.State() == StateStopped {
		return ErrStopped
	}
	return nil
}

// Stop closes the connector and stops the session. It is safe to call
// more than once and from any goroutine, including while a read is in
// flight. Exactly one Closed event is emitted.
func (s *Session) Stop() {
	s.shutdown(nil)
}

// Wait blocks until the reader and writer goroutines have exited.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) shutdown(err error) {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		started := s.state == StateRunning
		s.state = StateStopped
		s.err = err
		s.mu.Unlock()

		close(s.done)
		if cerr := s.conn.Close(); cerr != nil {
			s.log.Warn("closing connector", "err", cerr)
		}
		if err != nil {
			s.log.Warn("session stopped", "err", err)
		} else {
			s.log.Info("session stopped")
		}

		// The reader reports Closed once it has drained; a session that
		// never started has no reader.
		if !started {
			go s.emit.Emit(Closed{Handle: s.handle, Err: err})
		}
	})
}

func (s *Session) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) readLoop() {
	defer s.wg.Done()

	buf := make([]byte, readChunk)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 && !s.stopped() {
			s.feed(buf[:n])
		}
		if err != nil {
			switch {
			case s.stopped():
			case errors.Is(err, io.EOF):
				s.shutdown(nil)
			default:
				s.shutdown(errors.WrapPrefix(err, "read connector", 0))
			}
			break
		}
		if s.stopped() {
			break
		}
	}

	// A sequence left open at end of stream is discarded.
	s.feedMu.Lock()
	s.interp.Abort()
	status := s.interpStatus()
	s.feedMu.Unlock()

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	s.emit.Emit(Closed{Handle: s.handle, Err: s.Err()})
}

func (s *Session) writeLoop() {
	defer s.wg.Done()
	for {
		select {
		case p := <-s.writeCh:
			if _, err := s.conn.Write(p); err != nil {
				if !s.stopped() {
					s.shutdown(errors.WrapPrefix(err, "write connector", 0))
				}
				return
			}
		case <-s.done:
			return
		}
	}
}

// feed interprets one chunk. Events raised by the interpreter are queued
// and emitted once the feed lock is released.
func (s *Session) feed(data []byte) {
	s.feedMu.Lock()
	s.lastFeed = time.Now()
	fault := s.interpret(data)
	if s.pending != nil && s.interp.State() == vt.StateGround {
		r := *s.pending
		s.pending = nil
		s.applyResize(r)
	}
	status := s.interpStatus()
	events := s.queued
	s.queued = nil
	s.feedMu.Unlock()

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	for _, ev := range events {
		s.emit.Emit(ev)
	}
	if fault != nil {
		s.shutdown(fault)
		return
	}
	if !s.buf.DamagedRegion().Empty() {
		s.scheduleRedraw(false)
	}
}

// interpret runs the interpreter, converting a panic into an error so a
// fault stops this session instead of the process.
func (s *Session) interpret(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("interpreter fault: %v", r)
		}
	}()
	s.interp.Feed(data)
	return nil
}

// interpStatus must be called with feedMu held.
func (s *Session) interpStatus() Status {
	return Status{
		Modes:           s.interp.Modes(),
		Stats:           s.interp.Stats(),
		Parse:           s.interp.State(),
		RejectedResizes: s.rejected,
		DroppedReplies:  s.dropped,
	}
}

// Send queues input for the connector. It blocks while the queue is full.
func (s *Session) Send(p []byte) error {
	switch s.State() {
	case StateCreated:
		return ErrNotStarted
	case StateStopped:
		return ErrStopped
	}
	if len(p) == 0 {
		return nil
	}
	chunk := append([]byte(nil), p...)
	select {
	case s.writeCh <- chunk:
		return nil
	case <-s.done:
		return ErrStopped
	}
}

// Resize applies a Local resize: the buffer and the connector both take
// the new size. While the interpreter is inside a sequence the request is
// queued until it returns to Ground; a later request replaces it.
func (s *Session) Resize(cols, rows int) error {
	return s.requestResize(resize{cols, rows, OriginLocal})
}

// ApplyRemoteResize resizes the buffer only. The connector asked for this
// size and is not told again.
func (s *Session) ApplyRemoteResize(cols, rows int) error {
	return s.requestResize(resize{cols, rows, OriginRemote})
}

func (s *Session) requestResize(r resize) error {
	if s.State() == StateStopped {
		return ErrStopped
	}
	if r.cols > s.maxCols || r.rows > s.maxRows {
		return errors.WrapPrefix(ErrSizeLimit, fmt.Sprintf("%dx%d", r.cols, r.rows), 0)
	}
	s.feedMu.Lock()
	if s.interp.State() != vt.StateGround {
		s.pending = &r
		s.feedMu.Unlock()
		s.log.Debug("resize queued", "cols", r.cols, "rows", r.rows, "origin", r.origin.String())
		time.AfterFunc(s.resizeDelay, s.flushPending)
		return nil
	}
	err := s.applyResize(r)
	s.feedMu.Unlock()

	s.scheduleRedraw(true)
	return err
}

// flushPending applies a resize that is still queued once the stream has
// been quiet for resizeDelay. A program that stops mid-sequence may be
// waiting for input and would otherwise never see its new size.
func (s *Session) flushPending() {
	if s.stopped() {
		return
	}
	s.feedMu.Lock()
	if s.pending == nil {
		s.feedMu.Unlock()
		return
	}
	if idle := time.Since(s.lastFeed); idle < s.resizeDelay {
		s.feedMu.Unlock()
		time.AfterFunc(s.resizeDelay-idle, s.flushPending)
		return
	}
	r := *s.pending
	s.pending = nil
	s.applyResize(r)
	s.feedMu.Unlock()

	s.log.Debug("applied queued resize after idle", "cols", r.cols, "rows", r.rows)
	s.scheduleRedraw(true)
}

// applyResize must be called with feedMu held.
func (s *Session) applyResize(r resize) error {
	s.buf.Resize(r.cols, r.rows)
	s.log.Debug("resized", "cols", r.cols, "rows", r.rows, "origin", r.origin.String())
	if r.origin != OriginLocal {
		return nil
	}
	if err := s.conn.Resize(r.cols, r.rows); err != nil {
		s.log.Warn("resizing connector", "err", err)
		return errors.WrapPrefix(err, "resize connector", 0)
	}
	return nil
}

// Redraw takes the pending frame and resets damage in the same step.
// Mutations that land afterwards schedule a new Redraw event.
func (s *Session) Redraw() Frame {
	s.redrawQueued.Store(false)
	return Frame{
		Frame:         s.buf.TakeFrame(),
		CursorVisible: s.Modes().CursorVisible,
	}
}

// ResetDamage marks the buffer as already drawn.
func (s *Session) ResetDamage() {
	s.buf.ResetDamage()
}

// ForceRedraw damages every row and schedules a redraw.
func (s *Session) ForceRedraw() {
	s.buf.DamageAll()
	s.scheduleRedraw(true)
}

// scheduleRedraw emits a Redraw unless one is already outstanding. Calls
// from outside the reader emit asynchronously so callers on the host's
// event loop never wait on the host.
func (s *Session) scheduleRedraw(async bool) {
	if !s.redrawQueued.CompareAndSwap(false, true) {
		return
	}
	ev := Redraw{Handle: s.handle}
	if async {
		go s.emit.Emit(ev)
		return
	}
	s.emit.Emit(ev)
}

// handler receives interpreter effects on the reader goroutine with
// feedMu held.
type handler struct {
	s *Session
}

func (h handler) SetTitle(title string) {
	h.s.mu.Lock()
	changed := h.s.title != title
	h.s.title = title
	h.s.mu.Unlock()
	if changed {
		h.s.queued = append(h.s.queued, TitleChanged{Handle: h.s.handle, Title: title})
	}
}

func (h handler) Bell() {
	h.s.queued = append(h.s.queued, Bell{Handle: h.s.handle})
}

func (h handler) Reply(p []byte) {
	chunk := append([]byte(nil), p...)
	select {
	case h.s.writeCh <- chunk:
	default:
		h.s.dropped++
		h.s.log.Warn("dropping terminal reply, write queue full", "len", len(p))
	}
}

// RequestResize applies a size the program asked for. It runs on the
// sequence's final byte, so text later in the same chunk is laid out at
// the new size. A request outside the configured bounds is a protocol
// fault and is dropped.
func (h handler) RequestResize(cols, rows int) {
	s := h.s
	if cols <= 0 || rows <= 0 || cols > s.maxCols || rows > s.maxRows {
		s.rejected++
		s.log.Debug("rejected resize request", "cols", cols, "rows", rows, "max_cols", s.maxCols, "max_rows", s.maxRows)
		return
	}
	s.pending = nil
	s.applyResize(resize{cols, rows, OriginRemote})
	s.queued = append(s.queued, ResizeRequest{Handle: s.handle, Cols: cols, Rows: rows, Origin: OriginRemote})
}

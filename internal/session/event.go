package session

import "fmt"

// Handle identifies a session within its widget.
type Handle uint64

func (h Handle) String() string {
	return fmt.Sprintf("#%d", uint64(h))
}

// Origin says which side asked for a resize.
type Origin int

const (
	// OriginLocal means the display surface changed size; the child must
	// be told.
	OriginLocal Origin = iota
	// OriginRemote means the child or the protocol asked for dimensions;
	// the display surface must conform.
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

// Event is a notification for the display host.
type Event interface {
	Session() Handle
}

// Redraw asks the host to repaint the session's damaged rows. At most one
// is outstanding per session until the host calls Redraw.
type Redraw struct {
	Handle Handle
}

// TitleChanged reports a protocol-level title change.
type TitleChanged struct {
	Handle Handle
	Title  string
}

// ResizeRequest reports a negotiated size and which side asked for it.
type ResizeRequest struct {
	Handle     Handle
	Cols, Rows int
	Origin     Origin
}

// Bell reports BEL from the stream.
type Bell struct {
	Handle Handle
}

// Closed is emitted exactly once when a session stops. Err is nil for a
// clean end of stream or an explicit stop.
type Closed struct {
	Handle Handle
	Err    error
}

// Changed reports that the widget's current session changed. Handle is
// zero and Name empty when no session remains.
type Changed struct {
	Handle Handle
	Name   string
}

func (e Redraw) Session() Handle        { return e.Handle }
func (e TitleChanged) Session() Handle  { return e.Handle }
func (e ResizeRequest) Session() Handle { return e.Handle }
func (e Bell) Session() Handle          { return e.Handle }
func (e Closed) Session() Handle        { return e.Handle }
func (e Changed) Session() Handle       { return e.Handle }

// Emitter receives session events. Emit may block; sessions never call it
// while holding internal locks.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event)

func (f EmitterFunc) Emit(ev Event) { f(ev) }

type discard struct{}

func (discard) Emit(Event) {}

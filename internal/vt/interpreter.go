package vt

import (
	"log/slog"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/abdullathedruid/vtsession/internal/screen"
)

// Handler receives the effects of the stream that reach beyond the screen
// buffer. Calls are made synchronously from Feed.
type Handler interface {
	// SetTitle is called for OSC 0 and OSC 2.
	SetTitle(title string)
	// Bell is called for BEL.
	Bell()
	// Reply sends a response (DSR, DA) back to the far end.
	Reply(p []byte)
	// RequestResize is called when the stream asks for new dimensions.
	RequestResize(cols, rows int)
}

// NopHandler ignores every effect.
type NopHandler struct{}

func (NopHandler) SetTitle(string)        {}
func (NopHandler) Bell()                  {}
func (NopHandler) Reply([]byte)           {}
func (NopHandler) RequestResize(int, int) {}

const (
	// DefaultMaxParams bounds the number of CSI parameters.
	DefaultMaxParams = 16
	// DefaultMaxSequenceBytes bounds the length of any single sequence,
	// including OSC payloads.
	DefaultMaxSequenceBytes = 256

	maxParamValue    = 65535
	maxIntermediates = 2
)

// Options configures an Interpreter.
type Options struct {
	MaxParams        int
	MaxSequenceBytes int
	Logger           *slog.Logger
}

// Stats counts what the interpreter has consumed.
type Stats struct {
	Bytes       uint64
	Sequences   uint64
	Malformed   uint64
	Unsupported uint64
}

// Modes are the terminal modes a host or session may need to consult.
type Modes struct {
	AppCursorKeys  bool
	AppKeypad      bool
	AutoWrap       bool
	Insert         bool
	Origin         bool
	CursorVisible  bool
	BracketedPaste bool
	AltScreen      bool
}

func defaultModes() Modes {
	return Modes{AutoWrap: true, CursorVisible: true}
}

// Interpreter is a single-pass state machine over connector bytes. It is
// not safe for concurrent use; one reader goroutine owns it.
type Interpreter struct {
	buf     *screen.Buffer
	handler Handler
	log     *slog.Logger

	maxParams int
	maxSeq    int

	state State
	seqLen int
	bad    bool

	// CSI / ESC accumulators. params holds ';'-separated groups; ':'
	// appends a sub-parameter to the current group.
	params        [][]int
	haveParam     bool
	marker        byte
	intermediates []byte

	osc []byte

	utf8Buf []byte

	pen      screen.Style
	savedPen screen.Style
	modes    Modes
	charsets [2]charset
	shift    int

	stats Stats
}

// New creates an Interpreter that mutates buf and reports other effects to
// h. A nil h discards them.
func New(buf *screen.Buffer, h Handler, opts Options) *Interpreter {
	if h == nil {
		h = NopHandler{}
	}
	if opts.MaxParams <= 0 {
		opts.MaxParams = DefaultMaxParams
	}
	if opts.MaxSequenceBytes <= 0 {
		opts.MaxSequenceBytes = DefaultMaxSequenceBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Interpreter{
		buf:       buf,
		handler:   h,
		log:       opts.Logger,
		maxParams: opts.MaxParams,
		maxSeq:    opts.MaxSequenceBytes,
		params:    make([][]int, 0, opts.MaxParams),
		modes:     defaultModes(),
	}
}

// State returns the current parse state.
func (p *Interpreter) State() State {
	return p.state
}

// Modes returns the current terminal modes.
func (p *Interpreter) Modes() Modes {
	return p.modes
}

// Stats returns consumption counters.
func (p *Interpreter) Stats() Stats {
	return p.stats
}

// Pen returns the rendition applied to newly printed cells.
func (p *Interpreter) Pen() screen.Style {
	return p.pen
}

// Abort discards any partial sequence or UTF-8 rune and returns to Ground.
// It is used when the stream ends mid-sequence.
func (p *Interpreter) Abort() {
	if p.state != StateGround {
		p.fault("sequence aborted", p.state)
	}
	p.state = StateGround
	p.clear()
	p.utf8Buf = p.utf8Buf[:0]
}

// Reset returns the interpreter to its power-on state without touching the
// buffer.
func (p *Interpreter) Reset() {
	p.Abort()
	p.pen = screen.Style{}
	p.savedPen = screen.Style{}
	p.modes = defaultModes()
	p.charsets = [2]charset{}
	p.shift = 0
}

// Feed consumes a chunk of the stream. Sequences and runes may straddle
// chunk boundaries.
func (p *Interpreter) Feed(data []byte) {
	p.stats.Bytes += uint64(len(data))
	for _, b := range data {
		if p.state == StateGround && (b >= 0x80 || len(p.utf8Buf) > 0) {
			if p.feedUTF8(b) {
				continue
			}
		}
		p.step(b)
	}
}

// feedUTF8 handles a byte while a multi-byte rune may be in progress.
// It returns false when b should go through the table instead.
func (p *Interpreter) feedUTF8(b byte) bool {
	if b < 0x80 {
		// Truncated rune followed by ASCII.
		p.printRune(utf8.RuneError)
		p.utf8Buf = p.utf8Buf[:0]
		return false
	}
	p.utf8Buf = append(p.utf8Buf, b)
	if !utf8.FullRune(p.utf8Buf) {
		return true
	}
	r, size := utf8.DecodeRune(p.utf8Buf)
	var rest []byte
	if size < len(p.utf8Buf) {
		rest = append(rest, p.utf8Buf[size:]...)
	}
	p.utf8Buf = p.utf8Buf[:0]
	p.printRune(r)
	for _, c := range rest {
		p.feedUTF8(c)
	}
	return true
}

func (p *Interpreter) step(b byte) {
	prev := p.state
	t := table[p.state][b]

	if prev != StateGround {
		p.seqLen++
		if p.seqLen > p.maxSeq && !p.bad {
			p.overflow()
			t = table[p.state][b]
		}
	}

	p.state = t.next
	switch t.act {
	case actPrint:
		p.printRune(rune(b))
	case actExecute:
		p.execute(b)
	case actClear:
		if prev != StateGround && prev != StateEscapeStart {
			p.fault("sequence interrupted by ESC", prev)
		}
		p.clear()
	case actCollect:
		if len(p.intermediates) >= maxIntermediates {
			p.bad = true
		} else {
			p.intermediates = append(p.intermediates, b)
		}
	case actParam:
		p.param(b)
	case actMarker:
		p.marker = b
	case actEscDispatch:
		p.stats.Sequences++
		if p.bad {
			p.fault("oversized escape sequence", prev)
			break
		}
		p.escDispatch(b)
	case actCSIDispatch:
		p.stats.Sequences++
		if p.bad {
			p.fault("oversized control sequence", prev)
			break
		}
		p.csiDispatch(b)
	case actOSCStart:
		p.clear()
		p.osc = p.osc[:0]
	case actOSCPut:
		p.osc = append(p.osc, b)
	case actOSCEnd:
		p.stats.Sequences++
		p.oscDispatch()
	case actAbort:
		if prev != StateGround {
			p.fault("sequence cancelled", prev)
		}
		p.clear()
	case actDrop:
		p.stats.Sequences++
		p.fault("malformed control sequence", prev)
	}

	if p.state == StateGround && prev != StateGround ||
		p.state == StateEscapeStart && t.act != actClear {
		p.clear()
	}
}

// overflow handles a sequence that exceeded the length bound: CSI and ESC
// sequences are swallowed up to their final byte, string payloads are
// dropped up to their terminator.
func (p *Interpreter) overflow() {
	p.bad = true
	switch p.state {
	case StateCSIEntry, StateCollectingParams, StateCSIIntermediate:
		p.state = StateCSIIgnore
	case StateOSCString:
		p.state = StateStringIgnore
		p.osc = p.osc[:0]
		p.fault("oversized string", StateOSCString)
	}
}

func (p *Interpreter) clear() {
	p.params = p.params[:0]
	p.haveParam = false
	p.marker = 0
	p.intermediates = p.intermediates[:0]
	p.seqLen = 0
	p.bad = false
}

func (p *Interpreter) fault(reason string, state State) {
	p.stats.Malformed++
	p.log.Debug("discarding sequence", "reason", reason, "state", state.String())
}

func (p *Interpreter) unsupported(kind string, final byte) {
	p.stats.Unsupported++
	p.log.Debug("unsupported sequence",
		"kind", kind, "final", string(final), "marker", string(p.marker),
		"intermediates", string(p.intermediates), "params", p.params)
}

func (p *Interpreter) param(b byte) {
	switch b {
	case ';':
		if !p.haveParam {
			p.newGroup()
		}
		p.haveParam = false
	case ':':
		if !p.haveParam {
			p.newGroup()
			p.haveParam = true
		}
		g := &p.params[len(p.params)-1]
		*g = append(*g, 0)
	default:
		if !p.haveParam {
			p.newGroup()
			p.haveParam = true
		}
		g := p.params[len(p.params)-1]
		v := &g[len(g)-1]
		*v = *v*10 + int(b-'0')
		if *v > maxParamValue {
			*v = maxParamValue
		}
	}
}

func (p *Interpreter) newGroup() {
	if len(p.params) >= p.maxParams {
		// Further digits land in the last group; the sequence is dropped
		// at dispatch anyway.
		p.bad = true
		return
	}
	p.params = append(p.params, []int{0})
}

// arg returns parameter i, or def when it is absent or zero.
func (p *Interpreter) arg(i, def int) int {
	if i >= len(p.params) || p.params[i][0] == 0 {
		return def
	}
	return p.params[i][0]
}

func (p *Interpreter) printRune(r rune) {
	if r == 0x7F {
		return
	}
	r = p.charsets[p.shift].translate(r)
	w := runewidth.RuneWidth(r)
	if w == 0 {
		// Combining marks and other zero-width runes are not stored.
		return
	}
	p.buf.Print(screen.Cell{Rune: r, Width: uint8(w), Style: p.pen}, p.modes.AutoWrap, p.modes.Insert)
}

func (p *Interpreter) execute(b byte) {
	switch b {
	case 0x07:
		p.handler.Bell()
	case 0x08:
		p.buf.Backspace()
	case 0x09:
		p.buf.Tab(1)
	case 0x0A, 0x0B, 0x0C:
		p.buf.Index()
	case 0x0D:
		p.buf.CarriageReturn()
	case 0x0E:
		p.shift = 1
	case 0x0F:
		p.shift = 0
	}
}

func (p *Interpreter) blank() screen.Style {
	// Erased cells keep the background color only.
	return screen.Style{Bg: p.pen.Bg}
}

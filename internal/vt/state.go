// Package vt interprets a terminal control-sequence byte stream and applies
// it to a screen.Buffer.
//
// The parser is a table-driven state machine: every (state, byte) pair maps
// to an action and a next state. Malformed input is an ordinary transition
// back to Ground, never an error path.
package vt

// State is the interpreter's parse state.
type State uint8

const (
	// StateGround consumes printable text and C0 controls.
	StateGround State = iota
	// StateEscapeStart follows an ESC introducer.
	StateEscapeStart
	// StateCollectingIntermediate collects ESC intermediate bytes (0x20-0x2F).
	StateCollectingIntermediate
	// StateCSIEntry follows ESC [ before any parameter byte.
	StateCSIEntry
	// StateCollectingParams accumulates CSI parameter bytes.
	StateCollectingParams
	// StateCSIIntermediate collects CSI intermediate bytes.
	StateCSIIntermediate
	// StateCSIIgnore swallows the rest of a malformed CSI sequence.
	StateCSIIgnore
	// StateOSCString accumulates an operating system command payload.
	StateOSCString
	// StateStringIgnore swallows DCS, SOS, PM and APC payloads.
	StateStringIgnore

	numStates
)

var stateNames = [...]string{
	StateGround:                 "Ground",
	StateEscapeStart:            "EscapeStart",
	StateCollectingIntermediate: "CollectingIntermediate",
	StateCSIEntry:               "CSIEntry",
	StateCollectingParams:       "CollectingParams",
	StateCSIIntermediate:        "CSIIntermediate",
	StateCSIIgnore:              "CSIIgnore",
	StateOSCString:              "OSCString",
	StateStringIgnore:           "StringIgnore",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

type action uint8

const (
	actNone action = iota
	actPrint
	actExecute
	actClear
	actCollect
	actParam
	actMarker
	actEscDispatch
	actCSIDispatch
	actOSCStart
	actOSCPut
	actOSCEnd
	actAbort
	actDrop
)

type transition struct {
	act  action
	next State
}

// table is indexed by [state][byte].
var table [numStates][256]transition

func init() {
	for s := State(0); s < numStates; s++ {
		for b := 0; b < 256; b++ {
			table[s][b] = transition{actNone, s}
		}
	}

	set := func(s State, lo, hi int, act action, next State) {
		for b := lo; b <= hi; b++ {
			table[s][b] = transition{act, next}
		}
	}

	// C0 controls execute in every state except the string states.
	for _, s := range []State{
		StateGround, StateEscapeStart, StateCollectingIntermediate,
		StateCSIEntry, StateCollectingParams, StateCSIIntermediate, StateCSIIgnore,
	} {
		set(s, 0x00, 0x17, actExecute, s)
		set(s, 0x19, 0x19, actExecute, s)
		set(s, 0x1C, 0x1F, actExecute, s)
	}

	// Ground. Bytes >= 0x80 are routed to the UTF-8 decoder before the table.
	set(StateGround, 0x20, 0x7E, actPrint, StateGround)

	// ESC
	set(StateEscapeStart, 0x20, 0x2F, actCollect, StateCollectingIntermediate)
	set(StateEscapeStart, 0x30, 0x7E, actEscDispatch, StateGround)
	set(StateEscapeStart, '[', '[', actClear, StateCSIEntry)
	set(StateEscapeStart, ']', ']', actOSCStart, StateOSCString)
	for _, b := range []int{'P', 'X', '^', '_'} {
		set(StateEscapeStart, b, b, actNone, StateStringIgnore)
	}

	set(StateCollectingIntermediate, 0x20, 0x2F, actCollect, StateCollectingIntermediate)
	set(StateCollectingIntermediate, 0x30, 0x7E, actEscDispatch, StateGround)

	// CSI
	set(StateCSIEntry, 0x20, 0x2F, actCollect, StateCSIIntermediate)
	set(StateCSIEntry, 0x30, 0x3B, actParam, StateCollectingParams)
	set(StateCSIEntry, 0x3C, 0x3F, actMarker, StateCollectingParams)
	set(StateCSIEntry, 0x40, 0x7E, actCSIDispatch, StateGround)

	set(StateCollectingParams, 0x20, 0x2F, actCollect, StateCSIIntermediate)
	set(StateCollectingParams, 0x30, 0x3B, actParam, StateCollectingParams)
	set(StateCollectingParams, 0x3C, 0x3F, actNone, StateCSIIgnore)
	set(StateCollectingParams, 0x40, 0x7E, actCSIDispatch, StateGround)

	set(StateCSIIntermediate, 0x20, 0x2F, actCollect, StateCSIIntermediate)
	set(StateCSIIntermediate, 0x30, 0x3F, actNone, StateCSIIgnore)
	set(StateCSIIntermediate, 0x40, 0x7E, actCSIDispatch, StateGround)

	set(StateCSIIgnore, 0x40, 0x7E, actDrop, StateGround)

	// OSC: BEL or ESC terminates; everything printable is payload.
	set(StateOSCString, 0x20, 0xFF, actOSCPut, StateOSCString)
	set(StateOSCString, 0x07, 0x07, actOSCEnd, StateGround)

	set(StateStringIgnore, 0x07, 0x07, actNone, StateGround)

	// Anywhere: CAN and SUB abort, ESC restarts.
	for s := State(0); s < numStates; s++ {
		table[s][0x18] = transition{actAbort, StateGround}
		table[s][0x1A] = transition{actAbort, StateGround}
		table[s][0x1B] = transition{actClear, StateEscapeStart}
	}
	table[StateOSCString][0x1B] = transition{actOSCEnd, StateEscapeStart}
	table[StateStringIgnore][0x1B] = transition{actNone, StateEscapeStart}
}

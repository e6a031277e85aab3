// Package terminal provides connectors: byte-stream endpoints for the
// programs a session drives.
package terminal

import (
	"io"

	"github.com/go-errors/errors"
)

// ErrClosed is returned by connector operations after Close.
var ErrClosed = errors.New("connector closed")

// Connector is the byte-stream endpoint of a connected program. Read
// returns io.EOF once the far end has gone away, and Close must unblock a
// pending Read.
type Connector interface {
	io.ReadWriteCloser
	// Resize informs the far end of new dimensions.
	Resize(cols, rows int) error
	// Name identifies the connected program.
	Name() string
}

// Size is a grid dimension in cells.
type Size struct {
	Cols, Rows int
}

package cmd

import (
	"time"

	"github.com/abdullathedruid/vtsession/internal/config"
	"github.com/abdullathedruid/vtsession/internal/host"
	"github.com/abdullathedruid/vtsession/internal/session"
	"github.com/abdullathedruid/vtsession/internal/terminal"
	"github.com/abdullathedruid/vtsession/internal/widget"
)

// headless runs one session without a display. Redraw events are consumed
// so damage keeps flowing; nothing is drawn.
type headless struct {
	w      *widget.Widget
	s      *session.Session
	closed bool
}

func newHeadless(cfg *config.Config, conn terminal.Connector, cols, rows int) (*headless, error) {
	opts := host.SessionOptions(cfg)
	if cols > 0 {
		opts.Cols = cols
	}
	if rows > 0 {
		opts.Rows = rows
	}
	w := widget.New(widget.Options{EventQueue: cfg.EventQueue, Session: opts})
	s, err := w.CreateSession(conn, "")
	if err != nil {
		w.Close()
		conn.Close()
		return nil, err
	}
	if err := s.Start(); err != nil {
		w.Close()
		return nil, err
	}
	return &headless{w: w, s: s}, nil
}

// paste sends text as a paste after giving the program settle to start.
func (h *headless) paste(text string, settle time.Duration) error {
	if text == "" {
		return nil
	}
	if h.wait(settle) {
		return nil
	}
	return h.w.Paste(text)
}

// wait consumes events until the session closes or d passes. It reports
// whether the session closed.
func (h *headless) wait(d time.Duration) bool {
	if h.closed {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case ev := <-h.w.Events():
			switch ev := ev.(type) {
			case session.Redraw:
				h.w.Redraw(ev.Handle)
			case session.Closed:
				if ev.Handle == h.s.Handle() {
					h.closed = true
					return true
				}
			}
		case <-timer.C:
			return false
		}
	}
}

func (h *headless) close() {
	h.w.Close()
}

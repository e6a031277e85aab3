package screen

import (
	"fmt"
	"strings"
)

// Span is a half-open range of rows [Start, End).
type Span struct {
	Start, End int
}

// Len returns the number of rows covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Damage is the accumulating set of rows mutated since the last reset.
// Spans are kept sorted, non-overlapping and non-adjacent.
type Damage struct {
	spans []Span
}

// Add marks a single row.
func (d *Damage) Add(row int) {
	d.AddRange(row, row+1)
}

// AddRange marks rows [start, end).
func (d *Damage) AddRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end <= start {
		return
	}

	// Fast path: the common case is repeated writes to the last span.
	if n := len(d.spans); n > 0 {
		last := &d.spans[n-1]
		if start >= last.Start && start <= last.End {
			if end > last.End {
				last.End = end
			}
			return
		}
		if start > last.End {
			d.spans = append(d.spans, Span{start, end})
			return
		}
	}

	merged := make([]Span, 0, len(d.spans)+1)
	cur := Span{start, end}
	inserted := false
	for _, s := range d.spans {
		switch {
		case s.End < cur.Start:
			merged = append(merged, s)
		case cur.End < s.Start:
			if !inserted {
				merged = append(merged, cur)
				inserted = true
			}
			merged = append(merged, s)
		default:
			if s.Start < cur.Start {
				cur.Start = s.Start
			}
			if s.End > cur.End {
				cur.End = s.End
			}
		}
	}
	if !inserted {
		merged = append(merged, cur)
	}
	d.spans = merged
}

// Reset clears the set.
func (d *Damage) Reset() {
	d.spans = d.spans[:0]
}

// Empty reports whether no rows are damaged.
func (d Damage) Empty() bool {
	return len(d.spans) == 0
}

// Contains reports whether row is damaged.
func (d Damage) Contains(row int) bool {
	for _, s := range d.spans {
		if row < s.Start {
			return false
		}
		if row < s.End {
			return true
		}
	}
	return false
}

// Spans returns a copy of the damaged spans in ascending order.
func (d Damage) Spans() []Span {
	out := make([]Span, len(d.spans))
	copy(out, d.spans)
	return out
}

// Rows returns every damaged row in ascending order.
func (d Damage) Rows() []int {
	var rows []int
	for _, s := range d.spans {
		for r := s.Start; r < s.End; r++ {
			rows = append(rows, r)
		}
	}
	return rows
}

// Clone returns an independent copy.
func (d Damage) Clone() Damage {
	return Damage{spans: d.Spans()}
}

func (d Damage) String() string {
	if len(d.spans) == 0 {
		return "{}"
	}
	parts := make([]string, len(d.spans))
	for i, s := range d.spans {
		if s.Len() == 1 {
			parts[i] = fmt.Sprintf("%d", s.Start)
		} else {
			parts[i] = fmt.Sprintf("%d-%d", s.Start, s.End-1)
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

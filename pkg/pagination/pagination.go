// Package pagination computes which page controls a listing renders: literal
// page numbers around the current page and at both ends, with collapsed runs
// replaced by a single ellipsis on each side.
//
// With a radius of 2 and 20 pages:
//
//	[1] 2 3 ... 19 20
//	1 2 ... 8 9 [10] 11 12 ... 19 20
//	1 2 ... 18 19 [20]
package pagination

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultRange is the number of pages shown on each side of the current page,
// and at each end of the sequence.
const DefaultRange = 2

// ErrInvalidArgument is returned for a page count below one or a current page
// outside [1, total].
var ErrInvalidArgument = errors.New("invalid pagination argument")

// Kind tells a page entry from an ellipsis.
type Kind string

const (
	KindPage     Kind = "page"
	KindEllipsis Kind = "ellipsis"
)

// Position is the side of the visible window an ellipsis sits on.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
)

// Entry is one render instruction. Number is set for pages, Position for
// ellipses.
type Entry struct {
	Kind     Kind     `json:"kind"`
	Number   int      `json:"number,omitempty"`
	Position Position `json:"position,omitempty"`
}

// PageEntry returns a literal page entry.
func PageEntry(n int) Entry {
	return Entry{Kind: KindPage, Number: n}
}

// EllipsisEntry returns an ellipsis entry for the given side.
func EllipsisEntry(pos Position) Entry {
	return Entry{Kind: KindEllipsis, Position: pos}
}

// Plan is the ordered list of entries to render.
type Plan []Entry

// Pages returns the literal page numbers in order.
func (p Plan) Pages() []int {
	pages := make([]int, 0, len(p))
	for _, e := range p {
		if e.Kind == KindPage {
			pages = append(pages, e.Number)
		}
	}
	return pages
}

// Format renders the plan as text, bracketing current. Used by the CLI and in
// logs.
func (p Plan) Format(current int) string {
	parts := make([]string, 0, len(p))
	for _, e := range p {
		switch {
		case e.Kind == KindEllipsis:
			parts = append(parts, "...")
		case e.Number == current:
			parts = append(parts, "["+strconv.Itoa(e.Number)+"]")
		default:
			parts = append(parts, strconv.Itoa(e.Number))
		}
	}
	return strings.Join(parts, " ")
}

// Controls holds the state of the Prev/Next affordances.
type Controls struct {
	PrevDisabled bool `json:"prev_disabled"`
	NextDisabled bool `json:"next_disabled"`
}

// ControlsFor reports which edge controls are disabled for current of total.
func ControlsFor(current, total int) Controls {
	return Controls{
		PrevDisabled: current == 1,
		NextDisabled: current == total,
	}
}

// ComputeRange computes the plan using DefaultRange.
func ComputeRange(current, total int) (Plan, error) {
	return Compute(current, total, DefaultRange)
}

// Compute computes the plan for current of total pages with the given radius.
func Compute(current, total, radius int) (Plan, error) {
	if total < 1 {
		return nil, fmt.Errorf("%w: page count %d is below 1", ErrInvalidArgument, total)
	}
	if current < 1 || current > total {
		return nil, fmt.Errorf("%w: page %d outside [1, %d]", ErrInvalidArgument, current, total)
	}
	if radius < 0 {
		return nil, fmt.Errorf("%w: negative radius %d", ErrInvalidArgument, radius)
	}

	w := window{current: current, total: total, radius: radius}
	plan := make(Plan, 0, min(total, 4*radius+3))
	for p := 1; p <= total; p++ {
		plan = w.place(plan, p)
	}
	return plan, nil
}

// window carries the per-call ellipsis flags.
type window struct {
	current, total, radius int
	dotBefore, dotAfter    bool
}

func (w *window) place(plan Plan, p int) Plan {
	c, r, n := w.current, w.radius, w.total
	switch {
	case c <= 2*r+1 && p > c+r && p < n-r+1:
		return w.after(plan)
	case c > 2*r+1 && c < n-2*r:
		if p < c-r && p > r {
			return w.before(plan)
		}
		if p > c+r && p < n-r+1 {
			return w.after(plan)
		}
	case c >= n-2*r && p > r && p < c-r:
		return w.before(plan)
	}
	return append(plan, PageEntry(p))
}

func (w *window) before(plan Plan) Plan {
	if w.dotBefore {
		return plan
	}
	w.dotBefore = true
	return append(plan, EllipsisEntry(PositionBefore))
}

func (w *window) after(plan Plan) Plan {
	if w.dotAfter {
		return plan
	}
	w.dotAfter = true
	return append(plan, EllipsisEntry(PositionAfter))
}

package linelist

import (
	"fmt"
	"math"
	"strings"
)

// Window is a closed wavelength interval [Lo, Hi] with Lo < Hi.
type Window struct {
	Lo float64
	Hi float64
}

// Width returns Hi - Lo.
func (w Window) Width() float64 { return w.Hi - w.Lo }

// Contains reports whether x lies in the closed interval.
func (w Window) Contains(x float64) bool { return x >= w.Lo && x <= w.Hi }

// Overlaps reports whether the two closed intervals share any wavelength.
func (w Window) Overlaps(o Window) bool { return w.Lo <= o.Hi && o.Lo <= w.Hi }

func (w Window) String() string { return fmt.Sprintf("(%g, %g)", w.Lo, w.Hi) }

// FormatWindows renders windows in the bracketed form ParseWindows reads.
func FormatWindows(ws []Window) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.String()
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func (w Window) validate() error {
	if math.IsNaN(w.Lo) || math.IsNaN(w.Hi) || math.IsInf(w.Lo, 0) || math.IsInf(w.Hi, 0) {
		return fmt.Errorf("%w: %v has non-finite bound", ErrBadWindow, w)
	}

	if w.Lo >= w.Hi {
		return fmt.Errorf("%w: %v needs lo < hi", ErrBadWindow, w)
	}

	return nil
}

// Line describes one absorption line: the window integrated for the EW and
// the windows sampled for the local continuum.
type Line struct {
	Label       string
	Integration Window
	Continuum   []Window
}

// Overlaps reports whether any continuum window intersects the integration
// window. Such lines are accepted but usually indicate a mistake.
func (l Line) Overlaps() bool {
	for _, c := range l.Continuum {
		if c.Overlaps(l.Integration) {
			return true
		}
	}

	return false
}

func (l Line) validate() error {
	if err := l.Integration.validate(); err != nil {
		return err
	}

	if len(l.Continuum) == 0 {
		return fmt.Errorf("%w: no continuum windows", ErrBadContinuum)
	}

	for _, c := range l.Continuum {
		if err := c.validate(); err != nil {
			return fmt.Errorf("%w: continuum %w", ErrBadContinuum, err)
		}
	}

	return nil
}

func (l Line) clone() Line {
	l.Continuum = append([]Window(nil), l.Continuum...)
	return l
}

// List is an ordered, immutable set of line definitions. Labels,
// Integration and Continuum always have Len elements with matching
// index correspondence.
type List struct {
	lines []Line
}

// New validates lines and returns a List holding a private copy.
func New(lines []Line) (*List, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyList
	}

	out := make([]Line, len(lines))
	for i, l := range lines {
		if err := l.validate(); err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", i, l.Label, err)
		}

		out[i] = l.clone()
	}

	return &List{lines: out}, nil
}

// Len returns the number of lines.
func (l *List) Len() int { return len(l.lines) }

// Line returns a copy of the i-th line definition.
func (l *List) Line(i int) Line { return l.lines[i].clone() }

// Lines returns copies of all line definitions in list order.
func (l *List) Lines() []Line {
	out := make([]Line, len(l.lines))
	for i, line := range l.lines {
		out[i] = line.clone()
	}

	return out
}

// Labels returns the line labels in list order.
func (l *List) Labels() []string {
	out := make([]string, len(l.lines))
	for i, line := range l.lines {
		out[i] = line.Label
	}

	return out
}

// Integration returns the integration windows in list order.
func (l *List) Integration() []Window {
	out := make([]Window, len(l.lines))
	for i, line := range l.lines {
		out[i] = line.Integration
	}

	return out
}

// Continuum returns the continuum window groups in list order.
func (l *List) Continuum() [][]Window {
	out := make([][]Window, len(l.lines))
	for i, line := range l.lines {
		out[i] = append([]Window(nil), line.Continuum...)
	}

	return out
}

// Overlapping returns the indices of lines whose continuum windows
// intersect their integration window.
func (l *List) Overlapping() []int {
	var idx []int

	for i, line := range l.lines {
		if line.Overlaps() {
			idx = append(idx, i)
		}
	}

	return idx
}

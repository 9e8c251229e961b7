package linelist

import (
	"errors"
	"testing"
)

func TestNew_ValidatesAndCopies(t *testing.T) {
	cont := []Window{{1, 2}}
	l, err := New([]Line{{Label: "a", Integration: Window{3, 4}, Continuum: cont}})
	if err != nil {
		t.Fatal(err)
	}

	cont[0].Lo = -100
	if l.Line(0).Continuum[0].Lo != 1 {
		t.Errorf("List aliases caller continuum slice")
	}

	got := l.Continuum()
	got[0][0].Lo = -5
	if l.Line(0).Continuum[0].Lo != 1 {
		t.Errorf("Continuum accessor exposes internal state")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  error
	}{
		{"empty", nil, ErrEmptyList},
		{"bad integration", []Line{{Integration: Window{4, 3}, Continuum: []Window{{1, 2}}}}, ErrBadWindow},
		{"no continuum", []Line{{Integration: Window{3, 4}}}, ErrBadContinuum},
		{"bad continuum", []Line{{Integration: Window{3, 4}, Continuum: []Window{{2, 1}}}}, ErrBadContinuum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.lines); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOverlapping(t *testing.T) {
	l, err := New([]Line{
		{Label: "clean", Integration: Window{10, 20}, Continuum: []Window{{0, 5}, {25, 30}}},
		{Label: "overlap", Integration: Window{10, 20}, Continuum: []Window{{0, 5}, {18, 30}}},
	})
	if err != nil {
		t.Fatal(err)
	}

	idx := l.Overlapping()
	if len(idx) != 1 || idx[0] != 1 {
		t.Errorf("Overlapping: got %v, want [1]", idx)
	}
}

func TestWindow(t *testing.T) {
	w := Window{1, 3}
	if w.Width() != 2 {
		t.Errorf("Width: got %g", w.Width())
	}
	if !w.Contains(1) || !w.Contains(3) || w.Contains(3.0001) {
		t.Errorf("Contains: bounds must be inclusive")
	}
	if w.String() != "(1, 3)" {
		t.Errorf("String: got %q", w.String())
	}
}

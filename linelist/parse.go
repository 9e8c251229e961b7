package linelist

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Column names of the tabular line-list format.
const (
	ColLabel = "Label"
	ColBlue  = "i_b"
	ColRed   = "i_r"
	ColCont  = "cont"
)

var requiredColumns = []string{ColLabel, ColBlue, ColRed, ColCont}

// Load reads and parses the line list at path. A missing file is reported
// as a *ParseError wrapping fs.ErrNotExist.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	return parse(f, path)
}

// Parse reads a whitespace-delimited line-list table from r.
//
// The first non-blank line names the columns; it may be written as a
// comment ("# Label i_b i_r cont"). Label, i_b, i_r and cont are
// required, extra columns are ignored. cont holds a bracketed sequence of
// (lo, hi) pairs, for example [(15260.0,15264.5),(15275,15280)].
// Whitespace inside brackets does not separate fields.
func Parse(r io.Reader) (*List, error) {
	return parse(r, "")
}

func parse(r io.Reader, path string) (*List, error) {
	var (
		header map[string]int
		width  int
		lines  []Line
		lineNo int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		lineNo++
		text := strings.TrimSpace(sc.Text())

		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "#") {
			if header == nil {
				if h, n, ok := headerFromComment(text); ok {
					header, width = h, n
				}
			}

			continue
		}

		fields, err := splitFields(text)
		if err != nil {
			return nil, &ParseError{Path: path, Line: lineNo, Err: err}
		}

		if header == nil {
			h, err := readHeader(fields)
			if err != nil {
				return nil, &ParseError{Path: path, Line: lineNo, Err: err}
			}

			header, width = h, len(fields)

			continue
		}

		if len(fields) != width {
			return nil, &ParseError{
				Path: path, Line: lineNo,
				Err: fmt.Errorf("%w: got %d, header has %d", ErrFieldCount, len(fields), width),
			}
		}

		line, col, err := readRow(fields, header)
		if err != nil {
			return nil, &ParseError{Path: path, Line: lineNo, Column: col, Err: err}
		}

		lines = append(lines, line)
	}

	if err := sc.Err(); err != nil {
		return nil, &ParseError{Path: path, Line: lineNo, Err: err}
	}

	if header == nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: no header", ErrMissingColumn)}
	}

	if len(lines) == 0 {
		return nil, &ParseError{Path: path, Err: ErrEmptyList}
	}

	return &List{lines: lines}, nil
}

func headerFromComment(text string) (map[string]int, int, bool) {
	fields, err := splitFields(strings.TrimLeft(text, "# \t"))
	if err != nil {
		return nil, 0, false
	}

	h, err := readHeader(fields)
	if err != nil {
		return nil, 0, false
	}

	return h, len(fields), true
}

func readHeader(fields []string) (map[string]int, error) {
	h := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := h[f]; !dup {
			h[f] = i
		}
	}

	for _, c := range requiredColumns {
		if _, ok := h[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	return h, nil
}

func readRow(fields []string, header map[string]int) (Line, string, error) {
	blue, err := parseNumber(fields[header[ColBlue]])
	if err != nil {
		return Line{}, ColBlue, err
	}

	red, err := parseNumber(fields[header[ColRed]])
	if err != nil {
		return Line{}, ColRed, err
	}

	integration := Window{Lo: blue, Hi: red}
	if err := integration.validate(); err != nil {
		return Line{}, ColBlue, err
	}

	cont, err := ParseWindows(fields[header[ColCont]])
	if err != nil {
		return Line{}, ColCont, err
	}

	return Line{
		Label:       fields[header[ColLabel]],
		Integration: integration,
		Continuum:   cont,
	}, "", nil
}

// splitFields splits on whitespace that is not enclosed in () or [].
func splitFields(text string) ([]string, error) {
	var (
		fields []string
		depth  int
		start  = -1
	)

	for i, r := range text {
		switch {
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, r, i)
			}
		}

		if unicode.IsSpace(r) && depth == 0 {
			if start >= 0 {
				fields = append(fields, text[start:i])
				start = -1
			}

			continue
		}

		if start < 0 {
			start = i
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("%w: %d unclosed", ErrSyntax, depth)
	}

	if start >= 0 {
		fields = append(fields, text[start:])
	}

	return fields, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, s)
	}

	return v, nil
}

// ParseWindows parses a serialized sequence of (lo, hi) pairs such as
// "[(15000, 15010), (15030, 15040)]". The outer brackets may be square or
// round and a trailing comma is allowed. Anything else, including an
// empty sequence or a pair with lo >= hi, is rejected with ErrBadContinuum.
func ParseWindows(s string) ([]Window, error) {
	p := &windowParser{src: s}

	windows, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadContinuum, s, err)
	}

	return windows, nil
}

type windowParser struct {
	src string
	pos int
}

func (p *windowParser) parse() ([]Window, error) {
	p.skipSpace()

	closing, err := p.open()
	if err != nil {
		return nil, err
	}

	var out []Window

	for {
		p.skipSpace()

		if p.accept(closing) {
			break
		}

		w, err := p.pair()
		if err != nil {
			return nil, err
		}

		out = append(out, w)

		p.skipSpace()

		if p.accept(',') {
			continue
		}

		if !p.accept(closing) {
			return nil, p.errorf("expected ',' or %q", closing)
		}

		break
	}

	p.skipSpace()

	if p.pos != len(p.src) {
		return nil, p.errorf("trailing characters")
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("empty sequence")
	}

	return out, nil
}

func (p *windowParser) open() (byte, error) {
	switch {
	case p.accept('['):
		return ']', nil
	case p.accept('('):
		return ')', nil
	default:
		return 0, p.errorf("expected '[' or '('")
	}
}

func (p *windowParser) pair() (Window, error) {
	if !p.accept('(') && !p.accept('[') {
		return Window{}, p.errorf("expected '(' starting a pair")
	}

	closing := byte(')')
	if p.src[p.pos-1] == '[' {
		closing = ']'
	}

	lo, err := p.number()
	if err != nil {
		return Window{}, err
	}

	p.skipSpace()

	if !p.accept(',') {
		return Window{}, p.errorf("expected ',' between pair values")
	}

	hi, err := p.number()
	if err != nil {
		return Window{}, err
	}

	p.skipSpace()
	p.accept(',')
	p.skipSpace()

	if !p.accept(closing) {
		return Window{}, p.errorf("expected %q closing a pair", closing)
	}

	w := Window{Lo: lo, Hi: hi}
	if w.Lo >= w.Hi {
		return Window{}, fmt.Errorf("pair %v needs lo < hi", w)
	}

	return w, nil
}

func (p *windowParser) number() (float64, error) {
	p.skipSpace()

	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("0123456789+-.eE", p.src[p.pos]) >= 0 {
		p.pos++
	}

	if start == p.pos {
		return 0, p.errorf("expected number")
	}

	v, err := parseNumber(p.src[start:p.pos])
	if err != nil {
		return 0, err
	}

	return v, nil
}

func (p *windowParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *windowParser) accept(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}

	return false
}

func (p *windowParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

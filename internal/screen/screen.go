// Package screen is an in-memory screen model: two cell grids, a pen and a
// saved cursor. It keeps no scrollback.
package screen

import (
	"strings"

	"github.com/zjrosen/intermix/internal/dispatch"
)

// Buffer selects one of the two grids.
type Buffer int

const (
	Normal Buffer = iota
	Alternate
)

func (b Buffer) String() string {
	if b == Alternate {
		return "alternate"
	}
	return "normal"
}

// Cell is one character position.
type Cell struct {
	Rune rune
	Bold bool
}

var blank = Cell{Rune: ' '}

// Pen is the write position and the attributes applied to printed cells.
// Col may equal the column count after printing in the last column; the
// next print then wraps.
type Pen struct {
	Row, Col int
	Bold     bool
}

// Cursor is a saved pen position.
type Cursor struct {
	Row, Col int
}

type grid [][]Cell

func newGrid(rows, cols int) grid {
	g := make(grid, rows)
	for i := range g {
		g[i] = blankLine(cols)
	}
	return g
}

func blankLine(cols int) []Cell {
	line := make([]Cell, cols)
	for i := range line {
		line[i] = blank
	}
	return line
}

// Screen implements dispatch.Screen.
type Screen struct {
	rows, cols int
	term       string
	grids      [2]grid
	active     Buffer
	pen        Pen
	saved      Cursor
}

var _ dispatch.Screen = (*Screen)(nil)

// New returns a blank screen. Dimensions below 1 are raised to 1.
func New(rows, cols int, term string) *Screen {
	rows, cols = max(rows, 1), max(cols, 1)
	return &Screen{
		rows:  rows,
		cols:  cols,
		term:  term,
		grids: [2]grid{newGrid(rows, cols), newGrid(rows, cols)},
	}
}

func (s *Screen) grid() grid {
	return s.grids[s.active]
}

// Print writes r at the pen and advances it, wrapping at the right margin
// and scrolling at the bottom.
func (s *Screen) Print(r rune) {
	if s.pen.Col >= s.cols {
		s.pen.Col = 0
		s.MoveDown()
	}
	s.grid()[s.pen.Row][s.pen.Col] = Cell{Rune: r, Bold: s.pen.Bold}
	s.pen.Col++
}

func (s *Screen) SetBold(on bool) {
	s.pen.Bold = on
}

func (s *Screen) SaveCursor() {
	s.saved = Cursor{Row: s.pen.Row, Col: s.pen.Col}
}

// AlternateBuffer selects the alternate grid and clears it.
func (s *Screen) AlternateBuffer() {
	s.grids[Alternate] = newGrid(s.rows, s.cols)
	s.active = Alternate
}

func (s *Screen) NormalBuffer() {
	s.active = Normal
}

func (s *Screen) EraseInLine() {
	line := s.grid()[s.pen.Row]
	for c := min(s.pen.Col, s.cols-1); c < s.cols; c++ {
		line[c] = blank
	}
}

func (s *Screen) MoveLeft(full bool) {
	if full {
		s.pen.Col = 0
		return
	}
	s.pen.Col = max(min(s.pen.Col, s.cols-1)-1, 0)
}

// MoveDown moves the pen one row down, scrolling the active grid up by one
// line when the pen is on the last row.
func (s *Screen) MoveDown() {
	if s.pen.Row < s.rows-1 {
		s.pen.Row++
		return
	}
	g := s.grid()
	copy(g, g[1:])
	g[s.rows-1] = blankLine(s.cols)
}

func (s *Screen) Pen() Pen { return s.pen }

func (s *Screen) Saved() Cursor { return s.saved }

func (s *Screen) Buffer() Buffer { return s.active }

func (s *Screen) Size() (rows, cols int) { return s.rows, s.cols }

func (s *Screen) Term() string { return s.term }

// Cell returns the cell at row, col of the active grid. Out of range
// positions read as blank.
func (s *Screen) Cell(row, col int) Cell {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return blank
	}
	return s.grid()[row][col]
}

// Line returns row of the active grid with trailing blanks removed.
func (s *Screen) Line(row int) string {
	if row < 0 || row >= s.rows {
		return ""
	}
	var b strings.Builder
	for _, c := range s.grid()[row] {
		b.WriteRune(c.Rune)
	}
	return strings.TrimRight(b.String(), " ")
}

// Lines returns every row of the active grid.
func (s *Screen) Lines() []string {
	out := make([]string, s.rows)
	for i := range out {
		out[i] = s.Line(i)
	}
	return out
}

// Text returns the active grid as newline separated rows, without trailing
// empty rows.
func (s *Screen) Text() string {
	lines := s.Lines()
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}

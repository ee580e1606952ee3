package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/confetti/internal/render"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type cell struct {
	dots rune
	text rune
	fg   render.Color
}

// Canvas is a grid of braille cells, each with one foreground color. A cell
// holding text shows the text instead of its dots.
type Canvas struct {
	Width, Height int
	cells         [][]cell
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		cells:  make([][]cell, h),
	}
	for i := range c.cells {
		c.cells[i] = make([]cell, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) at(x, y int) (*cell, rune) {
	if x < 0 || y < 0 {
		return nil, 0
	}
	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return nil, 0
	}
	return &c.cells[row][col], rune(pixelMap[y%4][x%2])
}

// Set sets a dot at (x, y) in sub-pixel coordinates. The canvas size in
// sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if cl, bit := c.at(x, y); cl != nil {
		cl.dots |= bit
	}
}

// Paint sets a dot and gives its cell the color fg.
func (c *Canvas) Paint(x, y int, fg render.Color) {
	if cl, bit := c.at(x, y); cl != nil {
		cl.dots |= bit
		cl.fg = fg
	}
}

// Unset clears a dot.
func (c *Canvas) Unset(x, y int) {
	if cl, bit := c.at(x, y); cl != nil {
		cl.dots &^= bit
	}
}

// Clear resets every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		for j := range c.cells[i] {
			c.cells[i][j] = cell{dots: blank}
		}
	}
}

// ClearCells blanks the cells in [col0, col1) x [row0, row1).
func (c *Canvas) ClearCells(col0, row0, col1, row1 int) {
	for r := max(row0, 0); r < min(row1, c.Height); r++ {
		for cl := max(col0, 0); cl < min(col1, c.Width); cl++ {
			c.cells[r][cl] = cell{dots: blank}
		}
	}
}

// WriteText places s on row starting at col, clipped to the canvas.
func (c *Canvas) WriteText(col, row int, s string, fg render.Color) {
	if row < 0 || row >= c.Height {
		return
	}
	for i, r := range []rune(s) {
		x := col + i
		if x < 0 || x >= c.Width {
			continue
		}
		c.cells[row][x].text = r
		c.cells[row][x].fg = fg
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, fg render.Color) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Paint(x0, y0, fg)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *cell) glyph() rune {
	if c.text != 0 {
		return c.text
	}
	return c.dots
}

// String renders the canvas without colors.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		for i := range row {
			b.WriteRune(row[i].glyph())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render renders the canvas with per-cell colors on bg. Runs of cells with
// the same color share one style.
func (c *Canvas) Render(bg render.Color) string {
	base := lipgloss.NewStyle().Background(lipgloss.Color(bg.Hex()))
	var b strings.Builder
	var run strings.Builder
	for _, row := range c.cells {
		var cur render.Color
		started := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(base.Foreground(lipgloss.Color(cur.Hex())).Render(run.String()))
			run.Reset()
		}
		for i := range row {
			cl := &row[i]
			fg := cl.fg
			if cl.text == 0 && cl.dots == blank {
				fg = cur
			}
			if started && fg != cur {
				flush()
			}
			cur, started = fg, true
			run.WriteRune(cl.glyph())
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

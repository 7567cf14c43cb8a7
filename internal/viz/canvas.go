package viz

import (
	"math"
	"strings"
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

// Canvas is a braille dot grid that maps a rectangle of world coordinates
// onto Width*2 by Height*4 dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	minX, maxX float64
	minY, maxY float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		minX:   -1, maxX: 1,
		minY: -1, maxY: 1,
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Fit sets the world rectangle to cover every point with a margin, keeping
// one world unit the same size on both axes.
func (c *Canvas) Fit(xs, ys []float64) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return
	}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}

	span := math.Max(maxX-minX, maxY-minY) * 1.1
	if span < 1e-3 {
		span = 1e-3
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	aspect := float64(c.Height*4) / float64(c.Width*2)
	c.minX, c.maxX = cx-span/2, cx+span/2
	c.minY, c.maxY = cy-span*aspect/2, cy+span*aspect/2
	if aspect < 1 {
		c.minX, c.maxX = cx-span/(2*aspect), cx+span/(2*aspect)
		c.minY, c.maxY = cy-span/2, cy+span/2
	}
}

// Dot converts world coordinates to dot coordinates, y pointing down.
func (c *Canvas) Dot(x, y float64) (int, int) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	px := (x - c.minX) / (c.maxX - c.minX) * w
	py := (c.maxY - y) / (c.maxY - c.minY) * h
	return int(math.Round(px)), int(math.Round(py))
}

// Set lights the dot at (x, y) in dot coordinates. Out of range dots are
// ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Plot lights the dot nearest the world point.
func (c *Canvas) Plot(x, y float64) {
	c.Set(c.Dot(x, y))
}

// Path joins consecutive world points with lines.
func (c *Canvas) Path(xs, ys []float64) {
	for i := range xs {
		if i == 0 {
			c.Plot(xs[0], ys[0])
			continue
		}
		x0, y0 := c.Dot(xs[i-1], ys[i-1])
		x1, y1 := c.Dot(xs[i], ys[i])
		c.DrawLine(x0, y0, x1, y1)
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
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
		c.Set(x0, y0)
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

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

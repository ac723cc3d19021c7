package viz

import (
	"math"
	"strings"

	"github.com/san-kum/cartsim/internal/dynamo"
)

// Braille Patterns: 2x4 dots per character cell, unicode offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

// Set lights a pixel at (x, y) in sub-pixel coordinates. The canvas size in
// sub-pixels is (Width*2) x (Height*4).
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

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
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
			return
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
	var sb strings.Builder
	for _, row := range c.Grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DrawCartPole renders the cart on its rail and the pendulum rod. The view
// tracks the cart horizontally so long excursions stay on screen.
func (c *Canvas) DrawCartPole(x dynamo.State, pendulumLength float64) {
	subW := c.Width * 2
	subH := c.Height * 4

	railY := subH * 2 / 3
	scale := float64(subH) / 4.0 / math.Max(pendulumLength, 1e-9)

	// Rail.
	for px := 0; px < subW; px++ {
		c.Set(px, railY)
	}

	// The camera follows the cart, so the cart itself stays centered.
	cartX := subW / 2

	// Cart body: a small filled box on the rail.
	for dx := -4; dx <= 4; dx++ {
		for dy := -2; dy <= 0; dy++ {
			c.Set(cartX+dx, railY+dy)
		}
	}

	// Pendulum rod from the pivot; theta=0 hangs straight down.
	theta := x[1]
	tipX := cartX + int(pendulumLength*scale*math.Sin(theta))
	tipY := railY - 2 + int(pendulumLength*scale*math.Cos(theta))
	c.DrawLine(cartX, railY-2, tipX, tipY)

	// Bob.
	c.Set(tipX, tipY)
	c.Set(tipX+1, tipY)
	c.Set(tipX, tipY+1)
	c.Set(tipX-1, tipY)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

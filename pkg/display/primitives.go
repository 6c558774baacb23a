package display

import (
	"image"
	"image/color"
	"math"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// canvas wraps a 1-bit-style grayscale frame with the shape primitives
// the renderer draws with.
type canvas struct {
	img *image.Gray
	fg  color.Gray
	bg  color.Gray
}

// newCanvas allocates a frame for the given theme. The "black" theme is
// dark ink on a light background; "white" inverts it.
func newCanvas(theme string) *canvas {
	fg, bg := color.Gray{Y: 0x00}, color.Gray{Y: 0xFF}
	if theme == "white" {
		fg, bg = bg, fg
	}
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	c := &canvas{img: img, fg: fg, bg: bg}
	c.clear()
	return c
}

func (c *canvas) clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = c.bg.Y
	}
}

func (c *canvas) set(x, y int) {
	if x >= 0 && x < Width && y >= 0 && y < Height {
		c.img.SetGray(x, y, c.fg)
	}
}

// line draws with Bresenham's algorithm.
func (c *canvas) line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *canvas) rect(x0, y0, x1, y1 int) {
	c.line(x0, y0, x1, y0)
	c.line(x1, y0, x1, y1)
	c.line(x1, y1, x0, y1)
	c.line(x0, y1, x0, y0)
}

func (c *canvas) fillRect(x0, y0, x1, y1 int) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.set(x, y)
		}
	}
}

// ellipse traces the outline of the ellipse inscribed in the box.
func (c *canvas) ellipse(x0, y0, x1, y1 int) {
	c.arc(x0, y0, x1, y1, 0, 360)
}

func (c *canvas) fillEllipse(x0, y0, x1, y1 int) {
	cx, cy := float64(x0+x1)/2, float64(y0+y1)/2
	rx, ry := float64(x1-x0)/2, float64(y1-y0)/2
	if rx <= 0 || ry <= 0 {
		c.set(x0, y0)
		return
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			nx, ny := (float64(x)-cx)/rx, (float64(y)-cy)/ry
			if nx*nx+ny*ny <= 1.0 {
				c.set(x, y)
			}
		}
	}
}

// arc draws the part of the ellipse outline between two angles, degrees,
// measured clockwise from the positive x axis (screen coordinates).
func (c *canvas) arc(x0, y0, x1, y1 int, start, end float64) {
	cx, cy := float64(x0+x1)/2, float64(y0+y1)/2
	rx, ry := float64(x1-x0)/2, float64(y1-y0)/2
	if end < start {
		end += 360
	}
	// One-degree steps are plenty at panel resolution.
	for deg := start; deg <= end; deg++ {
		rad := deg * math.Pi / 180
		c.set(int(math.Round(cx+rx*math.Cos(rad))), int(math.Round(cy+ry*math.Sin(rad))))
	}
}

// polygon fills the polygon defined by pts using even-odd scanlines.
func (c *canvas) polygon(pts []image.Point) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	for y := minY; y <= maxY; y++ {
		var xs []float64
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if (a.Y <= y && b.Y > y) || (b.Y <= y && a.Y > y) {
				t := float64(y-a.Y) / float64(b.Y-a.Y)
				xs = append(xs, float64(a.X)+t*float64(b.X-a.X))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Ceil(xs[i])); x <= int(math.Floor(xs[i+1])); x++ {
				c.set(x, y)
			}
		}
	}
	// Edges, so thin triangles do not vanish between scanlines.
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		c.line(a.X, a.Y, b.X, b.Y)
	}
}

// text draws s with the top-left corner at (x, y).
func (c *canvas) text(x, y int, s string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(c.fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

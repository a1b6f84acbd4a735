// Package render draws a visibility graph and the solutions found on it
// into an image.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/lucasb-eyer/go-colorful"

	"potential-planner/geometry"
	"potential-planner/potential"
	"potential-planner/visgraph"
)

// Palette. Superseded solutions are drawn red under the newest one.
var (
	Background = colorful.Color{R: 1, G: 1, B: 1}
	Obstacle   = colorful.Hsv(210, 1, 0.6)
	Edge       = colorful.Hsv(0, 0, 0.8)
	Superseded = colorful.Hsv(0, 1, 1)
	Newest     = colorful.Hsv(90, 1, 1)
	StartColor = colorful.Hsv(20, 1, 1)
	GoalColor  = colorful.Hsv(60, 1, 1)
)

// Options sizes the output image.
type Options struct {
	Width   int
	Height  int
	Padding float64 // margin in pixels around the scene
	Edges   bool    // draw visibility edges
}

// DefaultOptions returns an 800x600 image with edges drawn.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 600, Padding: 20, Edges: true}
}

// Transform maps scene coordinates to pixels, y pointing up.
type Transform struct {
	minX, minY float64
	scale      float64
	offX, offY float64
	height     float64
}

// NewTransform fits the bounding box of pts into the image.
func NewTransform(pts []geometry.Point, opts Options) Transform {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if len(pts) == 0 {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	}
	dx, dy := math.Max(maxX-minX, 1e-9), math.Max(maxY-minY, 1e-9)

	w := float64(opts.Width) - 2*opts.Padding
	h := float64(opts.Height) - 2*opts.Padding
	scale := math.Min(w/dx, h/dy)

	return Transform{
		minX:   minX,
		minY:   minY,
		scale:  scale,
		offX:   opts.Padding + (w-dx*scale)/2,
		offY:   opts.Padding + (h-dy*scale)/2,
		height: float64(opts.Height),
	}
}

// Apply returns the pixel position of p.
func (t Transform) Apply(p geometry.Point) (float64, float64) {
	x := t.offX + (p.X-t.minX)*t.scale
	y := t.height - (t.offY + (p.Y-t.minY)*t.scale)
	return x, y
}

// Scene draws the obstacles, optionally the graph edges, every solution
// (older ones in the superseded color) and the two endpoints.
func Scene(g *visgraph.Graph, solutions []potential.Solution, opts Options) *image.RGBA {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	gc := draw2dimg.NewGraphicContext(img)

	gc.SetFillColor(Background)
	draw2dkit.Rectangle(gc, 0, 0, float64(opts.Width), float64(opts.Height))
	gc.Fill()

	if g == nil {
		return img
	}

	pts := make([]geometry.Point, 0, g.Len())
	for _, n := range g.Nodes() {
		pts = append(pts, n.Pos)
	}
	t := NewTransform(pts, opts)

	gc.SetFillColor(Obstacle)
	for _, obstacle := range g.Obstacles() {
		for i, v := range obstacle.Vertices {
			x, y := t.Apply(v)
			if i == 0 {
				gc.MoveTo(x, y)
			} else {
				gc.LineTo(x, y)
			}
		}
		gc.Close()
	}
	gc.Fill()

	if opts.Edges {
		gc.SetStrokeColor(Edge)
		gc.SetLineWidth(1)
		for _, line := range g.EdgeLines() {
			drawPolyline(gc, t, line)
		}
		gc.Stroke()
	}

	for i, sol := range solutions {
		c, width := Superseded, 2.0
		if i == len(solutions)-1 {
			c, width = Newest, 3.0
		}
		gc.SetStrokeColor(c)
		gc.SetLineWidth(width)
		drawPolyline(gc, t, sol.Path)
		gc.Stroke()
	}

	drawPoint(gc, t, g.Start().Pos, 6, StartColor)
	drawPoint(gc, t, g.Goal().Pos, 6, GoalColor)

	return img
}

func drawPolyline(gc *draw2dimg.GraphicContext, t Transform, pts []geometry.Point) {
	for i, p := range pts {
		x, y := t.Apply(p)
		if i == 0 {
			gc.MoveTo(x, y)
		} else {
			gc.LineTo(x, y)
		}
	}
}

func drawPoint(gc *draw2dimg.GraphicContext, t Transform, p geometry.Point, radius float64, c color.Color) {
	x, y := t.Apply(p)
	gc.SetFillColor(c)
	draw2dkit.Circle(gc, x, y, radius)
	gc.Fill()
}

// SaveFile writes img to path as PNG.
func SaveFile(path string, img image.Image) error {
	return draw2dimg.SaveToPngFile(path, img)
}

// Thumbnail scales img down to width pixels, keeping the aspect ratio.
// Images already at most width wide are returned as is.
func Thumbnail(img image.Image, width int) image.Image {
	if width <= 0 || img.Bounds().Dx() <= width {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

package selection

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	keptColor    = color.RGBA{0, 150, 60, 255}
	removedColor = color.RGBA{170, 170, 170, 255}
)

// CandidateRenderer draws candidate pairs in the XY plane of the map:
// each pair is a segment from its A vertex to its B vertex, with A marked
// by a dot. Kept candidates are green, removed ones grey.
type CandidateRenderer struct {
	Map         Map
	Kept        CandidatePairs
	Removed     CandidatePairs
	Scale       float64 // canvas mm per map meter
	Padding     float64 // canvas mm
	GridSpacing float64 // map meters; 0 disables the grid
	Resolution  canvas.Resolution
}

// NewCandidateRenderer splits before into kept and removed according to
// after and sets default styling
func NewCandidateRenderer(m Map, before, after CandidatePairs) *CandidateRenderer {
	remaining := make(map[CandidatePair]int, len(after))
	for _, p := range after {
		remaining[p]++
	}

	var removed CandidatePairs
	for _, p := range before {
		if remaining[p] > 0 {
			remaining[p]--
			continue
		}
		removed = append(removed, p)
	}

	return &CandidateRenderer{
		Map:         m,
		Kept:        after.Clone(),
		Removed:     removed,
		Scale:       10.0,
		Padding:     20.0,
		GridSpacing: 10.0,
		Resolution:  canvas.DPI(150),
	}
}

type renderSegment struct {
	pair CandidatePair
	a, b Position
	kept bool
}

func (r *CandidateRenderer) segments() []renderSegment {
	var segs []renderSegment
	add := func(pairs CandidatePairs, kept bool) {
		for _, p := range pairs {
			a, b := p.CandidateA.ClosestVertexID, p.CandidateB.ClosestVertexID
			if !r.Map.HasVertex(a) || !r.Map.HasVertex(b) {
				continue
			}
			segs = append(segs, renderSegment{
				pair: p,
				a:    r.Map.VertexPosition(a),
				b:    r.Map.VertexPosition(b),
				kept: kept,
			})
		}
	}
	// removed first so kept candidates are drawn on top
	add(r.Removed, false)
	add(r.Kept, true)
	return segs
}

func (r *CandidateRenderer) bounds(segs []renderSegment) orb.Bound {
	if len(segs) == 0 {
		return orb.Bound{}
	}
	mp := make(orb.MultiPoint, 0, 2*len(segs))
	for _, s := range segs {
		mp = append(mp, orb.Point{s.a.X, s.a.Y}, orb.Point{s.b.X, s.b.Y})
	}
	return mp.Bound()
}

func (r *CandidateRenderer) canvasSize(b orb.Bound) (float64, float64) {
	width := (b.Max.X()-b.Min.X())*r.Scale + 2*r.Padding
	height := (b.Max.Y()-b.Min.Y())*r.Scale + 2*r.Padding
	return width, height
}

// RenderToSVG writes the plot as an SVG to the provided writer
func (r *CandidateRenderer) RenderToSVG(w io.Writer) error {
	segs := r.segments()
	b := r.bounds(segs)
	width, height := r.canvasSize(b)

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, segs, b, width, height)
	if err := svgRenderer.Close(); err != nil {
		return fmt.Errorf("closing svg: %w", err)
	}
	return nil
}

// RenderToPNG writes the plot as a PNG with a text legend
func (r *CandidateRenderer) RenderToPNG(w io.Writer) error {
	segs := r.segments()
	b := r.bounds(segs)
	width, height := r.canvasSize(b)

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, segs, b, width, height)

	img := image.NewRGBA(rast.Bounds())
	draw.Draw(img, img.Bounds(), rast, rast.Bounds().Min, draw.Src)

	legend := fmt.Sprintf("kept: %d  removed: %d", len(r.Kept), len(r.Removed))
	drawText(img, 4, 14, legend, color.RGBA{0, 0, 0, 255})

	return png.Encode(w, img)
}

// canvasRenderer is implemented by both the svg and rasterizer renderers
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

func (r *CandidateRenderer) renderToCanvas(renderer canvasRenderer, segs []renderSegment, b orb.Bound, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(x, y float64) (float64, float64) {
		return (x-b.Min.X())*r.Scale + r.Padding, (y-b.Min.Y())*r.Scale + r.Padding
	}

	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		gridStyle.StrokeWidth = 0.2
		gridStyle.Dashes = []float64{1.0, 1.0}

		for x := math.Floor(b.Min.X()/r.GridSpacing) * r.GridSpacing; x <= b.Max.X(); x += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(x, b.Min.Y())
			x2, y2 := toCanvas(x, b.Max.Y())
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
		for y := math.Floor(b.Min.Y()/r.GridSpacing) * r.GridSpacing; y <= b.Max.Y(); y += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(b.Min.X(), y)
			x2, y2 := toCanvas(b.Max.X(), y)
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
	}

	for _, s := range segs {
		c := removedColor
		if s.kept {
			c = keptColor
		}

		lineStyle := canvas.DefaultStyle
		lineStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		lineStyle.Stroke = canvas.Paint{Color: c}
		lineStyle.StrokeWidth = 0.5
		if !s.kept {
			lineStyle.Dashes = []float64{1.5, 1.0}
		}

		ax, ay := toCanvas(s.a.X, s.a.Y)
		bx, by := toCanvas(s.b.X, s.b.Y)
		linePath := &canvas.Path{}
		linePath.MoveTo(ax, ay)
		linePath.LineTo(bx, by)
		renderer.RenderPath(linePath, lineStyle, canvas.Identity)

		dotStyle := canvas.DefaultStyle
		dotStyle.Fill = canvas.Paint{Color: c}
		dotStyle.Stroke = canvas.Paint{Color: canvas.Black}
		dotStyle.StrokeWidth = 0.2
		renderer.RenderPath(canvas.Circle(1.5).Translate(ax, ay), dotStyle, canvas.Identity)
	}
}

// drawText renders text onto an image at the specified position
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

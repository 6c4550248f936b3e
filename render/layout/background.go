package layout

import (
	"math"
	"strings"

	"github.com/interactive-solutions/go-showcase"
	"github.com/interactive-solutions/go-showcase/render/vector"
)

// maxTiles bounds pattern expansion for absurd background sizes.
const maxTiles = 20000

func parseTile(s string, w, h float64) (tw, th float64, ok bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, 0, false
	}

	tw, okW := parseLength(fields[0], w)
	th = tw
	okH := okW

	if len(fields) > 1 {
		th, okH = parseLength(fields[1], h)
	}

	if !okW || !okH || tw <= 0 || th <= 0 {
		return 0, 0, false
	}

	if (w/tw)*(h/th) > maxTiles {
		return 0, 0, false
	}

	return tw, th, true
}

func (r *run) paintBackground(st showcase.Style, x, y, w, h, opacity float64) {
	radius, _ := parseLength(st["borderRadius"], w)

	if c, ok := parseColor(st["backgroundColor"]); ok && c.A > 0 {
		r.doc.Add(vector.Rect{
			X: x, Y: y, W: w, H: h,
			Radius: radius,
			Fill:   vector.Solid{Color: vector.WithAlpha(c, opacity)},
		})
	}

	image := st["backgroundImage"]
	if image == "" {
		return
	}

	tw, th, tiled := parseTile(st["backgroundSize"], w, h)
	layers := splitTop(image, ',')

	// css paints the first layer on top
	for i := len(layers) - 1; i >= 0; i-- {
		g, ok := parseGradient(layers[i])
		if !ok {
			continue
		}

		if tiled {
			r.paintTiles(g, x, y, w, h, tw, th, opacity)
			continue
		}

		if g.kind == linearKind {
			r.doc.Add(vector.Rect{
				X: x, Y: y, W: w, H: h,
				Radius: radius,
				Fill:   linearPaint(g, x, y, w, h, opacity),
			})
		}
	}
}

// paintTiles expands a hard-edged gradient repeated every tw x th into
// discrete shapes: dots and rings for radial gradients, hairlines for linear
// ones.
func (r *run) paintTiles(g gradient, x, y, w, h, tw, th, opacity float64) {
	c, from, to, ok := solidStops(g)
	if !ok {
		return
	}
	c = vector.WithAlpha(c, opacity)

	switch g.kind {
	case radialKind:
		if from <= 0 {
			for ty := y; ty < y+h; ty += th {
				for tx := x; tx < x+w; tx += tw {
					r.doc.Add(vector.Circle{X: tx + tw*g.cx, Y: ty + th*g.cy, R: to, Fill: c})
				}
			}
			return
		}

		start, end := 0.0, 2*math.Pi
		switch {
		case g.cy >= 1:
			start, end = math.Pi, 2*math.Pi
		case g.cy <= 0:
			start, end = 0, math.Pi
		}

		for ty := y; ty < y+h; ty += th {
			for tx := x; tx < x+w; tx += tw {
				r.doc.Add(vector.Arc{
					X: tx + tw*g.cx, Y: ty + th*g.cy,
					R:     (from + to) / 2,
					Start: start, End: end,
					Width:  to - from,
					Stroke: c,
				})
			}
		}

	case linearKind:
		thickness := to - from
		if thickness <= 0 {
			thickness = 1
		}
		offset := from + thickness/2

		switch math.Mod(math.Mod(g.angle, 360)+360, 360) {
		case 180:
			for ty := y; ty < y+h; ty += th {
				r.doc.Add(vector.Line{X1: x, Y1: ty + offset, X2: x + w, Y2: ty + offset, Width: thickness, Stroke: c})
			}
		case 0:
			for ty := y; ty < y+h; ty += th {
				r.doc.Add(vector.Line{X1: x, Y1: ty + th - offset, X2: x + w, Y2: ty + th - offset, Width: thickness, Stroke: c})
			}
		case 90:
			for tx := x; tx < x+w; tx += tw {
				r.doc.Add(vector.Line{X1: tx + offset, Y1: y, X2: tx + offset, Y2: y + h, Width: thickness, Stroke: c})
			}
		case 270:
			for tx := x; tx < x+w; tx += tw {
				r.doc.Add(vector.Line{X1: tx + tw - offset, Y1: y, X2: tx + tw - offset, Y2: y + h, Width: thickness, Stroke: c})
			}
		}
	}
}

package layout

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/interactive-solutions/go-showcase/render/vector"
)

var namedColors = map[string]color.NRGBA{
	"transparent": {},
	"white":       {R: 255, G: 255, B: 255, A: 255},
	"black":       {A: 255},
}

// parseColor understands #rgb, #rrggbb, #rrggbbaa and a few keywords.
func parseColor(s string) (color.NRGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))

	if c, ok := namedColors[s]; ok {
		return c, true
	}

	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, false
	}

	digits := s[1:]
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}

	if len(digits) != 6 && len(digits) != 8 {
		return color.NRGBA{}, false
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}

	if len(digits) == 6 {
		v = v<<8 | 0xff
	}

	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, true
}

// parseLength resolves "12px", "12" or "50%" against base.
func parseLength(s string, base float64) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}

		return base * v / 100, true
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

func parseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}

	return v
}

type edges struct {
	top, right, bottom, left float64
}

func (e edges) horizontal() float64 { return e.left + e.right }
func (e edges) vertical() float64   { return e.top + e.bottom }

// parseEdges expands the one to four value css shorthand.
func parseEdges(s string, base float64) edges {
	fields := strings.Fields(s)
	values := make([]float64, 0, len(fields))

	for _, f := range fields {
		v, _ := parseLength(f, base)
		values = append(values, v)
	}

	switch len(values) {
	case 1:
		return edges{values[0], values[0], values[0], values[0]}
	case 2:
		return edges{values[0], values[1], values[0], values[1]}
	case 3:
		return edges{values[0], values[1], values[2], values[1]}
	case 4:
		return edges{values[0], values[1], values[2], values[3]}
	}

	return edges{}
}

// splitTop splits s on sep outside of parentheses.
func splitTop(s string, sep byte) []string {
	var parts []string

	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}

	return append(parts, strings.TrimSpace(s[start:]))
}

type gradientKind int

const (
	linearKind gradientKind = iota
	radialKind
)

type colorStop struct {
	color    color.NRGBA
	position float64
	hasPos   bool
}

type gradient struct {
	kind gradientKind

	// angle in degrees, css convention: 0 points up, 90 points right.
	angle float64

	// center of a radial gradient as fractions of the box.
	cx, cy float64

	stops []colorStop
}

var directions = map[string]float64{
	"to top":    0,
	"to right":  90,
	"to bottom": 180,
	"to left":   270,
}

// parseGradient understands linear-gradient and radial-gradient layers.
func parseGradient(layer string) (gradient, bool) {
	open := strings.IndexByte(layer, '(')
	if open < 0 || !strings.HasSuffix(layer, ")") {
		return gradient{}, false
	}

	g := gradient{angle: 180, cx: 0.5, cy: 0.5}

	switch strings.TrimSpace(layer[:open]) {
	case "linear-gradient":
		g.kind = linearKind
	case "radial-gradient":
		g.kind = radialKind
	default:
		return gradient{}, false
	}

	args := splitTop(layer[open+1:len(layer)-1], ',')
	if len(args) == 0 {
		return gradient{}, false
	}

	first := args[0]
	if g.kind == linearKind {
		if strings.HasSuffix(first, "deg") {
			g.angle = parseFloat(strings.TrimSuffix(first, "deg"), 180)
			args = args[1:]
		} else if angle, ok := directions[first]; ok {
			g.angle = angle
			args = args[1:]
		}
	} else if strings.HasPrefix(first, "circle") || strings.HasPrefix(first, "ellipse") {
		if at := strings.Index(first, " at "); at >= 0 {
			pos := strings.Fields(first[at+4:])
			if len(pos) == 2 {
				g.cx, _ = parseLength(pos[0], 1)
				g.cy, _ = parseLength(pos[1], 1)
			}
		}
		args = args[1:]
	}

	for _, arg := range args {
		fields := strings.Fields(arg)
		if len(fields) == 0 {
			continue
		}

		c, ok := parseColor(fields[0])
		if !ok {
			return gradient{}, false
		}

		stop := colorStop{color: c}
		if len(fields) > 1 {
			stop.position, stop.hasPos = parseLength(fields[1], 1)
		}

		g.stops = append(g.stops, stop)
	}

	return g, len(g.stops) > 0
}

// linearPaint maps a css angle onto a gradient line across the box, using
// the same gradient length rule browsers use.
func linearPaint(g gradient, x, y, w, h, opacity float64) vector.LinearGradient {
	rad := g.angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	length := math.Abs(w*dx) + math.Abs(h*dy)

	cx, cy := x+w/2, y+h/2

	paint := vector.LinearGradient{
		X0: cx - dx*length/2,
		Y0: cy - dy*length/2,
		X1: cx + dx*length/2,
		Y1: cy + dy*length/2,
	}

	n := len(g.stops)
	for i, s := range g.stops {
		offset := 0.0
		switch {
		case s.hasPos && length > 0:
			offset = s.position / length
		case n > 1:
			offset = float64(i) / float64(n-1)
		}

		paint.Stops = append(paint.Stops, vector.Stop{
			Offset: math.Max(0, math.Min(1, offset)),
			Color:  vector.WithAlpha(s.color, opacity),
		})
	}

	return paint
}

// solidStops returns the opaque band of a hard-edged gradient such as
// "c 1px, transparent 1px" or "transparent 18px, c 19px, c 21px, transparent 22px".
func solidStops(g gradient) (c color.NRGBA, from, to float64, ok bool) {
	for i, s := range g.stops {
		if s.color.A == 0 {
			continue
		}

		c = s.color
		from = 0
		if i > 0 {
			from = g.stops[i-1].position
		}

		to = s.position
		for j := i + 1; j < len(g.stops); j++ {
			if g.stops[j].color.A == 0 {
				break
			}
			to = g.stops[j].position
		}

		return c, from, to, true
	}

	return c, 0, 0, false
}

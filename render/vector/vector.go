// Package vector holds the resolution independent drawing produced by the
// layout engine and consumed by rasterizers.
package vector

import (
	"image/color"
)

// Fonts are the raw font files used to measure and draw text.
type Fonts struct {
	Regular []byte
	Bold    []byte
}

type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Paint is either a Solid color or a LinearGradient.
type Paint interface {
	isPaint()
}

type Solid struct {
	Color color.NRGBA
}

type LinearGradient struct {
	X0, Y0, X1, Y1 float64
	Stops          []Stop
}

func (Solid) isPaint()          {}
func (LinearGradient) isPaint() {}

// Op is one drawing instruction. Ops are painted in slice order.
type Op interface {
	isOp()
}

type Rect struct {
	X, Y, W, H float64
	Radius     float64
	Fill       Paint
}

type Circle struct {
	X, Y, R float64
	Fill    color.NRGBA
}

type Line struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Stroke         color.NRGBA
}

// Arc is a stroked circle segment, angles in radians.
type Arc struct {
	X, Y, R    float64
	Start, End float64
	Width      float64
	Stroke     color.NRGBA
}

// Text is a single line of text with Y on the baseline.
type Text struct {
	X, Y    float64
	Content string
	Size    float64
	Bold    bool
	Color   color.NRGBA
}

func (Rect) isOp()   {}
func (Circle) isOp() {}
func (Line) isOp()   {}
func (Arc) isOp()    {}
func (Text) isOp()   {}

type Document struct {
	Width  float64
	Height float64
	Fonts  Fonts
	Ops    []Op
}

func (d *Document) Add(op Op) {
	d.Ops = append(d.Ops, op)
}

// Texts returns the content of every text op in paint order.
func (d *Document) Texts() []string {
	var out []string
	for _, op := range d.Ops {
		if t, ok := op.(Text); ok {
			out = append(out, t.Content)
		}
	}

	return out
}

// WithAlpha scales the alpha channel of c by opacity.
func WithAlpha(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity >= 1 {
		return c
	}

	if opacity <= 0 {
		c.A = 0
		return c
	}

	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

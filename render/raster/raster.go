// Package raster draws vector documents into PNG images.
package raster

import (
	"bytes"
	"context"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/interactive-solutions/go-showcase/render/vector"
)

type Rasterizer struct{}

func New() *Rasterizer {
	return &Rasterizer{}
}

// Rasterize draws doc scaled uniformly so the image is width pixels wide.
func (r *Rasterizer) Rasterize(ctx context.Context, doc *vector.Document, width int) ([]byte, error) {
	if doc == nil || doc.Width <= 0 || doc.Height <= 0 {
		return nil, errors.New("empty document")
	}

	if width <= 0 {
		width = int(doc.Width)
	}

	scale := float64(width) / doc.Width
	height := int(doc.Height*scale + 0.5)

	dc := gg.NewContext(width, height)
	dc.Scale(scale, scale)

	fonts, err := newFontSet(doc.Fonts)
	if err != nil {
		return nil, err
	}
	defer fonts.Close()

	for i, op := range doc.Ops {
		// checking every op would dominate small documents
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if err := draw(dc, fonts, op); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := dc.EncodePNG(buf); err != nil {
		return nil, errors.Wrap(err, "failed to encode png")
	}

	return buf.Bytes(), nil
}

func draw(dc *gg.Context, fonts *fontSet, op vector.Op) error {
	switch o := op.(type) {
	case vector.Rect:
		switch p := o.Fill.(type) {
		case vector.Solid:
			dc.SetColor(p.Color)
		case vector.LinearGradient:
			grad := gg.NewLinearGradient(p.X0, p.Y0, p.X1, p.Y1)
			for _, s := range p.Stops {
				grad.AddColorStop(s.Offset, s.Color)
			}
			dc.SetFillStyle(grad)
		default:
			return nil
		}

		if o.Radius > 0 {
			dc.DrawRoundedRectangle(o.X, o.Y, o.W, o.H, o.Radius)
		} else {
			dc.DrawRectangle(o.X, o.Y, o.W, o.H)
		}
		dc.Fill()

	case vector.Circle:
		dc.SetColor(o.Fill)
		dc.DrawCircle(o.X, o.Y, o.R)
		dc.Fill()

	case vector.Line:
		dc.SetColor(o.Stroke)
		dc.SetLineWidth(o.Width)
		dc.DrawLine(o.X1, o.Y1, o.X2, o.Y2)
		dc.Stroke()

	case vector.Arc:
		dc.SetColor(o.Stroke)
		dc.SetLineWidth(o.Width)
		dc.DrawArc(o.X, o.Y, o.R, o.Start, o.End)
		dc.Stroke()

	case vector.Text:
		face, err := fonts.face(o.Bold, o.Size)
		if err != nil {
			return err
		}

		dc.SetFontFace(face)
		dc.SetColor(o.Color)
		dc.DrawString(o.Content, o.X, o.Y)
	}

	return nil
}

type faceKey struct {
	bold bool
	size float64
}

type fontSet struct {
	regular *opentype.Font
	bold    *opentype.Font
	cache   map[faceKey]font.Face
}

func newFontSet(fonts vector.Fonts) (*fontSet, error) {
	fs := &fontSet{cache: make(map[faceKey]font.Face)}

	if len(fonts.Regular) == 0 {
		return fs, nil
	}

	var err error
	if fs.regular, err = opentype.Parse(fonts.Regular); err != nil {
		return nil, errors.Wrap(err, "failed to parse regular font")
	}

	fs.bold = fs.regular
	if len(fonts.Bold) > 0 {
		if fs.bold, err = opentype.Parse(fonts.Bold); err != nil {
			return nil, errors.Wrap(err, "failed to parse bold font")
		}
	}

	return fs, nil
}

// face returns a face for size in document units. gg applies the context
// transform to glyph masks, so faces stay at document size.
func (fs *fontSet) face(bold bool, size float64) (font.Face, error) {
	if fs.regular == nil {
		return nil, errors.New("document has text but no fonts")
	}

	key := faceKey{bold: bold, size: size}
	if f, ok := fs.cache[key]; ok {
		return f, nil
	}

	src := fs.regular
	if bold {
		src = fs.bold
	}

	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create font face")
	}

	fs.cache[key] = f
	return f, nil
}

func (fs *fontSet) Close() {
	for _, f := range fs.cache {
		_ = f.Close()
	}
}

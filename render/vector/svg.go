package vector

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"
)

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func alpha(c color.NRGBA) string {
	return fmt.Sprintf("%.3g", float64(c.A)/255)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// EncodeSVG writes the document as a standalone SVG file. Text uses the
// generic font families since the font files are not embedded.
func (d *Document) EncodeSVG(out io.Writer) error {
	w := bufio.NewWriter(out)

	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`,
		d.Width, d.Height, d.Width, d.Height)
	w.WriteString("\n")

	gradients := 0

	for _, op := range d.Ops {
		switch o := op.(type) {
		case Rect:
			fill := ""
			switch p := o.Fill.(type) {
			case Solid:
				fill = fmt.Sprintf(`fill="%s" fill-opacity="%s"`, hex(p.Color), alpha(p.Color))
			case LinearGradient:
				id := fmt.Sprintf("g%d", gradients)
				gradients++

				fmt.Fprintf(w, `<defs><linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%g" y1="%g" x2="%g" y2="%g">`,
					id, p.X0, p.Y0, p.X1, p.Y1)
				for _, s := range p.Stops {
					fmt.Fprintf(w, `<stop offset="%g" stop-color="%s" stop-opacity="%s"/>`,
						s.Offset, hex(s.Color), alpha(s.Color))
				}
				w.WriteString("</linearGradient></defs>\n")

				fill = fmt.Sprintf(`fill="url(#%s)"`, id)
			default:
				continue
			}

			fmt.Fprintf(w, `<rect x="%g" y="%g" width="%g" height="%g" rx="%g" %s/>`,
				o.X, o.Y, o.W, o.H, o.Radius, fill)

		case Circle:
			fmt.Fprintf(w, `<circle cx="%g" cy="%g" r="%g" fill="%s" fill-opacity="%s"/>`,
				o.X, o.Y, o.R, hex(o.Fill), alpha(o.Fill))

		case Line:
			fmt.Fprintf(w, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-opacity="%s" stroke-width="%g"/>`,
				o.X1, o.Y1, o.X2, o.Y2, hex(o.Stroke), alpha(o.Stroke), o.Width)

		case Arc:
			x1 := o.X + o.R*math.Cos(o.Start)
			y1 := o.Y + o.R*math.Sin(o.Start)
			x2 := o.X + o.R*math.Cos(o.End)
			y2 := o.Y + o.R*math.Sin(o.End)
			large := 0
			if math.Abs(o.End-o.Start) > math.Pi {
				large = 1
			}

			fmt.Fprintf(w, `<path d="M %g %g A %g %g 0 %d 1 %g %g" fill="none" stroke="%s" stroke-opacity="%s" stroke-width="%g"/>`,
				x1, y1, o.R, o.R, large, x2, y2, hex(o.Stroke), alpha(o.Stroke), o.Width)

		case Text:
			weight := 400
			if o.Bold {
				weight = 700
			}

			fmt.Fprintf(w, `<text x="%g" y="%g" font-family="sans-serif" font-size="%g" font-weight="%d" fill="%s" fill-opacity="%s">%s</text>`,
				o.X, o.Y, o.Size, weight, hex(o.Color), alpha(o.Color), escape(o.Content))
		}

		w.WriteString("\n")
	}

	w.WriteString("</svg>\n")

	return w.Flush()
}

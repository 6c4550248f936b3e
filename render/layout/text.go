package layout

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type faceKey struct {
	bold bool
	size float64
}

// faces parses the font files once per layout and caches sized faces.
type faces struct {
	regular *opentype.Font
	bold    *opentype.Font
	cache   map[faceKey]font.Face
}

func newFaces(regular, bold []byte) (*faces, error) {
	if len(regular) == 0 {
		return nil, errors.New("regular font is required")
	}

	r, err := opentype.Parse(regular)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse regular font")
	}

	f := &faces{regular: r, bold: r, cache: make(map[faceKey]font.Face)}

	if len(bold) > 0 {
		b, err := opentype.Parse(bold)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse bold font")
		}
		f.bold = b
	}

	return f, nil
}

func (f *faces) face(bold bool, size float64) (font.Face, error) {
	key := faceKey{bold: bold, size: size}
	if face, ok := f.cache[key]; ok {
		return face, nil
	}

	src := f.regular
	if bold {
		src = f.bold
	}

	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %gpx face", size)
	}

	f.cache[key] = face
	return face, nil
}

func (f *faces) Close() {
	for _, face := range f.cache {
		_ = face.Close()
	}
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func measure(face font.Face, s string) float64 {
	return toFloat(font.MeasureString(face, s))
}

// wrap breaks text into lines no wider than limit, splitting on spaces. A
// single word wider than limit gets a line of its own.
func wrap(face font.Face, text string, limit float64) []string {
	var lines []string

	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if measure(face, candidate) <= limit {
				line = candidate
				continue
			}

			lines = append(lines, line)
			line = word
		}

		lines = append(lines, line)
	}

	return lines
}

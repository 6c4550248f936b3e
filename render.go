package showcase

import (
	"context"

	"github.com/interactive-solutions/go-showcase/render/vector"
)

type FontSource interface {
	Load(ctx context.Context) (vector.Fonts, error)
}

type LayoutEngine interface {
	Layout(ctx context.Context, root *Node, fonts vector.Fonts, width, height int) (*vector.Document, error)
}

type Rasterizer interface {
	Rasterize(ctx context.Context, doc *vector.Document, width int) ([]byte, error)
}

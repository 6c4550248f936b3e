// Package layout computes positions for a card box tree and flattens it into
// a vector document. It implements the small flexbox subset the card builder
// emits: column and row flow, alignment, flex growth, absolute overlays,
// padding, margins and wrapped text.
package layout

import (
	"context"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/interactive-solutions/go-showcase"
	"github.com/interactive-solutions/go-showcase/render/vector"
)

const (
	defaultFontSize   = 16.0
	defaultLineHeight = 1.2
)

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Layout positions root on a width x height canvas.
func (e *Engine) Layout(ctx context.Context, root *showcase.Node, fonts vector.Fonts, width, height int) (*vector.Document, error) {
	if root == nil {
		return nil, errors.New("nothing to lay out")
	}

	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid canvas size %dx%d", width, height)
	}

	f, err := newFaces(fonts.Regular, fonts.Bold)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := &run{
		ctx:   ctx,
		faces: f,
		doc: &vector.Document{
			Width:  float64(width),
			Height: float64(height),
			Fonts:  fonts,
		},
	}

	if err := r.place(root, 0, 0, float64(width), float64(height), 1); err != nil {
		return nil, err
	}

	return r.doc, nil
}

type run struct {
	ctx   context.Context
	faces *faces
	doc   *vector.Document
}

type textStyle struct {
	size       float64
	bold       bool
	lineHeight float64
	align      string
}

func isAbsolute(n *showcase.Node) bool {
	return n.Props.Style["position"] == "absolute"
}

func isColumn(st showcase.Style) bool {
	return st["flexDirection"] == "column"
}

func parseText(st showcase.Style) textStyle {
	ts := textStyle{size: defaultFontSize, align: st["textAlign"]}

	if v, ok := parseLength(st["fontSize"], defaultFontSize); ok && v > 0 {
		ts.size = v
	}

	switch st["fontWeight"] {
	case "bold", "600", "700", "800", "900":
		ts.bold = true
	}

	ts.lineHeight = ts.size * defaultLineHeight

	lh := st["lineHeight"]
	if strings.HasSuffix(lh, "px") {
		if v, ok := parseLength(lh, ts.size); ok && v > 0 {
			ts.lineHeight = v
		}
	} else if m := parseFloat(lh, 0); m > 0 {
		ts.lineHeight = ts.size * m
	}

	return ts
}

// size returns the outer size n wants when offered availW x availH.
func (r *run) size(n *showcase.Node, availW, availH float64) (float64, float64, error) {
	st := n.Props.Style
	pad := parseEdges(st["padding"], availW)

	w, hasW := parseLength(st["width"], availW)
	h, hasH := parseLength(st["height"], availH)

	limit := availW
	if hasW {
		limit = w
	}

	if mw, ok := parseLength(st["maxWidth"], availW); ok && mw < limit {
		limit = mw
		if hasW {
			w = mw
		}
	}

	if n.IsText() {
		ts := parseText(st)

		face, err := r.faces.face(ts.bold, ts.size)
		if err != nil {
			return 0, 0, err
		}

		lines := wrap(face, n.Props.Text, limit-pad.horizontal())

		widest := 0.0
		for _, line := range lines {
			widest = math.Max(widest, measure(face, line))
		}

		if !hasW {
			w = widest + pad.horizontal()
		}

		if !hasH {
			h = float64(len(lines))*ts.lineHeight + pad.vertical()
		}

		return w, h, nil
	}

	innerW := limit - pad.horizontal()
	innerH := availH - pad.vertical()
	if hasH {
		innerH = h - pad.vertical()
	}

	contentW, contentH := 0.0, 0.0
	column := isColumn(st)

	for _, child := range n.Props.Children {
		if isAbsolute(child) {
			continue
		}

		cw, ch, err := r.size(child, innerW, innerH)
		if err != nil {
			return 0, 0, err
		}

		mt, mb := margins(child.Props.Style, innerW)

		if column {
			contentW = math.Max(contentW, cw)
			contentH += ch + mt + mb
		} else {
			contentW += cw
			contentH = math.Max(contentH, ch+mt+mb)
		}
	}

	if !hasW {
		w = math.Min(contentW+pad.horizontal(), limit)
	}

	if !hasH {
		h = contentH + pad.vertical()
	}

	return w, h, nil
}

func margins(st showcase.Style, base float64) (top, bottom float64) {
	top, _ = parseLength(st["marginTop"], base)
	bottom, _ = parseLength(st["marginBottom"], base)

	return top, bottom
}

// place lays n out in the given outer box and emits its drawing ops.
func (r *run) place(n *showcase.Node, x, y, w, h, opacity float64) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	st := n.Props.Style
	if v, ok := st["opacity"]; ok {
		opacity *= math.Max(0, math.Min(1, parseFloat(v, 1)))
	}

	r.paintBackground(st, x, y, w, h, opacity)

	pad := parseEdges(st["padding"], w)
	ix, iy := x+pad.left, y+pad.top
	iw, ih := w-pad.horizontal(), h-pad.vertical()

	if n.IsText() {
		return r.paintText(n, ix, iy, iw, opacity)
	}

	var flow []*showcase.Node

	for _, child := range n.Props.Children {
		if !isAbsolute(child) {
			flow = append(flow, child)
			continue
		}

		if err := r.placeAbsolute(child, x, y, w, h, opacity); err != nil {
			return err
		}
	}

	if len(flow) == 0 {
		return nil
	}

	if isColumn(st) {
		return r.column(st, flow, ix, iy, iw, ih, opacity)
	}

	return r.row(st, flow, ix, iy, iw, ih, opacity)
}

func (r *run) placeAbsolute(n *showcase.Node, x, y, w, h, opacity float64) error {
	st := n.Props.Style

	left, hasL := parseLength(st["left"], w)
	right, hasR := parseLength(st["right"], w)
	top, hasT := parseLength(st["top"], h)
	bottom, hasB := parseLength(st["bottom"], h)

	cw, ch, err := r.size(n, w, h)
	if err != nil {
		return err
	}

	if hasL && hasR {
		cw = w - left - right
	}

	if hasT && hasB {
		ch = h - top - bottom
	}

	cx := x + left
	if !hasL && hasR {
		cx = x + w - right - cw
	}

	cy := y + top
	if !hasT && hasB {
		cy = y + h - bottom - ch
	}

	return r.place(n, cx, cy, cw, ch, opacity)
}

type item struct {
	node   *showcase.Node
	w, h   float64
	before float64
	after  float64
	grow   float64
}

func justify(mode string, free float64, count int) (start, gap float64) {
	switch mode {
	case "center":
		return free / 2, 0
	case "flex-end":
		return free, 0
	case "space-between":
		if count > 1 && free > 0 {
			return 0, free / float64(count-1)
		}
	}

	return 0, 0
}

func cross(mode string, start, space, size float64) float64 {
	switch mode {
	case "center":
		return start + (space-size)/2
	case "flex-end":
		return start + space - size
	}

	return start
}

func alignMode(st showcase.Style) string {
	if v := st["alignItems"]; v != "" {
		return v
	}

	return "stretch"
}

func (r *run) column(st showcase.Style, flow []*showcase.Node, ix, iy, iw, ih, opacity float64) error {
	align := alignMode(st)
	items := make([]item, 0, len(flow))

	used := 0.0
	growSum := 0.0

	for _, child := range flow {
		cw, ch, err := r.size(child, iw, ih)
		if err != nil {
			return err
		}

		cs := child.Props.Style
		if _, hasW := cs["width"]; align == "stretch" && !hasW {
			cw = iw
			if mw, ok := parseLength(cs["maxWidth"], iw); ok && mw < cw {
				cw = mw
			}
		}

		mt, mb := margins(cs, iw)
		it := item{node: child, w: cw, h: ch, before: mt, after: mb, grow: parseFloat(cs["flex"], 0)}
		items = append(items, it)

		used += ch + mt + mb
		growSum += it.grow
	}

	free := ih - used
	if growSum > 0 && free > 0 {
		for i := range items {
			items[i].h += free * items[i].grow / growSum
		}
		free = 0
	}

	start, gap := justify(st["justifyContent"], free, len(items))
	cy := iy + start

	for _, it := range items {
		cy += it.before
		cx := cross(align, ix, iw, it.w)

		if err := r.place(it.node, cx, cy, it.w, it.h, opacity); err != nil {
			return err
		}

		cy += it.h + it.after + gap
	}

	return nil
}

func (r *run) row(st showcase.Style, flow []*showcase.Node, ix, iy, iw, ih, opacity float64) error {
	align := alignMode(st)
	items := make([]item, 0, len(flow))

	used := 0.0
	growSum := 0.0

	for _, child := range flow {
		cs := child.Props.Style
		grow := parseFloat(cs["flex"], 0)

		cw, ch, err := r.size(child, iw, ih)
		if err != nil {
			return err
		}

		// flex: 1 means a zero basis, the item only takes its share of the
		// free space.
		if grow > 0 {
			cw = 0
		}

		if _, hasH := cs["height"]; align == "stretch" && !hasH {
			ch = ih
		}

		left, _ := parseLength(cs["marginLeft"], iw)
		right, _ := parseLength(cs["marginRight"], iw)

		items = append(items, item{node: child, w: cw, h: ch, before: left, after: right, grow: grow})

		used += cw + left + right
		growSum += grow
	}

	free := iw - used
	if growSum > 0 && free > 0 {
		for i := range items {
			items[i].w += free * items[i].grow / growSum
		}
		free = 0
	}

	start, gap := justify(st["justifyContent"], free, len(items))
	cx := ix + start

	for _, it := range items {
		cx += it.before
		cy := cross(align, iy, ih, it.h)

		if err := r.place(it.node, cx, cy, it.w, it.h, opacity); err != nil {
			return err
		}

		cx += it.w + it.after + gap
	}

	return nil
}

func (r *run) paintText(n *showcase.Node, ix, iy, iw, opacity float64) error {
	st := n.Props.Style

	ts := parseText(st)

	face, err := r.faces.face(ts.bold, ts.size)
	if err != nil {
		return err
	}

	c, ok := parseColor(st["color"])
	if !ok {
		c = namedColors["black"]
	}
	c = vector.WithAlpha(c, opacity)

	metrics := face.Metrics()
	ascent, descent := toFloat(metrics.Ascent), toFloat(metrics.Descent)

	for i, line := range wrap(face, n.Props.Text, iw) {
		lw := measure(face, line)

		lx := ix
		switch ts.align {
		case "center":
			lx = ix + (iw-lw)/2
		case "right":
			lx = ix + iw - lw
		}

		top := iy + float64(i)*ts.lineHeight

		r.doc.Add(vector.Text{
			X:       lx,
			Y:       top + (ts.lineHeight-(ascent+descent))/2 + ascent,
			Content: line,
			Size:    ts.size,
			Bold:    ts.bold,
			Color:   c,
		})
	}

	return nil
}

package showcase

import (
	"fmt"
	"strconv"
)

// CardOptions carries request time overrides for a single render.
type CardOptions struct {
	Title    string
	Subtitle string
	LogoText string

	// BrandName is used as logo text when neither the override nor the
	// settings provide one.
	BrandName string
}

func px(v int) string {
	return strconv.Itoa(v) + "px"
}

func alignment(layout Layout) (align, textAlign string) {
	switch layout {
	case LayoutLeft:
		return "flex-start", "left"
	case LayoutRight:
		return "flex-end", "right"
	default:
		return "center", "center"
	}
}

func resolveLogo(settings OGImageSettings, opts CardOptions) string {
	if !settings.ShowLogo {
		return ""
	}

	switch {
	case opts.LogoText != "":
		return opts.LogoText
	case settings.LogoText != "":
		return settings.LogoText
	default:
		return opts.BrandName
	}
}

type cardText struct {
	logo, title, subtitle, tagline string
}

// BuildCard assembles the layout tree for one share card. It has no side
// effects and returns identical trees for identical input.
func BuildCard(settings OGImageSettings, opts CardOptions) *Node {
	text := cardText{
		logo:     resolveLogo(settings, opts),
		title:    settings.Title,
		subtitle: settings.Subtitle,
		tagline:  settings.Tagline,
	}

	if opts.Title != "" {
		text.title = opts.Title
	}

	if opts.Subtitle != "" {
		text.subtitle = opts.Subtitle
	}

	children := make([]*Node, 0, 2)

	if settings.ShowPattern && settings.PatternType != PatternNone {
		if pattern, ok := PatternFor(settings.PatternType); ok {
			children = append(children, pattern(settings.AccentColor))
		}
	}

	if settings.Layout == LayoutSplit {
		children = append(children, splitContent(settings, text))
	} else {
		children = append(children, stackedContent(settings, text))
	}

	return Box(Style{
		"display":         "flex",
		"flexDirection":   "column",
		"position":        "relative",
		"width":           px(settings.Width),
		"height":          px(settings.Height),
		"backgroundColor": settings.BackgroundColor,
		"backgroundImage": fmt.Sprintf(
			"linear-gradient(135deg, %s, %s)",
			settings.BackgroundGradientStart, settings.BackgroundGradientEnd,
		),
	}, children...)
}

func stackedContent(settings OGImageSettings, text cardText) *Node {
	align, textAlign := alignment(settings.Layout)

	blocks := make([]*Node, 0, 4)

	if text.logo != "" {
		blocks = append(blocks, logoBlock(settings, text.logo))
	}

	blocks = append(blocks,
		titleBlock(settings, text.title, textAlign),
		subtitleBlock(settings, text.subtitle, textAlign),
	)

	if text.tagline != "" {
		tagline := taglineBlock(settings, text.tagline, textAlign)
		tagline.Props.Style["marginTop"] = "32px"
		blocks = append(blocks, tagline)
	}

	return Box(Style{
		"display":        "flex",
		"flexDirection":  "column",
		"alignItems":     align,
		"justifyContent": "center",
		"width":          "100%",
		"height":         "100%",
		"padding":        "60px",
	}, blocks...)
}

func splitContent(settings OGImageSettings, text cardText) *Node {
	left := make([]*Node, 0, 3)

	if text.logo != "" {
		left = append(left, logoBlock(settings, text.logo))
	}

	left = append(left,
		titleBlock(settings, text.title, "left"),
		subtitleBlock(settings, text.subtitle, "left"),
	)

	right := make([]*Node, 0, 1)
	if text.tagline != "" {
		right = append(right, taglineBlock(settings, text.tagline, "right"))
	}

	return Box(Style{
		"display":       "flex",
		"flexDirection": "row",
		"width":         "100%",
		"height":        "100%",
		"padding":       "60px",
	},
		Box(Style{
			"display":        "flex",
			"flexDirection":  "column",
			"alignItems":     "flex-start",
			"justifyContent": "center",
			"flex":           "1",
		}, left...),
		Box(Style{
			"display":        "flex",
			"flexDirection":  "column",
			"alignItems":     "flex-end",
			"justifyContent": "flex-end",
			"flex":           "1",
		}, right...),
	)
}

func logoBlock(settings OGImageSettings, logo string) *Node {
	return TextBox(Style{
		"fontSize":     "28px",
		"fontWeight":   "700",
		"color":        settings.AccentColor,
		"marginBottom": "24px",
	}, logo)
}

func titleBlock(settings OGImageSettings, title, textAlign string) *Node {
	return TextBox(Style{
		"fontSize":     px(settings.TitleFontSize),
		"fontWeight":   "700",
		"color":        settings.TitleColor,
		"lineHeight":   "1.2",
		"marginBottom": "20px",
		"maxWidth":     "90%",
		"textAlign":    textAlign,
	}, title)
}

func subtitleBlock(settings OGImageSettings, subtitle, textAlign string) *Node {
	return TextBox(Style{
		"fontSize":   px(settings.SubtitleFontSize),
		"fontWeight": "400",
		"color":      settings.SubtitleColor,
		"lineHeight": "1.4",
		"maxWidth":   "80%",
		"textAlign":  textAlign,
	}, subtitle)
}

func taglineBlock(settings OGImageSettings, tagline, textAlign string) *Node {
	return TextBox(Style{
		"fontSize":   "20px",
		"fontWeight": "400",
		"color":      settings.AccentColor,
		"opacity":    "0.9",
		"textAlign":  textAlign,
	}, tagline)
}

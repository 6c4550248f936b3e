package showcase

import "fmt"

// PatternFunc builds a decorative overlay covering the whole canvas.
type PatternFunc func(color string) *Node

var patterns = map[PatternType]PatternFunc{
	PatternDots:  Dots,
	PatternGrid:  Grid,
	PatternWaves: Waves,
}

// PatternFor looks up the generator for a pattern kind. PatternNone and
// unknown kinds have no generator.
func PatternFor(kind PatternType) (PatternFunc, bool) {
	fn, ok := patterns[kind]
	return fn, ok
}

func overlay(style Style) Style {
	style["position"] = "absolute"
	style["top"] = "0"
	style["left"] = "0"
	style["right"] = "0"
	style["bottom"] = "0"
	style["display"] = "flex"

	return style
}

// Dots draws a 30px grid of 1px dots.
func Dots(color string) *Node {
	return Box(overlay(Style{
		"backgroundImage": fmt.Sprintf("radial-gradient(circle, %s 1px, transparent 1px)", color),
		"backgroundSize":  "30px 30px",
		"opacity":         "0.5",
	}))
}

// Grid draws horizontal and vertical hairlines every 50px.
func Grid(color string) *Node {
	return Box(overlay(Style{
		"backgroundImage": fmt.Sprintf(
			"linear-gradient(%s 1px, transparent 1px), linear-gradient(90deg, %s 1px, transparent 1px)",
			color, color,
		),
		"backgroundSize": "50px 50px",
		"opacity":        "0.3",
	}))
}

// Waves draws rows of arcs, each tile holding the top of a 20px ring.
func Waves(color string) *Node {
	return Box(overlay(Style{
		"backgroundImage": fmt.Sprintf(
			"radial-gradient(circle at 50%% 100%%, transparent 18px, %s 19px, %s 21px, transparent 22px)",
			color, color,
		),
		"backgroundSize": "40px 20px",
		"opacity":        "0.25",
	}))
}

package showcase

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func testSettings() OGImageSettings {
	return OGImageSettings{
		Id:                      "settings-1",
		Title:                   "A",
		Subtitle:                "B",
		BackgroundColor:         "#0f172a",
		BackgroundGradientStart: "#0f172a",
		BackgroundGradientEnd:   "#1e293b",
		TitleColor:              "#ffffff",
		SubtitleColor:           "#94a3b8",
		AccentColor:             "#38bdf8",
		Layout:                  LayoutCentered,
		TitleFontSize:           64,
		SubtitleFontSize:        28,
		Width:                   1200,
		Height:                  630,
		ShowPattern:             true,
		PatternType:             PatternDots,
		IsActive:                true,
	}
}

func TestCard(t *testing.T) {
	suite.Run(t, new(cardTestSuite))
}

type cardTestSuite struct {
	suite.Suite
}

func hasPattern(root *Node) bool {
	for _, child := range root.Props.Children {
		if child.Props.Style["position"] == "absolute" {
			return true
		}
	}

	return false
}

func (suite *cardTestSuite) TestDeterministic() {
	settings := testSettings()
	settings.Tagline = "Building things"
	settings.ShowLogo = true
	settings.LogoText = "AB"

	first := BuildCard(settings, CardOptions{})
	second := BuildCard(settings, CardOptions{})

	suite.Equal(first.Count(), second.Count())
	suite.Equal(first.Texts(), second.Texts())

	a, err := json.Marshal(first)
	suite.Require().NoError(err)

	b, err := json.Marshal(second)
	suite.Require().NoError(err)

	suite.JSONEq(string(a), string(b))
}

func (suite *cardTestSuite) TestOverridePrecedence() {
	settings := testSettings()

	suite.Equal([]string{"X", "B"}, BuildCard(settings, CardOptions{Title: "X"}).Texts())
	suite.Equal([]string{"A", "Y"}, BuildCard(settings, CardOptions{Subtitle: "Y"}).Texts())
	suite.Equal([]string{"A", "B"}, BuildCard(settings, CardOptions{}).Texts())
}

func (suite *cardTestSuite) TestPatternGating() {
	settings := testSettings()

	for _, kind := range []PatternType{PatternDots, PatternGrid, PatternWaves, PatternNone} {
		settings.ShowPattern = false
		settings.PatternType = kind
		suite.False(hasPattern(BuildCard(settings, CardOptions{})), "pattern %s hidden", kind)
	}

	settings.ShowPattern = true
	settings.PatternType = PatternNone
	suite.False(hasPattern(BuildCard(settings, CardOptions{})))

	for _, kind := range []PatternType{PatternDots, PatternGrid, PatternWaves} {
		settings.PatternType = kind
		root := BuildCard(settings, CardOptions{})

		suite.True(hasPattern(root), "pattern %s shown", kind)
		suite.Equal("absolute", root.Props.Children[0].Props.Style["position"], "pattern is painted first")
	}

	settings.PatternType = "zigzag"
	suite.False(hasPattern(BuildCard(settings, CardOptions{})))
}

func (suite *cardTestSuite) TestRootStyle() {
	root := BuildCard(testSettings(), CardOptions{})
	style := root.Props.Style

	suite.Equal(BoxType, root.Type)
	suite.Equal("1200px", style["width"])
	suite.Equal("630px", style["height"])
	suite.Equal("#0f172a", style["backgroundColor"])
	suite.Equal("linear-gradient(135deg, #0f172a, #1e293b)", style["backgroundImage"])
}

func (suite *cardTestSuite) TestAlignment() {
	settings := testSettings()
	settings.ShowPattern = false

	expect := map[Layout]string{
		LayoutLeft:     "flex-start",
		LayoutRight:    "flex-end",
		LayoutCentered: "center",
	}

	for layout, align := range expect {
		settings.Layout = layout
		content := BuildCard(settings, CardOptions{}).Props.Children[0]

		suite.Equal(align, content.Props.Style["alignItems"], "layout %s", layout)
	}
}

func (suite *cardTestSuite) TestContentOrder() {
	settings := testSettings()
	settings.ShowLogo = true
	settings.LogoText = "Logo"
	settings.Tagline = "Tagline"

	suite.Equal([]string{"Logo", "A", "B", "Tagline"}, BuildCard(settings, CardOptions{}).Texts())

	settings.Tagline = ""
	suite.Equal([]string{"Logo", "A", "B"}, BuildCard(settings, CardOptions{}).Texts())
}

func (suite *cardTestSuite) TestLogoResolution() {
	settings := testSettings()
	settings.ShowLogo = true

	suite.Equal("Brand", BuildCard(settings, CardOptions{BrandName: "Brand"}).Texts()[0])

	settings.LogoText = "Stored"
	suite.Equal("Stored", BuildCard(settings, CardOptions{BrandName: "Brand"}).Texts()[0])
	suite.Equal("Override", BuildCard(settings, CardOptions{LogoText: "Override", BrandName: "Brand"}).Texts()[0])

	settings.ShowLogo = false
	suite.Equal([]string{"A", "B"}, BuildCard(settings, CardOptions{LogoText: "Override"}).Texts())
}

func (suite *cardTestSuite) TestSplitLayout() {
	settings := testSettings()
	settings.ShowPattern = false
	settings.Layout = LayoutSplit
	settings.Tagline = "Right side"

	content := BuildCard(settings, CardOptions{}).Props.Children[0]
	suite.Equal("row", content.Props.Style["flexDirection"])
	suite.Require().Len(content.Props.Children, 2)

	left, right := content.Props.Children[0], content.Props.Children[1]
	suite.Equal([]string{"A", "B"}, left.Texts())
	suite.Equal([]string{"Right side"}, right.Texts())
	suite.Equal("flex-end", right.Props.Style["justifyContent"])

	settings.Tagline = ""
	content = BuildCard(settings, CardOptions{}).Props.Children[0]
	suite.Empty(content.Props.Children[1].Props.Children)
}

func TestPatterns(t *testing.T) {
	dots := Dots("#38bdf8")
	assert.Equal(t, "radial-gradient(circle, #38bdf8 1px, transparent 1px)", dots.Props.Style["backgroundImage"])
	assert.Equal(t, "30px 30px", dots.Props.Style["backgroundSize"])
	assert.Equal(t, "0.5", dots.Props.Style["opacity"])

	grid := Grid("#fff")
	assert.Equal(t, "50px 50px", grid.Props.Style["backgroundSize"])
	assert.Equal(t, "0.3", grid.Props.Style["opacity"])
	assert.Equal(t, 2, strings.Count(grid.Props.Style["backgroundImage"], "#fff 1px"))

	waves := Waves("#fff")
	assert.Contains(t, waves.Props.Style["backgroundImage"], "circle at 50% 100%")
	assert.Equal(t, "40px 20px", waves.Props.Style["backgroundSize"])

	for _, n := range []*Node{dots, grid, waves} {
		assert.Equal(t, "absolute", n.Props.Style["position"])
		assert.Nil(t, n.Props.Children)
	}

	_, ok := PatternFor(PatternNone)
	assert.False(t, ok)
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, testSettings().Validate())

	s := testSettings()
	s.TitleColor = "white"
	assert.Error(t, s.Validate())

	s = testSettings()
	s.Layout = "diagonal"
	assert.Error(t, s.Validate())

	s = testSettings()
	s.Width = 0
	assert.Error(t, s.Validate())

	s = testSettings()
	s.SubtitleFontSize = -1
	assert.Error(t, s.Validate())
}

func TestNodeJSON(t *testing.T) {
	root := Box(Style{"display": "flex"}, TextBox(Style{"color": "#fff"}, "Hi"))

	data, err := json.Marshal(root)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "div",
		"props": {
			"style": {"display": "flex"},
			"children": [{"type": "div", "props": {"style": {"color": "#fff"}, "children": "Hi"}}]
		}
	}`, string(data))

	decoded := &Node{}
	require.NoError(t, json.Unmarshal(data, decoded))

	assert.Equal(t, root, decoded)
	assert.True(t, decoded.Props.Children[0].IsText())
	assert.Equal(t, 2, decoded.Count())
}

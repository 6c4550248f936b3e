package showcase

import (
	"regexp"
	"time"

	"github.com/pkg/errors"
)

type Layout string

const (
	LayoutCentered Layout = "centered"
	LayoutLeft     Layout = "left"
	LayoutRight    Layout = "right"
	LayoutSplit    Layout = "split"
)

func (l Layout) Valid() bool {
	switch l {
	case LayoutCentered, LayoutLeft, LayoutRight, LayoutSplit:
		return true
	}

	return false
}

type PatternType string

const (
	PatternDots  PatternType = "dots"
	PatternGrid  PatternType = "grid"
	PatternWaves PatternType = "waves"
	PatternNone  PatternType = "none"
)

func (p PatternType) Valid() bool {
	switch p {
	case PatternDots, PatternGrid, PatternWaves, PatternNone:
		return true
	}

	return false
}

// OGImageSettings is the admin managed record backing the share card. Exactly
// one row is expected to be active at a time.
type OGImageSettings struct {
	Id string `sql:",pk" json:"id"`

	Title    string `sql:",notnull" json:"title"`
	Subtitle string `sql:",notnull" json:"subtitle"`
	Tagline  string `json:"tagline,omitempty"`
	LogoText string `json:"logo_text,omitempty"`

	BackgroundColor         string `sql:",notnull" json:"background_color"`
	BackgroundGradientStart string `sql:",notnull" json:"background_gradient_start"`
	BackgroundGradientEnd   string `sql:",notnull" json:"background_gradient_end"`
	TitleColor              string `sql:",notnull" json:"title_color"`
	SubtitleColor           string `sql:",notnull" json:"subtitle_color"`
	AccentColor             string `sql:",notnull" json:"accent_color"`

	Layout Layout `sql:",notnull" json:"layout"`

	TitleFontSize    int `sql:",notnull" json:"title_font_size"`
	SubtitleFontSize int `sql:",notnull" json:"subtitle_font_size"`
	Width            int `sql:",notnull" json:"width"`
	Height           int `sql:",notnull" json:"height"`

	ShowLogo    bool        `sql:",notnull" json:"show_logo"`
	ShowPattern bool        `sql:",notnull" json:"show_pattern"`
	PatternType PatternType `sql:",notnull" json:"pattern_type"`

	IsActive bool `sql:",notnull" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate reports the first field that would make the card unrenderable.
func (s OGImageSettings) Validate() error {
	colors := []struct {
		name, value string
	}{
		{"background_color", s.BackgroundColor},
		{"background_gradient_start", s.BackgroundGradientStart},
		{"background_gradient_end", s.BackgroundGradientEnd},
		{"title_color", s.TitleColor},
		{"subtitle_color", s.SubtitleColor},
		{"accent_color", s.AccentColor},
	}

	for _, c := range colors {
		if !hexColorRegex.MatchString(c.value) {
			return errors.Errorf("%s must be a hex color, got %q", c.name, c.value)
		}
	}

	if !s.Layout.Valid() {
		return errors.Errorf("unknown layout %q", s.Layout)
	}

	if !s.PatternType.Valid() {
		return errors.Errorf("unknown pattern type %q", s.PatternType)
	}

	if s.Width <= 0 || s.Height <= 0 {
		return errors.Errorf("invalid canvas size %dx%d", s.Width, s.Height)
	}

	if s.TitleFontSize <= 0 || s.SubtitleFontSize <= 0 {
		return errors.New("font sizes must be positive")
	}

	return nil
}

// BrandIdentity supplies the logo text when the settings row has none.
type BrandIdentity struct {
	Id      string `sql:",pk" json:"id"`
	Name    string `sql:",notnull" json:"name"`
	Tagline string `json:"tagline,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

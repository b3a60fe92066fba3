package burnin

import (
	"fmt"
	"strconv"
	"strings"

	"subburn/internal/jobs"
)

// ASS border styles and fixed layout values.
const (
	BorderStyleOutline = 1
	BorderStyleBox     = 4
	MarginV            = 30

	defaultPrimaryColour = "&HFFFFFF"
	transparentBlack     = "&H00000000"
)

// Alignment maps a position onto the centre column of the ASS numpad grid.
func Alignment(position string) int {
	switch strings.ToLower(strings.TrimSpace(position)) {
	case jobs.PositionTop:
		return 8
	case jobs.PositionCenter:
		return 5
	default:
		return 2
	}
}

// ColorToken converts #RRGGBB into the ASS &HBBGGRR form. Blank, "none",
// "transparent" and malformed values report ok=false, meaning no override.
func ColorToken(hex string) (string, bool) {
	value := strings.TrimSpace(hex)
	switch strings.ToLower(value) {
	case "", "none", "transparent":
		return "", false
	}
	value = strings.TrimPrefix(value, "#")
	if len(value) != 6 {
		return "", false
	}
	if _, err := strconv.ParseUint(value, 16, 32); err != nil {
		return "", false
	}
	value = strings.ToUpper(value)
	return "&H" + value[4:6] + value[2:4] + value[0:2], true
}

// Style is the force_style descriptor handed to the subtitles filter.
type Style struct {
	FontName      string
	FontSize      int
	PrimaryColour string
	BackColour    string
	BorderStyle   int
	Outline       int
	Shadow        int
	Alignment     int
	MarginV       int
}

// StyleFor derives the descriptor for settings. Missing fields take the
// job defaults first.
func StyleFor(settings jobs.Settings) Style {
	settings = settings.WithDefaults()

	primary, ok := ColorToken(settings.FontColor)
	if !ok {
		primary = defaultPrimaryColour
	}
	style := Style{
		FontName:      sanitizeFontName(settings.FontFamily),
		FontSize:      settings.FontSize,
		PrimaryColour: primary,
		Alignment:     Alignment(settings.Position),
		MarginV:       MarginV,
	}
	if back, ok := ColorToken(settings.BackgroundColor); ok {
		// Shadow is also the padding of the opaque box in this mode.
		style.BackColour = back
		style.BorderStyle = BorderStyleBox
		style.Outline = 0
		style.Shadow = 4
	} else {
		style.BackColour = transparentBlack
		style.BorderStyle = BorderStyleOutline
		style.Outline = 2
		style.Shadow = 1
	}
	return style
}

// String renders the comma separated key=value list ffmpeg expects.
func (s Style) String() string {
	return strings.Join([]string{
		"FontName=" + s.FontName,
		fmt.Sprintf("FontSize=%d", s.FontSize),
		"PrimaryColour=" + s.PrimaryColour,
		"BackColour=" + s.BackColour,
		fmt.Sprintf("BorderStyle=%d", s.BorderStyle),
		fmt.Sprintf("Outline=%d", s.Outline),
		fmt.Sprintf("Shadow=%d", s.Shadow),
		fmt.Sprintf("Alignment=%d", s.Alignment),
		fmt.Sprintf("MarginV=%d", s.MarginV),
	}, ",")
}

// ForceStyle is shorthand for StyleFor(settings).String().
func ForceStyle(settings jobs.Settings) string {
	return StyleFor(settings).String()
}

// Font names end up inside a single-quoted filter option whose value is itself
// a comma separated key=value list.
func sanitizeFontName(name string) string {
	name = strings.NewReplacer("'", "", "\\", "", ",", "", "=", "", ":", "", "\n", " ").Replace(name)
	name = strings.TrimSpace(name)
	if name == "" {
		return jobs.DefaultFontFamily
	}
	return name
}

package api

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"subburn/internal/jobs"
	"subburn/internal/services"
	"subburn/internal/textutil"
)

var stylePresets = []StylePreset{
	{Name: "classic", FontColor: "#FFFFFF", BackgroundColor: "none"},
	{Name: "boxed", FontColor: "#FFFFFF", BackgroundColor: "#000000"},
	{Name: "neon", FontColor: "#00FF00", BackgroundColor: "none"},
	{Name: "cinema", FontColor: "#FFD700", BackgroundColor: "none"},
	{Name: "modern", FontColor: "#FFFFFF", BackgroundColor: "#6366f1"},
}

// StylePresets returns the built-in presets in display order.
func StylePresets() []StylePreset {
	out := make([]StylePreset, 0, len(stylePresets))
	for _, preset := range stylePresets {
		preset.Label = textutil.TitleCase(preset.Name)
		out = append(out, preset)
	}
	return out
}

// LookupPreset finds a preset by case-insensitive name.
func LookupPreset(name string) (StylePreset, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, preset := range StylePresets() {
		if preset.Name == name {
			return preset, true
		}
	}
	return StylePreset{}, false
}

// ApplyPreset seeds colors the request left blank from the named preset and
// then fills the remaining defaults.
func ApplyPreset(settings jobs.Settings) jobs.Settings {
	if preset, ok := LookupPreset(settings.Style); ok {
		settings.Style = preset.Name
		if strings.TrimSpace(settings.FontColor) == "" {
			settings.FontColor = preset.FontColor
		}
		if strings.TrimSpace(settings.BackgroundColor) == "" {
			settings.BackgroundColor = preset.BackgroundColor
		}
	}
	return settings.WithDefaults()
}

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Characters with meaning inside a force_style value.
const fontFamilyReserved = ",=:'\\"

var positions = []string{jobs.PositionTop, jobs.PositionCenter, jobs.PositionBottom}

// ValidateSettings rejects settings the renderer cannot honour. It expects
// defaults to be applied already.
func ValidateSettings(settings jobs.Settings) error {
	if settings.FontSize <= 0 || settings.FontSize > 200 {
		return invalid("fontSize must be between 1 and 200, got %d", settings.FontSize)
	}
	if strings.ContainsAny(settings.FontFamily, fontFamilyReserved) {
		return invalid("fontFamily must not contain any of %q, got %q", fontFamilyReserved, settings.FontFamily)
	}
	if !slices.Contains(positions, settings.Position) {
		return invalid("position must be one of %s, got %q", strings.Join(positions, ", "), settings.Position)
	}
	if !hexColorPattern.MatchString(settings.FontColor) {
		return invalid("fontColor must be #RRGGBB, got %q", settings.FontColor)
	}
	switch strings.ToLower(settings.BackgroundColor) {
	case "none", "transparent":
	default:
		if !hexColorPattern.MatchString(settings.BackgroundColor) {
			return invalid("bgColor must be #RRGGBB, none or transparent, got %q", settings.BackgroundColor)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return services.Wrap(services.ErrValidation, "", "settings", fmt.Sprintf(format, args...), nil)
}

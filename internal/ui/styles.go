package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Highlights use a marker yellow so they read like the HTML
// output; everything else stays muted.
const (
	ColorMarker   = "226" // Highlight background (#FFFF00)
	ColorInk      = "16"  // Highlight foreground
	ColorLime     = "154" // Headers and success
	ColorWhite    = "255" // Important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Separators
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
)

// Styles holds the styles used for terminal output.
type Styles struct {
	Header     lipgloss.Style
	Highlight  lipgloss.Style
	Annotation lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Dim        lipgloss.Style
	Label      lipgloss.Style
}

// DefaultStyles returns colored styles bound to the default renderer.
func DefaultStyles() Styles {
	return stylesFor(lipgloss.DefaultRenderer())
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Header:     lipgloss.NewStyle(),
		Highlight:  lipgloss.NewStyle(),
		Annotation: lipgloss.NewStyle(),
		Success:    lipgloss.NewStyle(),
		Warning:    lipgloss.NewStyle(),
		Error:      lipgloss.NewStyle(),
		Dim:        lipgloss.NewStyle(),
		Label:      lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// StylesFor returns styles whose color profile is detected from w rather
// than from stdout. Colors are dropped when noColor is set, NO_COLOR is
// present or w is not a terminal.
func StylesFor(w io.Writer, noColor bool) Styles {
	if !ColorEnabled(w, noColor) {
		return NoColorStyles()
	}
	return stylesFor(lipgloss.NewRenderer(w))
}

func stylesFor(r *lipgloss.Renderer) Styles {
	return Styles{
		Header: r.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Highlight: r.NewStyle().
			Background(lipgloss.Color(ColorMarker)).
			Foreground(lipgloss.Color(ColorInk)),
		Annotation: r.NewStyle().Underline(true).Foreground(lipgloss.Color(ColorYellow)),
		Success:    r.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning:    r.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:      r.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:        r.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:      r.NewStyle().Foreground(lipgloss.Color(ColorGray)),
	}
}

package output

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // cyan, current step
	colorAccent  = lipgloss.Color("#FFD700") // gold, unsaved edits
	colorSuccess = lipgloss.Color("#00E676") // green, completed
	colorDanger  = lipgloss.Color("#FF5252") // red, errors and rejections
	colorMuted   = lipgloss.Color("#8C8C8C") // gray, not started
)

// Step indicator icons.
const (
	iconCurrent   = "▶"
	iconCompleted = "✓"
	iconDirty     = "●"
	iconEmpty     = "○"
	iconUnsaved   = "!"
	iconFailed    = "✗"
	iconWarning   = "⚠"
)

type styles struct {
	title     lipgloss.Style
	current   lipgloss.Style
	completed lipgloss.Style
	dirty     lipgloss.Style
	empty     lipgloss.Style
	danger    lipgloss.Style
	warning   lipgloss.Style
	muted     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:     r.NewStyle().Bold(true).Foreground(colorPrimary),
		current:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		completed: r.NewStyle().Foreground(colorSuccess),
		dirty:     r.NewStyle().Foreground(colorAccent),
		empty:     r.NewStyle().Foreground(colorMuted),
		danger:    r.NewStyle().Bold(true).Foreground(colorDanger),
		warning:   r.NewStyle().Bold(true).Foreground(colorAccent),
		muted:     r.NewStyle().Foreground(colorMuted),
	}
}

package style

import (
	"github.com/charmbracelet/lipgloss"
	"mtasks/internal/infrastructure/config"
)

var (
	TitleStyle     lipgloss.Style
	FilterStyle    lipgloss.Style
	TaskStyle      lipgloss.Style
	SelectedStyle  lipgloss.Style
	CompletedStyle lipgloss.Style
	OverdueStyle   lipgloss.Style
	HelpStyle      lipgloss.Style
	StatsStyle     lipgloss.Style
	ErrorStyle     lipgloss.Style
)

func init() {
	InitStyles(nil)
}

// InitStyles initializes the styles from config. A nil config gives the
// built-in look for the system theme.
func InitStyles(cfg *config.Config) {
	var styles config.StylesConfig
	theme := "system"
	if cfg != nil {
		styles = cfg.TUI.Styles
		theme = cfg.TUI.Theme
	}

	TitleStyle = textStyle(styles.Title, themed(theme, "57", "99")).Bold(true).MarginBottom(1)
	FilterStyle = lipgloss.NewStyle().Foreground(themed(theme, "244", "246"))
	TaskStyle = textStyle(styles.Task, themed(theme, "236", "252"))
	SelectedStyle = textStyle(styles.Selected, themed(theme, "230", "230"))
	if styles.Selected.Background == "" {
		SelectedStyle = SelectedStyle.Background(themed(theme, "62", "62"))
	}
	CompletedStyle = textStyle(styles.Completed, themed(theme, "245", "241"))
	OverdueStyle = textStyle(styles.Overdue, themed(theme, "#D70015", "#FF3B30"))
	HelpStyle = textStyle(styles.Help, themed(theme, "245", "241"))
	StatsStyle = textStyle(styles.Stats, themed(theme, "#1D3557", "#A8DADC"))
	ErrorStyle = lipgloss.NewStyle().Foreground(themed(theme, "#D70015", "#FF3B30"))
}

// PriorityDot renders the priority marker in the given color
func PriorityDot(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

// textStyle builds a style from config, using fallback when no foreground
// is configured
func textStyle(ts config.TextStyle, fallback lipgloss.TerminalColor) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(fallback)
	if ts.Foreground != "" {
		s = s.Foreground(lipgloss.Color(ts.Foreground))
	}
	if ts.Background != "" {
		s = s.Background(lipgloss.Color(ts.Background))
	}
	if ts.Bold {
		s = s.Bold(true)
	}
	if ts.Italic {
		s = s.Italic(true)
	}
	if ts.Strike {
		s = s.Strikethrough(true)
	}
	return s
}

// themed picks the light or dark variant. The system theme leaves the
// choice to lipgloss, which inspects the terminal background.
func themed(theme, light, dark string) lipgloss.TerminalColor {
	switch theme {
	case "light":
		return lipgloss.Color(light)
	case "dark":
		return lipgloss.Color(dark)
	default:
		return lipgloss.AdaptiveColor{Light: light, Dark: dark}
	}
}

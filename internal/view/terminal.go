package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the terminal color scheme.
type Theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
	Danger  lipgloss.Color
}

// DefaultTheme uses the cyan accent of the web page.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#06b6d4"),
	Dim:     lipgloss.Color("#64748b"),
	Danger:  lipgloss.Color("#dc2626"),
}

// Styles holds the lipgloss styles derived from a theme.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Selected lipgloss.Style
	Option   lipgloss.Style
	Help     lipgloss.Style
	Error    lipgloss.Style
	Box      lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:    lipgloss.NewStyle().Bold(true),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(t.Primary).Padding(0, 1),
		Option:   lipgloss.NewStyle().Foreground(t.Dim).Padding(0, 1),
		Help:     lipgloss.NewStyle().Foreground(t.Dim),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(t.Danger),
		Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary),
	}
}

// RenderTerminal renders v as a text frame no wider than width columns.
func RenderTerminal(v View, s Styles, width int) string {
	if width <= 0 {
		width = 80
	}
	var b strings.Builder

	b.WriteString(s.Title.Render(v.Title))
	b.WriteString("\n")
	b.WriteString(s.Help.Render(v.Tagline))
	b.WriteString("\n\n")

	b.WriteString(s.Label.Render(v.Form.PromptLabel))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(width - 2).Render(v.Form.Prompt))
	b.WriteString("\n\n")

	b.WriteString(s.Label.Render(v.Form.RatioLabel))
	b.WriteString("\n")
	opts := make([]string, 0, len(v.Form.Ratios))
	for _, r := range v.Form.Ratios {
		if r.Selected {
			opts = append(opts, s.Selected.Render(r.Value.String()))
		} else {
			opts = append(opts, s.Option.Render(r.Value.String()))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, opts...))
	b.WriteString("\n\n")

	b.WriteString(renderPanel(v.Panel, s, width))
	b.WriteString("\n")
	b.WriteString(s.Help.Render(fmt.Sprintf("[%s]", v.Form.SubmitLabel)))
	return b.String()
}

func renderPanel(p Panel, s Styles, width int) string {
	cols := p.Shape.Cols
	if cols > width-2 {
		cols = width - 2
	}
	var body string
	switch p.Kind {
	case PanelLoading:
		body = "⠋ " + p.Message
	case PanelError:
		body = s.Error.Render(p.Message)
	case PanelImage:
		body = p.Alt + "\n" + summarizeReference(string(p.Image))
	default:
		body = s.Help.Render(p.Message)
	}
	return s.Box.
		Width(cols).
		Height(p.Shape.Rows).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)
}

// summarizeReference keeps data URIs from flooding the terminal.
func summarizeReference(ref string) string {
	if i := strings.IndexByte(ref, ','); strings.HasPrefix(ref, "data:") && i > 0 {
		return fmt.Sprintf("%s, %d bytes", ref[:i], len(ref)-i-1)
	}
	if len(ref) > 60 {
		return ref[:57] + "..."
	}
	return ref
}

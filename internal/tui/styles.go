package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/PabloGalante/studybuddy/internal/app/sections"
)

const sidebarWidth = 30

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(lipgloss.Color("238"))

	sessionStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeSessionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("63")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)

	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

// headingStyles colour each labelled section.
var headingStyles = map[sections.Kind]lipgloss.Style{
	sections.KindRule:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
	sections.KindHack:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
	sections.KindSummary:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35")),
	sections.KindDisclaimer: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245")),
}

var bodyStyles = map[sections.Kind]lipgloss.Style{
	sections.KindRule:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2),
	sections.KindHack:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2),
	sections.KindSummary:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2),
	sections.KindDisclaimer: lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true).PaddingLeft(2),
	sections.KindPlain:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
}

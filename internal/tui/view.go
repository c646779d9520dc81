package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/PabloGalante/studybuddy/internal/app/conversation"
	"github.com/PabloGalante/studybuddy/internal/app/sections"
	"github.com/PabloGalante/studybuddy/internal/domain"
)

const disclaimer = "StudyBuddy is an AI and can make mistakes. Verify important information with official sources."

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderError(),
		m.input.View(),
		footerStyle.Render(disclaimer),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Height(m.height-1).Render(m.renderSidebar()),
		" ",
		main,
	)
}

func (m Model) renderHeader() string {
	status := "Active"
	if m.streaming {
		status = m.spinner.View() + " Researching"
	}
	return titleStyle.Render("StudyBuddy") + dimStyle.Render(" · "+status)
}

func (m Model) renderError() string {
	if m.err == nil {
		return ""
	}
	return errorStyle.Render(conversation.UserMessage(m.err))
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Chats") + "\n")
	b.WriteString(dimStyle.Render("ctrl+n new · tab switch · ctrl+d delete") + "\n\n")

	active, _ := m.sessions.ActiveID()
	list := m.sessions.Sessions()
	if len(list) == 0 {
		b.WriteString(dimStyle.Render("No conversations yet") + "\n")
	}
	for _, s := range list {
		if s.ID == active {
			b.WriteString(activeSessionStyle.Render("▸ "+s.Title) + "\n")
			continue
		}
		b.WriteString(sessionStyle.Render("  "+s.Title) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(checkbox(m.prefs.SaveHistory()) + " Save history " + dimStyle.Render("ctrl+s") + "\n")
	b.WriteString(checkbox(m.prefs.ShareLogs()) + " Share logs " + dimStyle.Render("ctrl+l") + "\n")
	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) renderConversation(width int) string {
	sess, ok := m.sessions.Active()
	if !ok {
		return m.renderWelcome(width)
	}

	var b strings.Builder
	for i, msg := range sess.Messages {
		last := i == len(sess.Messages)-1
		switch msg.Role {
		case domain.RoleUser:
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, userStyle.MaxWidth(width).Render(msg.Content)))
			b.WriteString("\n\n")
		case domain.RoleAssistant:
			if msg.Content == "" && last && m.streaming {
				b.WriteString(dimStyle.Render(m.spinner.View()+" Researching official rules and community hacks...") + "\n\n")
				continue
			}
			b.WriteString(renderAssistant(msg, width, m.showSources))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderWelcome(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome to StudyBuddy") + "\n\n")
	b.WriteString(lipgloss.NewStyle().Width(width).Render(
		"Ask anything about studying abroad. Every answer compares the official rules with what students actually do.") + "\n\n")
	for i, topic := range conversation.QuickPrompts {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  alt+%d  ", i+1)) + conversation.QuickPrompt(topic) + "\n")
	}
	return b.String()
}

// renderAssistant draws the labelled blocks of a reply followed by its sources.
func renderAssistant(msg domain.Message, width int, showSources bool) string {
	var b strings.Builder
	for _, blk := range sections.Parse(msg.Content) {
		if blk.Kind != sections.KindPlain {
			b.WriteString(headingStyles[blk.Kind].Render(strings.ToUpper(blk.Kind.Heading())) + "\n")
		}
		b.WriteString(bodyStyles[blk.Kind].Width(width).Render(blk.Text) + "\n")
	}

	if len(msg.Citations) > 0 {
		toggle := "ctrl+o to show"
		if showSources {
			toggle = "ctrl+o to hide"
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("Sources (%d) · %s", len(msg.Citations), toggle)) + "\n")
		if showSources {
			for _, c := range msg.Citations {
				title := c.Title
				if title == "" {
					title = c.URI
				}
				b.WriteString("  " + title + " " + sourceStyle.Render(c.URI) + "\n")
			}
		}
	}
	return b.String()
}

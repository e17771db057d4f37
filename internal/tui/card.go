package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/roster/internal/presenter"
)

const minCardWidth = 24

// renderCard draws one user card. Width is the outer width including the
// border.
func renderCard(c presenter.Card, selected bool, width int) string {
	if width < minCardWidth {
		width = minCardWidth
	}
	inner := width - 4

	avatar := AvatarStyle.Render(c.Initial)
	nameRoom := inner - lipgloss.Width(avatar) - 1
	name := NameStyle.Render(truncateEnd(c.Name, nameRoom))
	handleRoom := nameRoom - lipgloss.Width(name) - 1
	title := avatar + " " + name
	if handleRoom > 1 {
		title += " " + HandleStyle.Render(truncateEnd(c.Handle, handleRoom))
	}

	field := func(label, value string, link bool) string {
		l := FieldLabelStyle.Render(label + " ")
		v := truncateEnd(value, inner-lipgloss.Width(l))
		if link {
			return l + LinkStyle.Render(v)
		}
		return l + FieldValueStyle.Render(v)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		field("✉", c.Email, true),
		field("☎", c.Phone, true),
		field("⌂", c.Address, false),
		field("⌘", c.Website, true),
		field("▣", c.Company, false),
	)

	borderColor := MutedColor
	if selected {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(width - 2).
		Render(body)
}

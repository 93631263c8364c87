package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/careerguider/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	CompactHeightThreshold = 30
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// NavItem is one entry of the navigation strip.
type NavItem struct {
	Key    string
	Label  string
	Active bool
}

// IsCompactHeight returns true if the terminal height is in compact range.
func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage renders the "terminal too small" message.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

// RenderHeader renders the application header bar. user is empty when
// nobody is signed in.
func RenderHeader(title, user string, width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render("  Career Guider")

	center := lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(title)

	right := ""
	if user != "" {
		right = lipgloss.NewStyle().
			Foreground(theme.Accent).
			Render("● " + user)
	}

	content := spread(left, center, right, width-4)

	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderNavbar renders the navigation strip under the header. status is
// shown right-aligned when set.
func RenderNavbar(items []NavItem, status string, width int) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		label := it.Label
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if it.Active {
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Underline(true)
		}
		key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(it.Key)
		parts = append(parts, key+" "+style.Render(label))
	}
	left := "  " + strings.Join(parts, "   ")

	right := ""
	if status != "" {
		right = lipgloss.NewStyle().Foreground(theme.Accent).Render(status) + "  "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// RenderFooter renders the footer with key hints.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		part := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) +
			" " +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
		parts = append(parts, part)
	}

	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render("  " + strings.Join(parts, "   "))
}

// ContentHeight returns the rows left for content once top and footer
// are drawn. An empty footer takes no rows.
func ContentHeight(top, footer string, height int) int {
	h := height - lipgloss.Height(top)
	if footer != "" {
		h -= lipgloss.Height(footer)
	}
	if h < 0 {
		return 0
	}
	return h
}

// RenderFrame stacks the given sections and pads content to fill height.
func RenderFrame(header, navbar, content, footer string, width, height int) string {
	top := header
	if navbar != "" {
		top += "\n" + navbar
	}

	styledContent := lipgloss.NewStyle().
		Width(width).
		Height(ContentHeight(top, footer, height)).
		Render(content)

	if footer == "" {
		return top + "\n" + styledContent
	}
	return top + "\n" + styledContent + "\n" + footer
}

// spread places left, center and right on one line of innerWidth cells,
// keeping center in the middle where possible.
func spread(left, center, right string, innerWidth int) string {
	if innerWidth < 0 {
		innerWidth = 0
	}
	leftLen := lipgloss.Width(left)
	centerLen := lipgloss.Width(center)
	rightLen := lipgloss.Width(right)

	leftGap := (innerWidth-centerLen)/2 - leftLen
	if leftGap < 1 {
		leftGap = 1
	}
	rightGap := innerWidth - leftLen - leftGap - centerLen - rightLen
	if rightGap < 1 {
		rightGap = 1
	}
	return left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
}

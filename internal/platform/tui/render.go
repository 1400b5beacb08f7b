package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/candle-run/internal/core"
	"github.com/vovakirdan/candle-run/internal/games/runner"
	"github.com/vovakirdan/candle-run/internal/session"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorGold:          lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Adjacent cells with the same color share one style run.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// drawOverlay draws lines in a bordered box centered on the screen.
func drawOverlay(dst *core.Screen, lines []string, border core.Color) {
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	boxW := min(width+6, dst.Width())
	boxH := min(len(lines)+2, dst.Height())
	box := core.NewRect((dst.Width()-boxW)/2, (dst.Height()-boxH)/2, boxW, boxH)

	dst.DrawRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box, border)
	for i, l := range lines {
		if i+1 >= boxH-1 {
			break
		}
		x := box.X + (boxW-len([]rune(l)))/2
		dst.DrawTextColored(x, box.Y+1+i, l, core.ColorBrightWhite)
	}
}

// drawNotice writes a notice on the bottom row of the field.
func drawNotice(dst *core.Screen, n session.Notice) {
	color := core.ColorBrightGreen
	if n.IsError() {
		color = core.ColorBrightRed
	}
	text := " " + n.Text + " "
	dst.DrawTextColored((dst.Width()-len([]rune(text)))/2, dst.Height()-1, text, color)
}

func menuLines(title, player string, best int) []string {
	lines := []string{strings.ToUpper(title), ""}
	if player != "" {
		lines = append(lines, "Player: "+player)
	}
	lines = append(lines,
		fmt.Sprintf("Best: %d", best),
		"",
		"Jump the red candles, grab the green ones",
		"space to jump, twice in the air later on",
		"",
		"enter to start",
	)
	return lines
}

func gameOverLines(stats runner.TerminalStats, best int, n session.Notice) []string {
	scoreLine := fmt.Sprintf("Score: %d", stats.Score)
	if stats.Score > 0 && stats.Score >= best {
		scoreLine += "  NEW BEST"
	}

	lines := []string{
		"GAME OVER",
		"",
		scoreLine,
		fmt.Sprintf("Best: %d", best),
		fmt.Sprintf("Time: %.1fs", stats.SurvivalTime),
		fmt.Sprintf("Dodged: %d  Collected: %d", stats.ObstaclesDodged, stats.Collected),
		fmt.Sprintf("Max combo: %d", stats.MaxCombo),
		fmt.Sprintf("World: %s  Speed: %s", stats.World, stats.Speed),
	}
	if n.Text != "" {
		lines = append(lines, "", n.Text)
	}
	return append(lines, "", "r to restart, q to quit")
}

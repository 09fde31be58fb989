package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkwok/lifecore/types"
)

// renderStatusBar produces a full-width inverted status line showing the
// calendar, the current location, and the money balance.
func (m Model) renderStatusBar() string {
	ti := m.engine.TimeInfo()

	dayKind := "workday"
	if ti.IsWeekend {
		dayKind = "weekend"
	}
	clock := fmt.Sprintf(" Day %d %02d:00 (%s)", ti.Day, ti.Hour, dayKind)
	if ti.IsNight {
		clock += " night"
	}

	locName := "?"
	if loc, ok := m.defs.Locations[int(m.engine.Store.Get(types.ResLocation))]; ok {
		locName = loc.DisplayName(m.runner.Lang)
	}

	money := strconv.FormatFloat(m.engine.Store.Get(types.ResMoney), 'f', -1, 64)
	left := fmt.Sprintf("%s | %s", clock, locName)
	right := fmt.Sprintf("$%s | t=%d ", money, ti.Current)

	if m.engine.Store.GameOver() {
		right = "GAME OVER | " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

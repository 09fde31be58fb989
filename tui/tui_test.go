package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkwok/lifecore/cli"
	"github.com/mkwok/lifecore/engine"
	"github.com/mkwok/lifecore/engine/state"
	"github.com/mkwok/lifecore/types"
)

// testDefs returns minimal content definitions for TUI testing.
func testDefs() *state.Defs {
	d := &state.Defs{
		Resources: map[int]types.Resource{
			1:  {ID: 1, Name: "时间", NameEN: "Time", Initial: 14, Min: 0, Max: 1e9},
			2:  {ID: 2, Name: "金钱", NameEN: "Money", Initial: 1000, Min: 0, Max: 999999},
			61: {ID: 61, Name: "位置", NameEN: "Location", Initial: 1, Min: 0, Max: 99},
		},
		Events: map[int]types.Event{
			1: {ID: 1, Name: "工作", NameEN: "Work", TimeCost: 1,
				Changes: map[int]float64{2: 100}},
		},
		Locations: map[int]types.Location{
			1: {ID: 1, Name: "家", NameEN: "Home"},
		},
		Items: map[int]types.Item{},
		Texts: map[int]types.Text{},
	}
	d.Index()
	return d
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	defs := testDefs()
	eng := engine.New(defs)
	runner := &cli.CLI{Engine: eng, Defs: defs, Lang: types.LangEN}
	return New(eng, defs, runner)
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"Event Work completed", kindNarrative},
		{"You worked through the afternoon.", kindNarrative},
		{"[Saved as slot1]", kindSystem},
		{"! Rent collector came knocking", kindTempEvent},
		{"* Salary deposited", kindTask},
		{"=== Ending ===", kindEnding},
		{"    Money +100", kindDelta},
		{"Conditions not met", kindError},
		{"Event not found", kindError},
		{"Not in correct location", kindError},
		{"Game is over", kindError},
		{"", kindNarrative},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestRunLine_CapturesCLIOutput(t *testing.T) {
	m := newTestModel(t)

	lines := m.runLine("res 2")
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "Money: 1000") {
		t.Errorf("expected resource output, got %q", joined)
	}
}

func TestWindowSize_BuildsViewport(t *testing.T) {
	m := sized(newTestModel(t))

	if !m.ready {
		t.Fatal("model should be ready after the first resize")
	}
	if m.viewport.Width != 80 || m.viewport.Height != 22 {
		t.Errorf("viewport = %dx%d, want 80x22", m.viewport.Width, m.viewport.Height)
	}
}

func TestHandleEnter_RunsCommand(t *testing.T) {
	m := sized(newTestModel(t))

	m.input.SetValue("do 1")
	updated, _ := m.handleEnter()
	m = updated.(Model)

	var texts []string
	for _, rl := range m.rawLines {
		texts = append(texts, rl.text)
	}
	joined := strings.Join(texts, "\n")
	if !strings.Contains(joined, "> do 1") {
		t.Errorf("expected echoed input in transcript, got:\n%s", joined)
	}
	if !strings.Contains(joined, "Event Work completed") {
		t.Errorf("expected event result in transcript, got:\n%s", joined)
	}
	if m.input.Value() != "" {
		t.Error("input should clear after submit")
	}
	if m.engine.Store.Get(2) != 1100 {
		t.Errorf("money = %v, want 1100", m.engine.Store.Get(2))
	}
}

func TestHandleEnter_EmptyInputIsIgnored(t *testing.T) {
	m := sized(newTestModel(t))

	updated, _ := m.handleEnter()
	m = updated.(Model)
	if len(m.rawLines) != 0 {
		t.Errorf("empty input should add nothing, got %d lines", len(m.rawLines))
	}
}

func TestHandleEnter_Quit(t *testing.T) {
	m := sized(newTestModel(t))

	m.input.SetValue("/quit")
	updated, cmd := m.handleEnter()
	m = updated.(Model)
	if !m.quitting {
		t.Error("expected quitting=true for /quit")
	}
	if cmd == nil {
		t.Error("expected a quit command")
	}
}

func TestHistoryNavigation(t *testing.T) {
	m := sized(newTestModel(t))

	for _, line := range []string{"time", "res 2"} {
		m.input.SetValue(line)
		updated, _ := m.handleEnter()
		m = updated.(Model)
	}

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	updated, _ := m.Update(up)
	m = updated.(Model)
	if m.input.Value() != "res 2" {
		t.Errorf("after up: input = %q, want res 2", m.input.Value())
	}

	updated, _ = m.Update(up)
	m = updated.(Model)
	if m.input.Value() != "time" {
		t.Errorf("after up up: input = %q, want time", m.input.Value())
	}

	// At the oldest entry, up stays put.
	updated, _ = m.Update(up)
	m = updated.(Model)
	if m.input.Value() != "time" {
		t.Errorf("at boundary: input = %q, want time", m.input.Value())
	}

	updated, _ = m.Update(down)
	m = updated.(Model)
	if m.input.Value() != "res 2" {
		t.Errorf("after down: input = %q, want res 2", m.input.Value())
	}

	// Walking past the newest entry clears the line.
	updated, _ = m.Update(down)
	m = updated.(Model)
	if m.input.Value() != "" {
		t.Errorf("past newest: input = %q, want empty", m.input.Value())
	}
}

func TestHistory_SkipsConsecutiveDuplicates(t *testing.T) {
	m := sized(newTestModel(t))

	for i := 0; i < 3; i++ {
		m.input.SetValue("time")
		updated, _ := m.handleEnter()
		m = updated.(Model)
	}
	if len(m.history) != 1 {
		t.Errorf("history = %d entries, want 1", len(m.history))
	}
}

func TestRenderStatusBar(t *testing.T) {
	m := sized(newTestModel(t))

	bar := m.renderStatusBar()
	for _, want := range []string{"Day 1", "07:00", "workday", "Home", "$1000", "t=14"} {
		if !strings.Contains(bar, want) {
			t.Errorf("status bar missing %q:\n%s", want, bar)
		}
	}
	if strings.Contains(bar, "GAME OVER") {
		t.Error("fresh game should not show GAME OVER")
	}
}

func TestView_QuittingIsBlank(t *testing.T) {
	m := sized(newTestModel(t))
	m.quitting = true
	if m.View() != "" {
		t.Error("quitting view should be empty")
	}
}

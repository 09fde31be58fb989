// Package tui provides a Bubble Tea terminal UI for the lifecore engine.
package tui

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkwok/lifecore/cli"
	"github.com/mkwok/lifecore/engine"
	"github.com/mkwok/lifecore/engine/state"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-style when the terminal is resized.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool // true for echoed player input
}

// Model is the Bubble Tea model for the lifecore TUI. Commands are
// executed by an embedded CLI whose output is captured into the
// viewport, so both frontends share one command surface.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs
	runner *cli.CLI
	buf    *bytes.Buffer

	viewport viewport.Model
	input    textinput.Model

	rawLines []rawLine
	history  []string
	histPos  int // len(history) = not navigating

	width    int
	height   int
	ready    bool
	quitting bool
}

// gameOutputMsg carries output lines into the Update loop.
type gameOutputMsg struct {
	input string // echoed player input (empty for intro)
	lines []string
}

// New creates a TUI model wired to the given engine and CLI runner.
// The runner's Out is redirected into the viewport.
func New(eng *engine.Engine, defs *state.Defs, runner *cli.CLI) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	buf := &bytes.Buffer{}
	runner.Out = buf

	return Model{
		engine:  eng,
		defs:    defs,
		runner:  runner,
		buf:     buf,
		input:   ti,
		histPos: 0,
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs, runner *cli.CLI) error {
	m := New(eng, defs, runner)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command producing the welcome text.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		lines := []string{"lifecore — type /help for commands", ""}
		lines = append(lines, m.runLine("time")...)
		return gameOutputMsg{lines: lines}
	}
}

// runLine executes one input line through the shared CLI and returns
// the captured output split into lines.
func (m Model) runLine(input string) []string {
	m.buf.Reset()
	m.runner.HandleLine(input)
	out := strings.TrimRight(m.buf.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if len(m.history) > 0 && m.histPos > 0 {
				m.histPos--
				m.input.SetValue(m.history[m.histPos])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histPos < len(m.history) {
				m.histPos++
				if m.histPos == len(m.history) {
					m.input.SetValue("")
				} else {
					m.input.SetValue(m.history[m.histPos])
					m.input.CursorEnd()
				}
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	if len(m.history) == 0 || m.history[len(m.history)-1] != input {
		m.history = append(m.history, input)
	}
	m.histPos = len(m.history)

	if input == "/quit" || input == "/exit" {
		m.quitting = true
		return m, tea.Quit
	}

	lines := m.runLine(input)
	m = m.appendOutput(gameOutputMsg{input: input, lines: lines})
	return m, nil
}

// appendOutput adds lines to the transcript and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	for _, line := range msg.lines {
		m.rawLines = append(m.rawLines, rawLine{text: line, kind: classifyLine(line)})
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()
	return m
}

// refreshViewport re-styles the transcript and scrolls to the bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	var styled []string
	for _, rl := range m.rawLines {
		switch {
		case rl.text == "":
			styled = append(styled, "")
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(rl.text))
		default:
			styled = append(styled, renderLineKind(rl.text, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}

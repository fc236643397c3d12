package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gatelink/sync-bridge/bridge"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateCompose modelState = iota
	stateShowTranscript
)

// input indexes into interactiveModel.inputs.
const (
	inputMethod = iota
	inputPath
	inputQuery
	inputHeaders
	inputBody
	inputCount
)

type interactiveModel struct {
	err        error
	bridge     *bridge.Bridge
	cleanup    func()
	wasmFile   string
	transcript []string
	inputs     []textinput.Model
	focusIdx   int
	state      modelState
}

type resultMsg struct {
	err   error
	lines []string
}

func newInteractiveModel(b *bridge.Bridge, cleanup func(), wasmFile string) *interactiveModel {
	labels := [inputCount]struct{ prompt, placeholder, initial string }{
		{"method:  ", "GET", "GET"},
		{"path:    ", "/", "/"},
		{"query:   ", "a=1&b=2", ""},
		{"headers: ", "name:value,name2:value2", ""},
		{"body:    ", "request body", ""},
	}
	inputs := make([]textinput.Model, inputCount)
	for i, l := range labels {
		ti := textinput.New()
		ti.Prompt = l.prompt
		ti.Placeholder = l.placeholder
		ti.SetValue(l.initial)
		ti.Width = 48
		if i == 0 {
			ti.Focus()
		}
		inputs[i] = ti
	}
	return &interactiveModel{
		bridge:   b,
		cleanup:  cleanup,
		wasmFile: wasmFile,
		inputs:   inputs,
		state:    stateCompose,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cleanup()
			return m, tea.Quit

		case "q":
			if m.state == stateShowTranscript {
				m.cleanup()
				return m, tea.Quit
			}

		case "tab", "shift+tab", "down", "up":
			if m.state == stateCompose {
				step := 1
				if msg.String() == "shift+tab" || msg.String() == "up" {
					step = len(m.inputs) - 1
				}
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + step) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
				return m, nil
			}

		case "enter":
			switch m.state {
			case stateCompose:
				return m, m.sendRequest
			case stateShowTranscript:
				m.state = stateCompose
				m.transcript = nil
				m.err = nil
			}

		case "esc":
			if m.state == stateShowTranscript {
				m.state = stateCompose
				m.transcript = nil
				m.err = nil
			}
		}

	case resultMsg:
		m.transcript = msg.lines
		m.err = msg.err
		m.state = stateShowTranscript
	}

	if m.state == stateCompose {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *interactiveModel) sendRequest() tea.Msg {
	scope := buildScope(
		valueOr(m.inputs[inputMethod].Value(), "GET"),
		valueOr(m.inputs[inputPath].Value(), "/"),
		m.inputs[inputQuery].Value(),
		m.inputs[inputHeaders].Value(),
	)
	lines, err := dispatch(context.Background(), m.bridge, scope, []byte(m.inputs[inputBody].Value()))
	return resultMsg{lines: lines, err: err}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	app := m.wasmFile
	if app == "" {
		app = "built-in echo"
	}
	b.WriteString(titleStyle.Render("sync-bridge · "+app) + "\n\n")

	switch m.state {
	case stateCompose:
		for i := range m.inputs {
			b.WriteString(m.inputs[i].View() + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("tab: next field · enter: send · ctrl+c: quit"))

	case stateShowTranscript:
		if m.err != nil {
			b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
		}
		for _, line := range m.transcript {
			b.WriteString(eventStyle.Render(line) + "\n")
		}
		if m.err == nil && len(m.transcript) > 0 {
			b.WriteString(resultStyle.Render("response complete") + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("enter/esc: new request · q: quit"))
	}

	return b.String()
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func runInteractive(wasmFile, configPath string) error {
	b, cleanup, err := buildBridge(context.Background(), wasmFile, configPath)
	if err != nil {
		return err
	}
	p := tea.NewProgram(newInteractiveModel(b, cleanup, wasmFile))
	_, err = p.Run()
	return err
}

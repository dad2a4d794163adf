package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/orchestrator"
)

// stageOrder is the fixed progression a validation run walks through.
var stageOrder = []orchestrator.Stage{
	orchestrator.StageDispatching,
	orchestrator.StageLocatingRun,
	orchestrator.StagePolling,
	orchestrator.StageFetchingArtifacts,
	orchestrator.StageDone,
}

var stageLabels = map[orchestrator.Stage]string{
	orchestrator.StageDispatching:       "Dispatching workflow",
	orchestrator.StageLocatingRun:       "Locating workflow run",
	orchestrator.StagePolling:           "Waiting for completion",
	orchestrator.StageFetchingArtifacts: "Fetching artifacts",
	orchestrator.StageDone:              "Decoding results",
}

type model struct {
	st   styles
	spin spinner.Model

	validationType string
	templateRepo   string
	minScore       float64

	deps    *services
	current orchestrator.Stage
	handle  core.RunHandle
	done    *validationDoneMsg
	err     error

	width    int
	quitting bool
}

func initialModel(theme ThemeName, validationType, templateRepo string, minScore float64) model {
	st := GetTheme(theme)
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		st:             st,
		spin:           sp,
		validationType: validationType,
		templateRepo:   templateRepo,
		minScore:       minScore,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(initServicesCmd(), m.spin.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case servicesReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.deps = msg.deps
		return m, tea.Batch(
			runValidationCmd(m.deps, m.validationType, m.templateRepo, m.minScore),
			waitForStageCmd(m.deps.stages),
		)

	case stageMsg:
		m.current = msg.stage
		if msg.handle.RunID != 0 {
			m.handle = msg.handle
		}
		return m, waitForStageCmd(m.deps.stages)

	case validationDoneMsg:
		m.done = &msg
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case errorMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.st.header.Render("TEMPLATE DOCTOR"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s validation of %s\n\n", m.validationType, m.templateRepo))

	switch {
	case m.err != nil:
		b.WriteString(m.st.error.Render("✗ " + m.err.Error()))
		b.WriteString("\n")
	case m.deps == nil:
		b.WriteString(m.spin.View() + " Loading configuration...\n")
	default:
		b.WriteString(m.renderStages())
	}

	if m.done != nil && m.done.err == nil {
		b.WriteString(m.renderResult())
	}

	b.WriteString(m.st.footer.Render("q: quit"))
	return m.st.app.Render(b.String())
}

func (m model) renderStages() string {
	var b strings.Builder
	reached := stageIndex(m.current)
	finished := m.done != nil

	for i, stage := range stageOrder {
		label := stageLabels[stage]
		switch {
		case finished || i < reached:
			b.WriteString(m.st.stageDone.Render("  ✓ " + label))
		case i == reached:
			b.WriteString(m.st.stage.Render("  " + m.spin.View() + " " + label))
		default:
			b.WriteString(m.st.inactive.Render("  · " + label))
		}
		b.WriteString("\n")
	}

	if m.handle.RunID != 0 {
		b.WriteString("\n")
		b.WriteString(m.st.inactive.Render(fmt.Sprintf("  run %d", m.handle.RunID)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderResult() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.done.compliant {
		b.WriteString(m.st.success.Render("COMPLIANT"))
	} else {
		b.WriteString(m.st.error.Render("NOT COMPLIANT"))
	}
	b.WriteString("\n")
	for _, line := range m.done.summary {
		b.WriteString("  " + line + "\n")
	}
	if m.done.runURL != "" {
		b.WriteString(m.st.url.Render(m.done.runURL))
		b.WriteString("\n")
	}
	return b.String()
}

func stageIndex(stage orchestrator.Stage) int {
	for i, s := range stageOrder {
		if s == stage {
			return i
		}
	}
	return 0
}

package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docload/internal/domain/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

type progressMsg models.Progress

type doneMsg struct {
	result *models.ImportResult
}

// importView renders the pipeline's progress channel. It is a pure consumer:
// missing a snapshot only skips a frame, never affects the run.
type importView struct {
	progress  <-chan models.Progress
	results   <-chan *models.ImportResult
	cancel    func()
	last      models.Progress
	result    *models.ImportResult
	cancelled bool
	width     int
}

func newImportView(progress <-chan models.Progress, results <-chan *models.ImportResult, cancel func()) importView {
	return importView{
		progress: progress,
		results:  results,
		cancel:   cancel,
		width:    80,
	}
}

func (v importView) waitForUpdate() tea.Msg {
	select {
	case p, ok := <-v.progress:
		if !ok {
			return doneMsg{result: <-v.results}
		}
		return progressMsg(p)
	case result := <-v.results:
		return doneMsg{result: result}
	}
}

func (v importView) Init() tea.Cmd {
	return v.waitForUpdate
}

func (v importView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Ask the pipeline to stop, then wait for its rollback
			v.cancelled = true
			v.cancel()
			return v, nil
		}
		return v, nil

	case progressMsg:
		v.last = models.Progress(msg)
		return v, v.waitForUpdate

	case doneMsg:
		v.result = msg.result
		return v, tea.Quit
	}

	return v, nil
}

func (v importView) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("docload: archive import") + "\n\n")

	p := v.last
	sb.WriteString(fmt.Sprintf("%s %3d%%\n", renderBar(p.Percent, v.width-10), p.Percent))
	sb.WriteString(p.Operation + "\n")
	if p.CurrentFile != "" {
		sb.WriteString(dimStyle.Render("file: "+p.CurrentFile) + "\n")
	}
	sb.WriteString(fmt.Sprintf("folders %d/%d   files %d/%d\n",
		p.ProcessedFolders, p.TotalFolders, p.ProcessedFiles, p.TotalFiles))

	switch {
	case v.result != nil && v.result.Success:
		sb.WriteString(okStyle.Render("✓ "+v.result.Message) + "\n")
	case v.result != nil:
		sb.WriteString(errStyle.Render("✗ "+v.result.Message) + "\n")
	case v.cancelled:
		sb.WriteString(errStyle.Render("cancelling, rolling back...") + "\n")
	default:
		sb.WriteString(dimStyle.Render("press q to cancel") + "\n")
	}

	return sb.String()
}

func renderBar(percent, width int) string {
	if width < 10 {
		width = 10
	}
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	return barStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

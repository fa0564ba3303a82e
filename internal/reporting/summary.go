// Package reporting renders the startup summary printed once all services are launched.
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"omnibus/internal/launcher"
	"omnibus/internal/settings"
)

var (
	colorMuted  = lipgloss.AdaptiveColor{Light: "#606060", Dark: "#A0A0A0"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#005FAF", Dark: "#5FAFFF"}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

// NewRunID returns an identifier for one orchestrator run.
func NewRunID() string {
	return uuid.New().String()
}

// Process is one launched service.
type Process struct {
	Name string
	PID  int
}

// Summary is what the orchestrator reports after startup.
type Summary struct {
	RunID     string
	Part      string
	URL       string
	Team      string
	HTTPSMode settings.TLSMode
	Ports     map[string]int
	Processes []Process
}

// NewSummary collects the summary of a completed start.
func NewSummary(runID string, s *settings.Settings, result *launcher.Result) Summary {
	sum := Summary{
		RunID:     runID,
		Part:      result.Part,
		URL:       s.URL,
		Team:      s.Team,
		HTTPSMode: s.HTTPSMode,
		Ports:     s.Ports(),
	}
	for _, h := range result.Handles {
		sum.Processes = append(sum.Processes, Process{Name: h.Name(), PID: h.PID()})
	}
	return sum
}

// Render writes the summary as a bordered panel.
func (s Summary) Render(w io.Writer) error {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
	}

	https := string(s.HTTPSMode)
	if https == "" {
		https = "off"
	}
	ports := make([]string, 0, len(s.Ports))
	for _, name := range settings.SortedPortNames(s.Ports) {
		ports = append(ports, fmt.Sprintf("%s=%d", name, s.Ports[name]))
	}

	lines := []string{
		titleStyle.Render("Grist omnibus"),
		row("run", s.RunID),
		row("part", s.Part),
		row("url", s.URL),
		row("team", s.Team),
		row("https", https),
		row("ports", strings.Join(ports, " ")),
	}
	if len(s.Processes) == 0 {
		lines = append(lines, row("processes", "none"))
	}
	for _, p := range s.Processes {
		lines = append(lines, row("process", fmt.Sprintf("%s (PID %d)", p.Name, p.PID)))
	}

	_, err := fmt.Fprintln(w, panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	return err
}

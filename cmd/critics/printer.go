package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dusk-indust/critics/internal/persona"
	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/status"
	"github.com/dusk-indust/critics/internal/synth"
)

// Palette.
var (
	colorSuccess = lipgloss.Color("#00E676")
	colorDanger  = lipgloss.Color("#FF5252")
	colorAccent  = lipgloss.Color("#FFD700")
	colorMuted   = lipgloss.Color("#8C8C8C")
)

var (
	styleHeader  = lipgloss.NewStyle().Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleDanger  = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	styleAccent  = lipgloss.NewStyle().Foreground(colorAccent)
)

var priorityStyles = map[synth.Priority]lipgloss.Style{
	synth.PriorityCritical: styleDanger,
	synth.PriorityHigh:     styleAccent,
	synth.PriorityMedium:   lipgloss.NewStyle(),
	synth.PriorityLow:      styleMuted,
}

// printer renders review output for a terminal.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func personaStyle(color string) lipgloss.Style {
	if color == "" {
		return styleHeader
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// Event prints one review stream event.
func (p *printer) Event(ev review.Event) {
	switch ev.Type {
	case review.EventPersonaStatus:
		name := personaStyle(ev.PersonaColor).Render(ev.PersonaName)
		switch ev.Status {
		case review.StatusQueued:
			fmt.Fprintf(p.w, "  %s %s %s\n", styleMuted.Render("○"), name, styleMuted.Render("(queued)"))
		case review.StatusRunning:
			fmt.Fprintf(p.w, "  ● %s...\n", name)
		case review.StatusCompleted:
			fmt.Fprintf(p.w, "  %s %s complete\n", styleSuccess.Render("✓"), name)
		default:
			fmt.Fprintln(p.w, review.FormatEvent(ev))
		}
	case review.EventComment:
		c := ev.Comment
		if c == nil {
			return
		}
		name := personaStyle(c.PersonaColor).Render(c.PersonaName)
		if c.IsFailure() {
			fmt.Fprintf(p.w, "  %s %s: %s\n", styleDanger.Render("✗"), name, c.Content)
			return
		}
		lines := styleMuted.Render(fmt.Sprintf("lines %d-%d", c.Anchor.StartLine+1, c.Anchor.EndLine+1))
		fmt.Fprintf(p.w, "  [%s] %s: %s\n", name, lines, c.Content)
	case review.EventDone:
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, styleHeader.Render(fmt.Sprintf("Done: %d comment(s)", ev.TotalComments)))
		if ev.ReviewID != "" {
			fmt.Fprintf(p.w, "Review ID: %s\n", ev.ReviewID)
		}
	default:
		fmt.Fprintln(p.w, review.FormatEvent(ev))
	}
}

// Findings prints synthesized findings, one block each.
func (p *printer) Findings(metas []synth.MetaComment) {
	if len(metas) == 0 {
		fmt.Fprintln(p.w, "No findings.")
		return
	}
	fmt.Fprintln(p.w, styleHeader.Render(fmt.Sprintf("%d finding(s)", len(metas))))
	for i, m := range metas {
		tag := priorityStyles[m.Priority].Render(strings.ToUpper(string(m.Priority)))
		fmt.Fprintf(p.w, "\n%d. [%s] %s %s\n", i+1, tag, m.Category,
			styleMuted.Render(fmt.Sprintf("(lines %d-%d)", m.Anchor.StartLine+1, m.Anchor.EndLine+1)))
		fmt.Fprintf(p.w, "   %s\n", m.Content)

		names := make([]string, 0, len(m.Sources))
		for _, s := range m.Sources {
			names = append(names, personaStyle(s.PersonaColor).Render(s.PersonaName))
		}
		if len(names) > 0 {
			fmt.Fprintf(p.w, "   from: %s\n", strings.Join(names, ", "))
		}
	}
}

// Personas prints the persona catalog.
func (p *printer) Personas(list []persona.Persona) {
	for _, ps := range list {
		fmt.Fprintf(p.w, "%s %s\n", personaStyle(ps.Color).Render(ps.Name), styleMuted.Render("("+ps.ID+")"))
		if ps.Description != "" {
			fmt.Fprintf(p.w, "  %s\n", ps.Description)
		}
		if len(ps.FocusTags) > 0 {
			fmt.Fprintf(p.w, "  focus: %s\n", strings.Join(ps.FocusTags, ", "))
		}
	}
}

// Report prints a readiness report.
func (p *printer) Report(r status.Report) {
	for _, c := range r.Checks {
		mark := styleSuccess.Render("✓")
		switch c.Status {
		case status.Degraded:
			mark = styleAccent.Render("!")
		case status.Unhealthy:
			mark = styleDanger.Render("✗")
		}
		fmt.Fprintf(p.w, "  %s %-20s %s\n", mark, c.Name, c.Message)
	}
	fmt.Fprintf(p.w, "\nStatus: %s\n", r.Status)
}

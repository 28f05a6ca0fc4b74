package catalogctl

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/catalog"
)

var (
	colorSuccess = lipgloss.Color("#22c55e")
	colorError   = lipgloss.Color("#ef4444")
	colorWarning = lipgloss.Color("#eab308")
	colorInfo    = lipgloss.Color("#06b6d4")
	colorMuted   = lipgloss.Color("#6b7280")
	colorAccent  = lipgloss.Color("#8b5cf6")
)

const (
	symbolSuccess = "✓"
	symbolError   = "✗"
	symbolWarning = "⚠"
	symbolBullet  = "•"
)

// styles are bound to one writer's renderer, so piping output or setting
// NO_COLOR drops the escape sequences.
type styles struct {
	name    lipgloss.Style
	muted   lipgloss.Style
	tag     lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		name:    r.NewStyle().Bold(true).Foreground(colorAccent),
		muted:   r.NewStyle().Foreground(colorMuted),
		tag:     r.NewStyle().Foreground(colorInfo),
		success: r.NewStyle().Foreground(colorSuccess),
		warning: r.NewStyle().Foreground(colorWarning),
		failure: r.NewStyle().Foreground(colorError),
	}
}

func renderMetas(w io.Writer, metas []catalog.PluginMeta) {
	s := newStyles(w)
	if len(metas) == 0 {
		fmt.Fprintln(w, s.muted.Render("No plugins found"))
		return
	}
	for _, m := range metas {
		fmt.Fprintf(w, "%s %s\n", s.name.Render(m.Name), s.muted.Render("v"+m.Version))
		if m.Description != "" {
			fmt.Fprintf(w, "  %s\n", m.Description)
		}
		if details := metaDetails(s, m.Tags, m.Components, m.HasMCPs); details != "" {
			fmt.Fprintf(w, "  %s\n", details)
		}
	}
	fmt.Fprintln(w, s.muted.Render(fmt.Sprintf("%d plugin(s)", len(metas))))
}

func renderPlugin(w io.Writer, p catalog.Plugin) {
	s := newStyles(w)
	fmt.Fprintf(w, "%s %s\n", s.name.Render(p.Name), s.muted.Render("v"+p.Version))
	if p.Description != "" {
		fmt.Fprintf(w, "  %s\n", p.Description)
	}
	if details := metaDetails(s, p.Tags, p.Components, p.HasMCPs); details != "" {
		fmt.Fprintf(w, "  %s\n", details)
	}
	for _, c := range p.Components {
		fmt.Fprintf(w, "\n%s\n%s\n", s.muted.Render("── "+string(c)+" ──"), strings.TrimRight(p.Content(c), "\n"))
	}
}

func metaDetails(s styles, tags []string, components []catalog.ComponentType, hasMCPs bool) string {
	var parts []string
	if len(tags) > 0 {
		rendered := make([]string, 0, len(tags))
		for _, tag := range tags {
			rendered = append(rendered, s.tag.Render("#"+tag))
		}
		parts = append(parts, strings.Join(rendered, " "))
	}
	if len(components) > 0 {
		names := make([]string, 0, len(components))
		for _, c := range components {
			names = append(names, string(c))
		}
		parts = append(parts, s.muted.Render(strings.Join(names, ", ")))
	}
	if hasMCPs {
		parts = append(parts, s.muted.Render("mcp"))
	}
	return strings.Join(parts, " "+s.muted.Render(symbolBullet)+" ")
}

func renderSynced(w io.Writer, synced []SyncedCommand, dest string) {
	s := newStyles(w)
	for _, c := range synced {
		fmt.Fprintln(w, s.success.Render(symbolSuccess+" Synced: "+c.Plugin))
	}
	fmt.Fprintf(w, "Done. Synced %d skill(s) to %s\n", len(synced), dest)
}

func renderWarning(w io.Writer, msg string) {
	s := newStyles(w)
	fmt.Fprintln(w, s.warning.Render(symbolWarning+" "+msg))
}

// FormatError renders err for display on w.
func FormatError(w io.Writer, err error) string {
	return newStyles(w).failure.Render(symbolError + " " + err.Error())
}

package notifier

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"UpriseScanner/internal/model"
	"UpriseScanner/internal/scanner"
	"UpriseScanner/internal/strategy"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	verdictStyles = map[model.Verdict]lipgloss.Style{
		model.StrongBuy: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")),
		model.Buy:       lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")),
		model.Wait:      lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		model.Sell:      lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
	}

	lightStyles = map[strategy.Light]lipgloss.Style{
		strategy.Green:  lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		strategy.Yellow: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		strategy.Red:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		strategy.Gray:   mutedStyle,
	}
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// RenderConsole writes the run as styled terminal tables.
func RenderConsole(w io.Writer, r *scanner.Report) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Uprise scan %s", r.StartedAt.Format(timeLayout))))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("run %s | provider %s | %d candidates | %s",
		r.RunID, r.Provider, r.Candidates, r.Elapsed().Round(time.Millisecond))))
	b.WriteString("\n")
	if r.Partial {
		b.WriteString(verdictStyles[model.Wait].Render("cancelled: results are partial"))
		b.WriteString("\n")
	}

	if len(r.Results) > 0 {
		t := newTable("Code", "Name", "Close", "RSI", "K/D", "Score", "Verdict", "Breakout")
		for _, res := range r.Results {
			breakout := ""
			if res.Breakout {
				breakout = "yes"
			}
			t.Row(res.Code, res.Name, fmt.Sprintf("%.0f", res.Latest.Close), res.Latest.RSI.String(),
				res.Latest.SlowK.String()+"/"+res.Latest.SlowD.String(),
				fmt.Sprintf("%.1f", res.Score), verdictStyles[res.Verdict].Render(res.Verdict.String()), breakout)
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	if len(r.Rejected) > 0 {
		t := newTable("Code", "Name", "Stage", "Reason")
		for _, rej := range r.Rejected {
			t.Row(rej.Code, rej.Name, rej.Stage, rej.Reason)
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderAnalysis writes a single-instrument report.
func RenderAnalysis(w io.Writer, a *scanner.Analysis) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s as of %s", a.Code, a.AsOf.Format(model.DateLayout))))
	b.WriteString("\n")
	t := newTable("Factor", "Points", "Commentary")
	for _, f := range a.Signal.Factors {
		t.Row(f.Name, fmt.Sprintf("%+.1f", f.Points), f.Commentary)
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	verdict := verdictStyles[a.Signal.Verdict].Render(a.Signal.Verdict.String())
	fmt.Fprintf(&b, "score %.1f %s", a.Signal.Score, verdict)
	if a.Breakout {
		b.WriteString(" (pullback breakout)")
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderHealth writes the fundamentals traffic lights.
func RenderHealth(w io.Writer, h *scanner.Health) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(h.Code + " fundamentals"))
	b.WriteString("\n")
	t := newTable("Aspect", "Light", "Detail")
	r := h.Report
	for _, a := range []strategy.Aspect{r.Stability, r.EarningsCapacity, r.Valuation, r.RelativeValuation} {
		t.Row(a.Name, lightStyles[a.Light].Render(string(a.Light)), a.Detail)
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(r.Summary())
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

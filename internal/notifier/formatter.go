package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"UpriseScanner/internal/model"
	"UpriseScanner/internal/recorder"
	"UpriseScanner/internal/scanner"
	"UpriseScanner/internal/strategy"
)

const timeLayout = "2006-01-02 15:04"

var verdictIcons = map[model.Verdict]string{
	model.StrongBuy: "🚀",
	model.Buy:       "🟢",
	model.Wait:      "⏳",
	model.Sell:      "🔻",
}

var lightIcons = map[strategy.Light]string{
	strategy.Green:  "🟢",
	strategy.Yellow: "🟡",
	strategy.Red:    "🔴",
	strategy.Gray:   "⚪",
}

func label(code, name string) string {
	if name == "" {
		return html.EscapeString(code)
	}
	return fmt.Sprintf("%s (%s)", html.EscapeString(name), html.EscapeString(code))
}

// FormatScanReport renders a run as a Telegram HTML message. Buy signals are
// listed in full; Wait and Sell are counted.
func FormatScanReport(r *scanner.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 <b>Uprise scan</b> | %s\n", r.StartedAt.Format(timeLayout))
	fmt.Fprintf(&b, "Candidates: %d | Emitted: %d | Rejected: %d\n", r.Candidates, len(r.Results), len(r.Rejected))
	if r.Partial {
		b.WriteString("⚠️ run cancelled, results are partial\n")
	}

	buys := r.Buys()
	if len(buys) == 0 {
		b.WriteString("\nNo buy signals today.\n")
	}
	for _, res := range buys {
		fmt.Fprintf(&b, "\n%s <b>%s</b> %s score %.1f", verdictIcons[res.Verdict], label(res.Code, res.Name), res.Verdict, res.Score)
		if res.Breakout {
			b.WriteString(" ⚡breakout")
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "   close %.0f | RSI %s | K %s / D %s\n", res.Latest.Close, res.Latest.RSI, res.Latest.SlowK, res.Latest.SlowD)
		for _, f := range res.Factors {
			if f.Points != 0 {
				fmt.Fprintf(&b, "   • %s %+.1f %s\n", f.Name, f.Points, html.EscapeString(f.Commentary))
			}
		}
	}

	if n := len(r.ByVerdict(model.Wait)); n > 0 {
		fmt.Fprintf(&b, "\n%s Wait: %d", verdictIcons[model.Wait], n)
	}
	if n := len(r.ByVerdict(model.Sell)); n > 0 {
		fmt.Fprintf(&b, "\n%s Sell: %d", verdictIcons[model.Sell], n)
	}

	if len(r.Rejected) > 0 {
		stages := r.RejectedAt()
		keys := make([]string, 0, len(stages))
		for k := range stages {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s %d", k, stages[k])
		}
		fmt.Fprintf(&b, "\n\nRejected by stage: %s", strings.Join(parts, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatAnalysis renders a single-instrument technical report.
func FormatAnalysis(a *scanner.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 <b>%s</b> technical report | %s\n", html.EscapeString(a.Code), a.AsOf.Format(model.DateLayout))
	if latest, ok := a.Latest(); ok {
		fmt.Fprintf(&b, "Close: %.0f (%d bars)\n", latest.Close, a.Bars)
		fmt.Fprintf(&b, "MACD: %s / signal %s / hist %s\n", latest.MACDLine, latest.MACDSignal, latest.MACDHist)
		fmt.Fprintf(&b, "RSI(14): %s\n", latest.RSI)
		fmt.Fprintf(&b, "Stochastic: K %s / D %s\n", latest.SlowK, latest.SlowD)
		fmt.Fprintf(&b, "OBV: %s\n", latest.OBV)
	}
	b.WriteString("\n<b>Factors</b>\n")
	for _, f := range a.Signal.Factors {
		fmt.Fprintf(&b, "  %s %+.1f %s\n", f.Name, f.Points, html.EscapeString(f.Commentary))
	}
	fmt.Fprintf(&b, "\n%s <b>%s</b> (score %.1f)", verdictIcons[a.Signal.Verdict], a.Signal.Verdict, a.Signal.Score)
	if a.Breakout {
		b.WriteString(" ⚡breakout")
	}
	return b.String()
}

// FormatHealth renders the fundamentals traffic lights.
func FormatHealth(h *scanner.Health) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏥 <b>%s</b> fundamentals\n\n", html.EscapeString(h.Code))
	r := h.Report
	for _, a := range []strategy.Aspect{r.Stability, r.EarningsCapacity, r.Valuation, r.RelativeValuation} {
		fmt.Fprintf(&b, "%s %s: %s\n", lightIcons[a.Light], a.Name, a.Detail)
	}
	fmt.Fprintf(&b, "\n%s\n", r.Summary())
	gate := "passed"
	if !h.Gate.Passed {
		gate = "failed"
	}
	fmt.Fprintf(&b, "Financial health gate: %s (%s)", gate, html.EscapeString(h.Gate.Reason))
	return b.String()
}

// FormatRuns lists recorded runs, newest first.
func FormatRuns(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "No runs recorded."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "%s %s: %d emitted / %d rejected of %d",
			r.StartedAt.Format(timeLayout), r.Provider, r.Emitted, r.Rejected, r.Candidates)
		if r.Partial {
			b.WriteString(" (partial)")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

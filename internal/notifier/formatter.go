package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"TickerScope/internal/calculator"
	"TickerScope/internal/model"
)

// FormatReport renders the latest indicators and the support/resistance levels.
func FormatReport(a *model.Analysis) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("\n--- Technical Data for %s ---\n", a.Symbol))

	b.WriteString("\nLatest Indicators:\n")
	b.WriteString(FormatIndicators(a.Frame))

	b.WriteString("\nIdentified Support Levels:\n")
	if len(a.Support) > 0 {
		b.WriteString(FormatLevels(a.Support, true))
	} else {
		b.WriteString("No significant support levels found.\n")
	}

	b.WriteString("\nIdentified Resistance Levels:\n")
	if len(a.Resistance) > 0 {
		b.WriteString(FormatLevels(a.Resistance, false))
	} else {
		b.WriteString("No significant resistance levels found.\n")
	}

	b.WriteString("\n")
	b.WriteString(formatSummary(a))
	return b.String()
}

// FormatIndicators prints the last row of every derived column as a small table.
func FormatIndicators(f *model.Frame) string {
	snap, ok := f.Last()
	if !ok {
		return "(no rows)\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "Date")
	for _, name := range snap.Order {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, snap.Date.Format("2006-01-02"))
	for _, name := range snap.Order {
		fmt.Fprintf(w, "\t%s", formatValue(snap.Value(name)))
	}
	fmt.Fprintln(w)
	w.Flush()
	return b.String()
}

// FormatLevels lists unique levels one per line as "$123.45".
func FormatLevels(levels []float64, descending bool) string {
	var b strings.Builder
	for _, l := range model.UniqueLevels(levels, descending) {
		b.WriteString(l.String())
		b.WriteString("\n")
	}
	return b.String()
}

func formatSummary(a *model.Analysis) string {
	var b strings.Builder
	snap := a.Latest()
	if high, low, err := calculator.Calculate52WeekRange(a.Frame.Bars); err == nil {
		b.WriteString(fmt.Sprintf("52-Week Range: $%.2f - $%.2f", low, high))
		if pos, err := calculator.Calculate52WeekPosition(snap.Close, high, low); err == nil {
			b.WriteString(fmt.Sprintf(" (at %.0f%% of range)", pos*100))
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Last Close: $%.2f (%s)\n", snap.Close, snap.Date.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Volume: %s\n", humanize.Comma(int64(snap.Volume))))
	return b.String()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatTelegram wraps a plain-text report for Telegram's HTML parse mode.
func FormatTelegram(report string) string {
	return "<pre>" + html.EscapeString(strings.TrimSpace(report)) + "</pre>"
}

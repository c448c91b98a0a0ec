package controllers

import (
	"fmt"
	"io"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type printer struct {
	noColor bool
}

func (p printer) colorize(color, text string) string {
	if p.noColor {
		return text
	}
	return color + text + colorReset
}

func (p printer) success(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, p.colorize(colorGreen, "✓ "+msg))
}

func (p printer) failure(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, p.colorize(colorRed, "✗ "+msg))
}

func (p printer) warning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, p.colorize(colorYellow, "⚠ "+msg))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// formatRelative renders t relative to now. Timestamps in the future count
// as "just now".
func formatRelative(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}

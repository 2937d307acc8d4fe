// Package ui holds the ANSI styling shared by CLI output
package ui

const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

func style(codes, s string) string {
	return codes + s + ColorReset
}

func Bold(s string) string { return style(ColorBold, s) }

// Heading is used for command names at the top of help output
func Heading(s string) string { return style(ColorBold+ColorCyan, s) }

func Dim(s string) string { return style(ColorDim, s) }

func Cyan(s string) string { return style(ColorCyan, s) }

func Value(s string) string { return style(ColorWhite, s) }

// Label renders a summary row label such as "Pages:"
func Label(s string) string { return style(ColorBold, s+":") }

func Success(s string) string { return style(ColorGreen, s) }

func Warn(s string) string { return style(ColorYellow, s) }

// Info is dimmed yellow, for notices that are not warnings
func Info(s string) string { return style(ColorDim+ColorYellow, s) }

func Error(s string) string { return style(ColorRed, s) }

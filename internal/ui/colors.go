// Package ui provides terminal output helpers for forge.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan)
	Header  = color.New(color.FgMagenta, color.Bold)
	Muted   = color.New(color.FgHiBlack)

	PackageName    = color.New(color.FgWhite, color.Bold)
	PackageVersion = color.New(color.FgGreen)
	PackageSource  = color.New(color.FgCyan)
	Installed      = color.New(color.FgGreen)
)

// UseColors controls whether output is colored.
var UseColors = true

// UseUnicode controls whether unicode symbols are used.
var UseUnicode = true

var (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "!"
	SymbolInfo    = "→"
	SymbolArrow   = "→"
)

// Init applies the output settings from configuration.
func Init(useColors, useUnicode bool) {
	UseColors = useColors
	UseUnicode = useUnicode

	if !useColors || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	if !useUnicode {
		SymbolSuccess = "[OK]"
		SymbolError = "[ERROR]"
		SymbolWarning = "[WARN]"
		SymbolInfo = "->"
		SymbolArrow = "->"
	}
}

// SuccessMsg prints a success message.
func SuccessMsg(format string, args ...interface{}) {
	Success.Printf(SymbolSuccess+" "+format+"\n", args...)
}

// ErrorMsg prints an error message.
func ErrorMsg(format string, args ...interface{}) {
	Error.Printf(SymbolError+" "+format+"\n", args...)
}

// WarningMsg prints a warning message.
func WarningMsg(format string, args ...interface{}) {
	Warning.Printf(SymbolWarning+" "+format+"\n", args...)
}

// InfoMsg prints an info message.
func InfoMsg(format string, args ...interface{}) {
	Info.Printf(SymbolInfo+" "+format+"\n", args...)
}

// HeaderMsg prints a section header.
func HeaderMsg(format string, args ...interface{}) {
	Header.Printf("\n"+format+"\n", args...)
}

// MutedMsg prints a dim message.
func MutedMsg(format string, args ...interface{}) {
	Muted.Printf(format+"\n", args...)
}

// Println prints a plain formatted line.
func Println(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// Bold returns a bold string.
func Bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

// Green returns a green string.
func Green(s string) string {
	return color.GreenString(s)
}

// Red returns a red string.
func Red(s string) string {
	return color.RedString(s)
}

// Yellow returns a yellow string.
func Yellow(s string) string {
	return color.YellowString(s)
}

// Cyan returns a cyan string.
func Cyan(s string) string {
	return color.CyanString(s)
}

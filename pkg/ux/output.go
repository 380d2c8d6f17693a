// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides rich terminal output styling for the scenedoctor CLI.
package ux

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Apex color palette - studio amber and graphite
var (
	ColorAmberBright = lipgloss.Color("#FFC857") // Bright amber - highlights
	ColorAmber       = lipgloss.Color("#F2A33C") // Primary amber - brand color
	ColorCopper      = lipgloss.Color("#D97D29") // Copper - accents, borders
	ColorGraphite    = lipgloss.Color("#4A4E57") // Graphite - muted text
	ColorInk         = lipgloss.Color("#1B1E24") // Ink - backgrounds

	// Semantic colors
	ColorSuccess = lipgloss.Color("#58C470") // Green for clean results
	ColorWarning = lipgloss.Color("#F4D03F") // Gold for warnings
	ColorError   = lipgloss.Color("#E74C3C") // Red for errors
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	Box        lipgloss.Style
	WarningBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorAmberBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorAmber),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorGraphite),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorAmberBright).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorCopper).
		Padding(0, 1),
	WarningBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorWarning).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// plain suppresses all styling and decoration for machine consumers.
var plain atomic.Bool

// SetPlain switches the package to undecorated output.
func SetPlain(v bool) { plain.Store(v) }

// Plain reports whether undecorated output is active.
func Plain() bool { return plain.Load() }

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Title prints a styled title
func Title(text string) {
	if Plain() {
		return
	}
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success message with checkmark
func Success(text string) {
	if Plain() {
		fmt.Fprintf(os.Stdout, "OK: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
}

// Warning prints a warning message
func Warning(text string) {
	if Plain() {
		fmt.Fprintf(os.Stderr, "WARN: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
}

// Error prints an error message
func Error(text string) {
	if Plain() {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", IconError.Render(), Styles.Error.Render(text))
}

// Info prints an informational message
func Info(text string) {
	if Plain() {
		fmt.Println(text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Muted.Render("│"), text)
}

// Muted prints muted/secondary text
func Muted(text string) {
	if Plain() {
		return
	}
	fmt.Println(Styles.Muted.Render(text))
}

// Box prints text in a rounded box
func Box(title, content string) {
	if Plain() {
		fmt.Printf("%s: %s\n", title, content)
		return
	}
	boxStyle := Styles.Box.Width(72)
	titleLine := Styles.Title.Render(title)
	fmt.Println(boxStyle.Render(titleLine + "\n" + content))
}

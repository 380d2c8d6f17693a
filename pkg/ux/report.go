// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"strings"

	"github.com/apexstudio/scenedoctor/pkg/rules"
)

// severityStyle picks the style for a finding's severity column.
func severityStyle(sev rules.Severity) func(...string) string {
	if sev == rules.SeverityError {
		return Styles.Error.Render
	}
	return Styles.Warning.Render
}

// RenderFindings formats a finding list as an aligned table, errors
// styled red and warnings gold.
func RenderFindings(findings []rules.Finding) string {
	if len(findings) == 0 {
		return ""
	}

	objWidth, matWidth, catWidth := len("OBJECT"), len("MATERIAL"), len("CATEGORY")
	for _, f := range findings {
		objWidth = max(objWidth, len(f.ObjectName))
		matWidth = max(matWidth, len(f.MaterialName))
		catWidth = max(catWidth, len(f.Category))
	}

	var b strings.Builder
	header := fmt.Sprintf("%-4s %-*s %-*s %-*s %s",
		"SEV", objWidth, "OBJECT", matWidth, "MATERIAL", catWidth, "CATEGORY", "MESSAGE")
	if Plain() {
		b.WriteString(header + "\n")
	} else {
		b.WriteString(Styles.Muted.Render(header) + "\n")
	}

	for _, f := range findings {
		icon := string(IconWarning)
		if f.Severity == rules.SeverityError {
			icon = string(IconError)
		}
		line := fmt.Sprintf("%-4s %-*s %-*s %-*s %s",
			icon, objWidth, f.ObjectName, matWidth, f.MaterialName,
			catWidth, f.Category, f.Message)
		if Plain() {
			line = fmt.Sprintf("%-7s %-*s %-*s %-*s %s",
				f.Severity, objWidth, f.ObjectName, matWidth, f.MaterialName,
				catWidth, f.Category, f.Message)
			b.WriteString(line + "\n")
			continue
		}
		b.WriteString(severityStyle(f.Severity)(line) + "\n")
	}
	return b.String()
}

// humanizeCount turns a fix-count key like "empty_slots_fixed" into a
// readable label.
func humanizeCount(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// RenderFixSummary formats non-zero fix counters as a one-line summary
// in a stable order.
func RenderFixSummary(counts map[string]int, order []string) string {
	var parts []string
	for _, key := range order {
		if n := counts[key]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, humanizeCount(key)))
		}
	}
	if len(parts) == 0 {
		return "no fixable issues found"
	}
	return "Fixed: " + strings.Join(parts, ", ")
}

// RenderTally formats the closing error/warning tally.
func RenderTally(errors, warnings int) string {
	if Plain() {
		return fmt.Sprintf("errors=%d warnings=%d", errors, warnings)
	}
	return fmt.Sprintf("%s %s  %s %s",
		Styles.Error.Render(fmt.Sprintf("%d", errors)), Styles.Muted.Render("errors"),
		Styles.Warning.Render(fmt.Sprintf("%d", warnings)), Styles.Muted.Render("warnings"))
}

// ProgressLine renders one progress milestone for interactive output.
func ProgressLine(percentage float64, message string) string {
	if Plain() {
		return fmt.Sprintf("%3.0f%% %s", percentage, message)
	}
	return fmt.Sprintf("%s %s",
		Styles.Highlight.Render(fmt.Sprintf("%3.0f%%", percentage)), message)
}

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"ufdr/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	return paint(base, statusKindColor(kind), colorize)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{paint(line, ansiBlue, colorize), paint(rule, ansiBlue, colorize)}
}

// Verifier finding kinds, in the order their summary lines are printed.
const (
	findingMissing      = "missing"
	findingHashMismatch = "hash_mismatch"
	findingSizeMismatch = "size_mismatch"
	findingInvalidEntry = "invalid_entry"
	findingOther        = "error"
)

var findingOrder = []string{findingMissing, findingHashMismatch, findingSizeMismatch, findingInvalidEntry, findingOther}

var findingLabels = map[string]string{
	findingMissing:      "Missing blobs",
	findingHashMismatch: "Hash mismatches",
	findingSizeMismatch: "Size mismatches",
	findingInvalidEntry: "Invalid entries",
	findingOther:        "Other errors",
}

// findingStatus maps a finding kind to its severity. Absent or altered
// content is an error; an unusable manifest line is a warning.
func findingStatus(kind string) statusKind {
	if kind == findingInvalidEntry {
		return statusWarn
	}
	return statusError
}

// verifyStatusLines renders the manifest summary followed by one line per
// finding kind present.
func verifyStatusLines(view verifyView, colorize bool) []string {
	counts := make(map[string]int, len(findingOrder))
	overall := statusOK
	for _, f := range view.Findings {
		counts[f.Kind]++
		if findingStatus(f.Kind) > overall {
			overall = findingStatus(f.Kind)
		}
	}
	if overall == statusOK && len(view.Skipped) > 0 {
		overall = statusWarn
	}

	message := fmt.Sprintf("%d of %d entries, %d findings, %d skipped lines",
		view.Verified, view.Checked, len(view.Findings), len(view.Skipped))
	lines := []string{renderStatusLine("Manifest", overall, message, colorize)}
	for _, kind := range findingOrder {
		if n := counts[kind]; n > 0 {
			lines = append(lines, renderStatusLine(findingLabels[kind], findingStatus(kind), strconv.Itoa(n), colorize))
		}
	}
	if n := len(view.Skipped); n > 0 {
		lines = append(lines, renderStatusLine("Skipped lines", statusWarn, strconv.Itoa(n), colorize))
	}
	return lines
}

// preflightLines renders a section of preflight results.
func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := renderSectionHeader("Preflight", colorize)
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
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
	statusLabelWidth = 22
	statusIndent     = "  "
)

var statusKinds = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// renderStatusLine formats "label: [KIND] message", colored per kind.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	meta, ok := statusKinds[kind]
	if !ok {
		meta = statusKinds[statusInfo]
	}
	status := "[" + meta.label + "]"
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status)
	if colorize {
		return meta.color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// shouldColorize reports whether writer is an interactive terminal.
func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

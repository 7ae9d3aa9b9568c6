package main

import (
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Output streams wrapped for Windows ANSI translation, matching the
// terminal-detection pattern phredsort's help/error printing relies on.
var (
	stdout = colorable.NewColorableStdout()
	stderr = colorable.NewColorableStderr()

	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func init() {
	color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func printLogo() {
	fig := figure.NewFigure("fxindex", "standard", true)
	stdout.Write([]byte(bold(cyan(fig.String()))))
}

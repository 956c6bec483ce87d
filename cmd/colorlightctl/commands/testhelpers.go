package commands

import (
	"bytes"
	"io"
	"os"
	"regexp"

	"github.com/pterm/pterm"
)

// captureStdout captures stdout during the execution of f, disables pterm color, and strips ANSI codes from the output.
func captureStdout(f func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Save original pterm settings and printer writers
	oldPrintColor := pterm.PrintColor
	oldOutput := pterm.Output
	oldDefaultTableWriter := pterm.DefaultTable.Writer
	oldSuccessWriter := pterm.Success.Writer
	oldInfoWriter := pterm.Info.Writer
	oldWarningWriter := pterm.Warning.Writer
	oldErrorWriter := pterm.Error.Writer

	pterm.PrintColor = false
	pterm.Output = true
	pterm.DefaultTable.Writer = w
	pterm.Success.Writer = w
	pterm.Info.Writer = w
	pterm.Warning.Writer = w
	pterm.Error.Writer = w
	pterm.SetDefaultOutput(w)

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	f()

	w.Close()
	os.Stdout = oldStdout

	// Restore pterm
	pterm.PrintColor = oldPrintColor
	pterm.Output = oldOutput
	pterm.DefaultTable.Writer = oldDefaultTableWriter
	pterm.Success.Writer = oldSuccessWriter
	pterm.Info.Writer = oldInfoWriter
	pterm.Warning.Writer = oldWarningWriter
	pterm.Error.Writer = oldErrorWriter
	pterm.SetDefaultOutput(oldStdout)

	out := <-outC

	// Strip ANSI escape codes
	ansiRegex := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return ansiRegex.ReplaceAllString(out, "")
}

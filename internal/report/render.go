package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ZacxDev/ultrawide-splitter/pkg/types"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// ColorEnabled reports whether f is an interactive terminal.
func ColorEnabled(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Render writes a human-readable summary of r to w.
func Render(w io.Writer, r *SplitResult, color bool) error {
	fmt.Fprintf(w, "Input:   %s (%dx%d)\n", r.InputPath, r.Width, r.Height)
	fmt.Fprintf(w, "Quality: %s\n", r.Params)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Side", "Output", "Size", "Status", "Elapsed"})

	for _, side := range types.Sides() {
		o := r.Side(side)
		path, size := "-", "-"
		if o.Output != nil {
			path = filepath.Base(o.Output.Path)
			size = humanize.IBytes(uint64(o.Output.Size))
		}
		tw.AppendRow(table.Row{
			side.String(),
			path,
			size,
			status(o, color),
			o.Elapsed.Round(time.Millisecond).String(),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	if _, err := fmt.Fprintln(w, tw.Render()); err != nil {
		return err
	}

	for _, warning := range r.Warnings {
		line := "warning: " + warning
		if color {
			line = text.FgYellow.Sprint(line)
		}
		fmt.Fprintln(w, line)
	}
	for _, side := range types.Sides() {
		if o := r.Side(side); o.Err != nil {
			fmt.Fprintf(w, "%s: %v\n", side, o.Err)
		}
	}

	_, err := fmt.Fprintf(w, "Finished in %s\n", r.Duration.Round(time.Millisecond))
	return err
}

func status(o SideOutcome, color bool) string {
	label := "ok"
	c := text.FgGreen
	if !o.Succeeded() {
		label, c = "failed", text.FgRed
	}
	if o.Attempts > 1 {
		label = fmt.Sprintf("%s (%d attempts)", label, o.Attempts)
	}
	if color {
		return c.Sprint(label)
	}
	return label
}

// Package ui provides terminal output and prompts for the studynotes CLI.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Console writes status lines to out and errors to errOut, and reads answers from in.
type Console struct {
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
	noColor bool
	animate bool
}

// NewConsole builds a Console over the given streams. Spinners only animate
// when out is a terminal.
func NewConsole(in io.Reader, out, errOut io.Writer, noColor bool) *Console {
	c := &Console{
		in:      bufio.NewReader(in),
		out:     out,
		errOut:  errOut,
		noColor: noColor || color.NoColor,
	}
	if f, ok := out.(*os.File); ok {
		c.animate = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return c
}

// Stdio is a Console on the process's standard streams.
func Stdio(noColor bool) *Console {
	return NewConsole(os.Stdin, os.Stdout, os.Stderr, noColor)
}

func (c *Console) paint(w io.Writer, attr color.Attribute, symbol, format string, args ...any) {
	line := fmt.Sprintf("%s %s\n", symbol, fmt.Sprintf(format, args...))
	if c.noColor {
		_, _ = io.WriteString(w, line)
		return
	}
	col := color.New(attr)
	col.EnableColor()
	_, _ = col.Fprint(w, line)
}

// Success prints a success message.
func (c *Console) Success(format string, args ...any) {
	c.paint(c.out, color.FgGreen, "✓", format, args...)
}

// Error prints an error message.
func (c *Console) Error(format string, args ...any) {
	c.paint(c.errOut, color.FgRed, "✗", format, args...)
}

// Warning prints a warning message.
func (c *Console) Warning(format string, args ...any) {
	c.paint(c.out, color.FgYellow, "⚠", format, args...)
}

// Info prints an informational message.
func (c *Console) Info(format string, args ...any) {
	c.paint(c.out, color.FgCyan, "ℹ", format, args...)
}

// Message prints a plain line.
func (c *Console) Message(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format+"\n", args...)
}

// Section prints a title underlined with '='.
func (c *Console) Section(title string) {
	_, _ = fmt.Fprintf(c.out, "\n%s\n%s\n\n", title, strings.Repeat("=", len([]rune(title))))
}

// Block prints a titled body, e.g. a summary or quiz.
func (c *Console) Block(title, body string) {
	c.Section(title)
	_, _ = fmt.Fprintln(c.out, strings.TrimRight(body, "\n"))
}

// Table prints rows in aligned columns under headers.
func (c *Console) Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	sep := make([]string, len(headers))
	for i, h := range headers {
		sep[i] = strings.Repeat("-", len(h))
	}
	_, _ = fmt.Fprintln(w, strings.Join(sep, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

// Prompt prints message and returns the next trimmed input line.
// At end of input it returns io.EOF.
func (c *Console) Prompt(message string) (string, error) {
	_, _ = fmt.Fprintf(c.out, "%s: ", message)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Spinner is an indeterminate progress indicator.
type Spinner struct {
	s *spinner.Spinner
}

// Spinner returns a spinner with message. It does nothing unless out is a terminal.
func (c *Console) Spinner(message string) *Spinner {
	if !c.animate {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.out))
	s.Suffix = " " + message
	return &Spinner{s: s}
}

func (s *Spinner) Start() {
	if s.s != nil {
		s.s.Start()
	}
}

func (s *Spinner) Stop() {
	if s.s != nil {
		s.s.Stop()
	}
}

package repair

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter asks the operator to confirm or choose. Interactive runs use the
// stdin-backed implementation; tests inject a scripted one.
type Prompter interface {
	// Confirm asks a yes/no question. Default is no.
	Confirm(msg string) (bool, error)

	// Choose presents numbered options and returns the chosen index.
	Choose(msg string, options []string) (int, error)
}

// StdinPrompter reads answers line by line from an input stream and writes
// prompts to an output stream.
type StdinPrompter struct {
	r *bufio.Reader
	w io.Writer
}

// NewStdinPrompter wraps the given streams, typically os.Stdin and os.Stdout.
func NewStdinPrompter(r io.Reader, w io.Writer) *StdinPrompter {
	return &StdinPrompter{r: bufio.NewReader(r), w: w}
}

func (p *StdinPrompter) Confirm(msg string) (bool, error) {
	fmt.Fprintf(p.w, "%s [y/N]: ", msg)
	line, err := p.r.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func (p *StdinPrompter) Choose(msg string, options []string) (int, error) {
	fmt.Fprintln(p.w, msg)
	for i, opt := range options {
		fmt.Fprintf(p.w, "  %d) %s\n", i+1, opt)
	}
	for {
		fmt.Fprintf(p.w, "choice [1-%d]: ", len(options))
		line, err := p.r.ReadString('\n')
		if err != nil && line == "" {
			return 0, fmt.Errorf("reading choice: %w", err)
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintln(p.w, "invalid choice")
		if err != nil {
			return 0, fmt.Errorf("reading choice: %w", err)
		}
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/peterh/liner"
)

// LineReader is the line-oriented terminal input used by the CLI.
// *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// errInputAborted is returned by ReadLine when the user pressed Ctrl+C.
var errInputAborted = errors.New("input aborted")

// CLIHandler manages the command-line interface interactions
type CLIHandler struct {
	reader LineReader
	out    *termenv.Output
	errOut *termenv.Output
}

// NewLinerReader returns an Emacs-style line editor reading from the terminal.
func NewLinerReader() *liner.State {
	rl := liner.NewLiner()
	rl.SetCtrlCAborts(true)
	return rl
}

// NewCLIHandler creates a CLI handler that reads with reader, renders to out
// and writes notices to errOut. Each stream gets colors only when it is a
// terminal that supports them.
func NewCLIHandler(reader LineReader, out *termenv.Output, errOut io.Writer) *CLIHandler {
	return &CLIHandler{
		reader: reader,
		out:    out,
		errOut: termenv.NewOutput(errOut),
	}
}

// Close properly closes the CLI handler
func (c *CLIHandler) Close() error {
	return c.reader.Close()
}

// ReadLine prompts for a single line. It returns io.EOF at end of input and
// errInputAborted on Ctrl+C; the line itself is returned unmodified.
func (c *CLIHandler) ReadLine(prompt string) (string, error) {
	line, err := c.reader.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", errInputAborted
		}
		return "", err
	}
	return line, nil
}

// ReadSecret prompts for a line without echoing it. Where input cannot be
// hidden (redirected output, unsupported terminal) it reads a plain line.
func (c *CLIHandler) ReadSecret(prompt string) (string, error) {
	line, err := c.reader.PasswordPrompt(prompt)
	if err != nil && !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
		line, err = c.reader.Prompt(prompt)
	}
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", errInputAborted
		}
		return "", err
	}
	return line, nil
}

// ReadChoice prompts for a menu selection. Non-numeric input yields 0.
func (c *CLIHandler) ReadChoice(prompt string) (int, error) {
	line, err := c.ReadLine(prompt)
	if err != nil {
		return 0, err
	}
	var choice int
	if _, err := fmt.Sscanf(strings.TrimSpace(line), "%d", &choice); err != nil {
		return 0, nil
	}
	return choice, nil
}

// AddToHistory adds user input to command history
func (c *CLIHandler) AddToHistory(input string) {
	if input != "" {
		c.reader.AppendHistory(input)
	}
}

// Println writes a plain line.
func (c *CLIHandler) Println(text string) {
	fmt.Fprintln(c.out, text)
}

// PrintGreeting displays the chat opening line.
func (c *CLIHandler) PrintGreeting(userName string) {
	fmt.Fprintf(c.out, "%s: Hello! Type '%s' to quit.\n", c.label(userName, "6"), ExitCommand)
}

// PrintResponse displays the assistant's response with a colored label
func (c *CLIHandler) PrintResponse(assistantName, response string) {
	fmt.Fprintf(c.out, "%s: %s\n", c.label(assistantName, "2"), response)
}

// PrintNotice displays a single-line message about something that went wrong.
func (c *CLIHandler) PrintNotice(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(c.errOut, c.errOut.String(msg).Foreground(c.errOut.Color("3")).String())
}

func (c *CLIHandler) label(name, color string) string {
	return c.out.String(name).Foreground(c.out.Color(color)).Bold().String()
}

// UserPrompt is the prompt shown while waiting for the user's next message.
func UserPrompt(userName string) string {
	return userName + ": "
}

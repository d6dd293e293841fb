package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/muesli/termenv"
	"github.com/peterh/liner"
)

// scriptedReader replays canned input lines. Once the script runs out every
// prompt returns io.EOF.
type scriptedReader struct {
	lines   []scriptedLine
	prompts []string
	history []string

	// passwordErr, when set, fails every PasswordPrompt the way liner does
	// when input cannot be hidden.
	passwordErr error
}

type scriptedLine struct {
	text string
	err  error
}

func newScriptedReader(lines ...string) *scriptedReader {
	r := &scriptedReader{}
	for _, line := range lines {
		r.lines = append(r.lines, scriptedLine{text: line})
	}
	return r
}

// thenAbort queues a Ctrl+C.
func (r *scriptedReader) thenAbort() *scriptedReader {
	r.lines = append(r.lines, scriptedLine{err: liner.ErrPromptAborted})
	return r
}

// thenError queues a read failure.
func (r *scriptedReader) thenError(err error) *scriptedReader {
	r.lines = append(r.lines, scriptedLine{err: err})
	return r
}

func (r *scriptedReader) thenLines(lines ...string) *scriptedReader {
	for _, line := range lines {
		r.lines = append(r.lines, scriptedLine{text: line})
	}
	return r
}

func (r *scriptedReader) next(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line.text, line.err
}

func (r *scriptedReader) Prompt(prompt string) (string, error) { return r.next(prompt) }
func (r *scriptedReader) AppendHistory(item string)            { r.history = append(r.history, item) }
func (r *scriptedReader) Close() error                         { return nil }

func (r *scriptedReader) PasswordPrompt(prompt string) (string, error) {
	if r.passwordErr != nil {
		r.prompts = append(r.prompts, prompt)
		return "", r.passwordErr
	}
	return r.next(prompt)
}

// fakeCompleter records every request and answers from a queue of results.
type fakeCompleter struct {
	replies     []string
	errs        []error
	calls       [][]Message
	credentials []string
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []Message, credential string) (string, error) {
	call := len(f.calls)
	f.calls = append(f.calls, append([]Message(nil), messages...))
	f.credentials = append(f.credentials, credential)
	if call < len(f.errs) && f.errs[call] != nil {
		return "", f.errs[call]
	}
	if call < len(f.replies) {
		return f.replies[call], nil
	}
	return "reply", nil
}

type testTerminal struct {
	cli    *CLIHandler
	reader *scriptedReader
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestTerminal(reader *scriptedReader) *testTerminal {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	output := termenv.NewOutput(out, termenv.WithProfile(termenv.Ascii))
	return &testTerminal{
		cli:    NewCLIHandler(reader, output, errOut),
		reader: reader,
		out:    out,
		errOut: errOut,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() Settings {
	return Settings{
		APIKey:        "sk-test-credential",
		AssistantName: DefaultAssistantName,
		Personality:   DefaultPersonality,
		UserName:      DefaultUserName,
	}
}

func makeTurns(t *testing.T, n int) []Turn {
	t.Helper()
	turns := make([]Turn, n)
	for i := range turns {
		turns[i] = Turn{
			UserMessage:    "question " + string(rune('A'+i%26)) + string(rune('0'+i/26)),
			AssistantReply: "answer " + string(rune('A'+i%26)) + string(rune('0'+i/26)),
		}
	}
	return turns
}

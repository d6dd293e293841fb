package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// SessionState is a node of the chat session's state machine.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateReady
	StateAwaitingInput
	StateAwaitingResponse
	StateTerminated
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateAwaitingInput:
		return "awaiting-input"
	case StateAwaitingResponse:
		return "awaiting-response"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Session runs one interactive conversation. It owns its history; nothing
// about the conversation outlives the session.
type Session struct {
	settings  Settings
	completer Completer
	cli       *CLIHandler
	history   *History
	logger    *slog.Logger

	state  SessionState
	prompt string
}

// NewSession creates a session in StateUninitialized.
func NewSession(settings Settings, completer Completer, cli *CLIHandler, logger *slog.Logger) *Session {
	return &Session{
		settings:  settings,
		completer: completer,
		cli:       cli,
		history:   NewHistory(HistoryCapacity),
		logger:    logger,
		state:     StateUninitialized,
	}
}

// State returns the current state.
func (s *Session) State() SessionState { return s.state }

// History returns the session's conversation history.
func (s *Session) History() *History { return s.history }

// Run drives the session until it terminates.
func (s *Session) Run(ctx context.Context) {
	for s.state != StateTerminated {
		s.Step(ctx)
	}
}

// Step performs a single state transition.
func (s *Session) Step(ctx context.Context) {
	from := s.state
	switch s.state {
	case StateUninitialized:
		s.start()
	case StateReady:
		s.state = StateAwaitingInput
	case StateAwaitingInput:
		s.readPrompt()
	case StateAwaitingResponse:
		s.exchange(ctx)
	case StateTerminated:
	}
	if from != s.state {
		s.logger.Debug("session transition", "from", from.String(), "to", s.state.String())
	}
}

func (s *Session) start() {
	s.history.Clear()
	if s.settings.APIKey == "" {
		s.cli.PrintNotice("No API key configured. Run with -key to add one.")
		s.state = StateTerminated
		return
	}
	s.cli.PrintGreeting(s.settings.UserName)
	s.state = StateReady
}

func (s *Session) readPrompt() {
	line, err := s.cli.ReadLine(UserPrompt(s.settings.UserName))
	switch {
	case err == nil:
	case errors.Is(err, errInputAborted):
		s.state = StateReady
		return
	case errors.Is(err, io.EOF):
		s.cli.Println("")
		s.state = StateTerminated
		return
	default:
		s.cli.PrintNotice("Read error: %v", err)
		s.logger.Warn("reading input failed", "error", err)
		s.state = StateTerminated
		return
	}

	if line == ExitCommand {
		s.state = StateTerminated
		return
	}
	s.cli.AddToHistory(line)
	s.prompt = line
	s.state = StateAwaitingResponse
}

// exchange sends the pending prompt. Only a successful reply is recorded in
// history; a failed turn leaves it untouched.
func (s *Session) exchange(ctx context.Context) {
	prompt := s.prompt
	s.prompt = ""
	s.state = StateReady

	messages := BuildMessages(s.settings.Personality, s.history, prompt)
	reply, err := s.completer.Complete(ctx, messages, s.settings.APIKey)
	if err != nil {
		s.cli.PrintNotice("%s", describeCompletionError(err))
		s.logger.Warn("completion failed", "error", err, "history_turns", s.history.Len())
		return
	}

	s.history.Append(Turn{UserMessage: prompt, AssistantReply: reply})
	s.cli.PrintResponse(s.settings.AssistantName, reply)
}

func describeCompletionError(err error) string {
	var transportErr *TransportError
	var protocolErr *ProtocolError
	switch {
	case errors.As(err, &transportErr):
		return "Could not reach the API: " + transportErr.Err.Error()
	case errors.As(err, &protocolErr):
		return protocolErr.Error()
	case errors.Is(err, ErrMissingCredential):
		return "No API key configured. Run with -key to add one."
	default:
		return "Chat error: " + err.Error()
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/muesli/termenv"
)

// mode is a step of the outer dispatch loop. Menus hand control back by
// returning the next mode instead of re-entering the program.
type mode int

const (
	modeExit mode = iota
	modeHelp
	modeKey
	modeCustomize
	modeChat
)

func (m mode) String() string {
	switch m {
	case modeHelp:
		return "help"
	case modeKey:
		return "key"
	case modeCustomize:
		return "customize"
	case modeChat:
		return "chat"
	default:
		return "exit"
	}
}

// App wires the settings store, the terminal and the gateway together.
type App struct {
	store     *Store
	cli       *CLIHandler
	completer Completer
	logger    *slog.Logger
}

// NewApp creates an App around already-constructed components.
func NewApp(store *Store, cli *CLIHandler, completer Completer, logger *slog.Logger) *App {
	return &App{
		store:     store,
		cli:       cli,
		completer: completer,
		logger:    logger,
	}
}

// Run dispatches on the first argument and drives the mode loop. Every log
// line of the run, menus and chat alike, carries one session_id. The
// returned exit status is always 0.
func (a *App) Run(ctx context.Context, args []string) int {
	next := initialMode(args)
	a.logger = a.logger.With("session_id", uuid.NewString())
	a.logger.Debug("starting", "mode", next.String(), "settings", a.store.Path())

	if next != modeHelp && !a.store.Exists() {
		if err := a.store.InitializeDefaults(); err != nil {
			a.cli.PrintNotice("Could not create settings file: %v", err)
			a.logger.Error("initializing settings failed", "error", err)
		} else {
			a.printWelcome()
		}
	}

	for next != modeExit {
		switch next {
		case modeHelp:
			a.printHelp()
			next = modeExit
		case modeKey:
			next = a.keyMenu()
		case modeCustomize:
			next = a.customizeMenu()
		case modeChat:
			session := NewSession(LoadSettings(a.store), a.completer, a.cli, a.logger)
			session.Run(ctx)
			next = modeExit
		default:
			next = modeExit
		}
	}
	return 0
}

// initialMode looks only at the first argument. Unknown flags start the chat.
func initialMode(args []string) mode {
	if len(args) < 2 {
		return modeChat
	}
	switch args[1] {
	case "-help":
		return modeHelp
	case "-key":
		return modeKey
	case "-customize":
		return modeCustomize
	default:
		return modeChat
	}
}

func (a *App) printWelcome() {
	a.cli.Println("Welcome to " + AppName + "!")
	a.cli.Println("This is a command-line interface for chatting with a large language model.")
	a.cli.Println("You'll need an OpenAI API key to use this app.")
	a.cli.Println("Settings are stored in " + a.store.Path())
	a.cli.Println("")
	a.printFlags()
}

func (a *App) printHelp() {
	a.cli.Println(AppName + " " + AppVersion + " - Command Line Interface for ChatGPT")
	a.cli.Println("Usage:")
	a.cli.Println("  cligpt              Start the app")
	a.cli.Println("  cligpt -key         Manage your API key")
	a.cli.Println("  cligpt -customize   Customize the assistant's settings")
	a.cli.Println("  cligpt -help        Show this help message")
}

func (a *App) printFlags() {
	a.cli.Println("Flags:")
	a.cli.Println("  -help        Show this help message")
	a.cli.Println("  -key         Manage your API key (view, update, remove)")
	a.cli.Println("  -customize   Customize the assistant's name, personality, or your name")
}

// newLogger writes text logs to path, or discards them when path is empty.
// Logs never share the terminal with the conversation.
func newLogger(path string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nopCloser{}, nil
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return
	}

	logger, logCloser, err := newLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v; logging disabled\n", err)
		logger, logCloser, _ = newLogger("")
	}
	defer logCloser.Close()

	cli := NewCLIHandler(NewLinerReader(), termenv.NewOutput(os.Stdout), os.Stderr)
	defer cli.Close()

	app := NewApp(Open(cfg.StorePath), cli, NewGateway(cfg, logger), logger)
	app.Run(context.Background(), os.Args)
}

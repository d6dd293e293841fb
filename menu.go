package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const credentialMask = "*****"

// MaskCredential renders a credential for display without revealing it:
// the first five and last three characters around a fixed mask. Keys too
// short to keep anything hidden are shown as the mask alone.
func MaskCredential(credential string) string {
	if credential == "" {
		return "No API key found."
	}
	runes := []rune(credential)
	if len(runes) < 9 {
		return credentialMask
	}
	return string(runes[:5]) + credentialMask + string(runes[len(runes)-3:])
}

// ValidatePersonality rejects personalities longer than PersonalityMaxLength characters.
func ValidatePersonality(personality string) error {
	if n := utf8.RuneCountInString(personality); n > PersonalityMaxLength {
		return &ValidationError{
			Field:  "personality",
			Reason: fmt.Sprintf("%d characters, the limit is %d", n, PersonalityMaxLength),
		}
	}
	return nil
}

// Menu option numbers shared by both settings menus.
const (
	menuStartChat = 4
	menuQuit      = 5
)

// keyMenu lets the user view, replace or remove the stored API key.
func (a *App) keyMenu() mode {
	for {
		a.cli.Println("API Key Management:")
		a.cli.Println("1. View API Key")
		a.cli.Println("2. Update API Key")
		a.cli.Println("3. Remove API Key")
		a.cli.Println("4. Start chat")
		a.cli.Println("5. Quit")
		choice, err := a.cli.ReadChoice("Enter your choice: ")
		if err != nil {
			return a.menuInputEnded(err)
		}

		switch choice {
		case 1:
			a.cli.Println("Current API key: " + MaskCredential(a.store.Get(KeyAPIKey, DefaultAPIKey)))
		case 2:
			key, err := a.cli.ReadSecret("Enter your new API key: ")
			if err != nil {
				return a.menuInputEnded(err)
			}
			key = strings.TrimSpace(key)
			if key == "" {
				a.cli.Println("No key entered; API key unchanged.")
				continue
			}
			if a.saveSetting(KeyAPIKey, key) {
				a.cli.Println("API key updated: " + MaskCredential(key))
			}
		case 3:
			if a.saveSetting(KeyAPIKey, "") {
				a.cli.Println("API key removed.")
			}
		case menuStartChat:
			return modeChat
		case menuQuit:
			return modeExit
		default:
			a.cli.Println("Invalid choice.")
		}
	}
}

// customizeMenu edits the assistant's name, its personality and the user's name.
func (a *App) customizeMenu() mode {
	for {
		assistant := a.store.Get(KeyAssistantName, DefaultAssistantName)
		a.cli.Println("Customize Settings:")
		a.cli.Println("1. " + assistant + "'s Name")
		a.cli.Println("2. " + assistant + "'s Personality")
		a.cli.Println("3. Your Name")
		a.cli.Println("4. Start chat")
		a.cli.Println("5. Quit")
		choice, err := a.cli.ReadChoice("Enter your choice: ")
		if err != nil {
			return a.menuInputEnded(err)
		}

		switch choice {
		case 1:
			name, err := a.cli.ReadLine("Enter the assistant's new name: ")
			if err != nil {
				return a.menuInputEnded(err)
			}
			a.saveSetting(KeyAssistantName, name)
		case 2:
			if next, done := a.editPersonality(); done {
				return next
			}
		case 3:
			name, err := a.cli.ReadLine("Enter your new name: ")
			if err != nil {
				return a.menuInputEnded(err)
			}
			a.saveSetting(KeyUserName, name)
		case menuStartChat:
			return modeChat
		case menuQuit:
			return modeExit
		default:
			a.cli.Println("Invalid choice.")
		}
	}
}

// editPersonality prompts until a personality within the length cap is
// entered or the user declines to retry. done is set when input ended and
// the menu must leave with next.
func (a *App) editPersonality() (next mode, done bool) {
	for {
		prompt := fmt.Sprintf("Enter the assistant's new personality (max %d characters): ", PersonalityMaxLength)
		personality, err := a.cli.ReadLine(prompt)
		if err != nil {
			return a.menuInputEnded(err), true
		}

		if err := ValidatePersonality(personality); err != nil {
			a.cli.PrintNotice("Personality too long! (%v)", err)
			retry, err := a.cli.ReadLine("Would you like to try again? (yes/no): ")
			if err != nil {
				return a.menuInputEnded(err), true
			}
			if strings.EqualFold(strings.TrimSpace(retry), "no") {
				return 0, false
			}
			continue
		}

		a.saveSetting(KeyPersonality, personality)
		return 0, false
	}
}

// saveSetting persists one setting and reports failures inline.
func (a *App) saveSetting(key, value string) bool {
	if err := a.store.Set(key, value); err != nil {
		var writeErr *ConfigWriteError
		if errors.As(err, &writeErr) {
			a.cli.PrintNotice("Could not save settings; previous settings kept: %v", writeErr.Err)
		} else {
			a.cli.PrintNotice("%v", err)
		}
		a.logger.Warn("saving setting failed", "key", key, "error", err)
		return false
	}
	a.logger.Info("setting saved", "key", key)
	return true
}

// menuInputEnded maps a read failure inside a menu to the next mode. Ctrl+C,
// end of input and read errors all leave the program; only the last is
// reported.
func (a *App) menuInputEnded(err error) mode {
	switch {
	case errors.Is(err, errInputAborted):
	case errors.Is(err, io.EOF):
		a.cli.Println("")
	default:
		a.cli.PrintNotice("Read error: %v", err)
		a.logger.Warn("reading menu input failed", "error", err)
	}
	return modeExit
}

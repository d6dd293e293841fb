package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Setting is a single KEY=VALUE entry of the settings file. Entries read from
// a line without '=' keep the raw text in Value and an empty Key, and are
// written back untouched.
type Setting struct {
	Key   string
	Value string
	raw   bool
}

// ConfigWriteError reports a failed rewrite of the settings file. The file on
// disk still holds its previous contents.
type ConfigWriteError struct {
	Path string
	Err  error
}

func (e *ConfigWriteError) Error() string {
	return fmt.Sprintf("saving settings to %s: %v", e.Path, e.Err)
}

func (e *ConfigWriteError) Unwrap() error { return e.Err }

// ValidationError reports a setting value the user must correct.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Store is the durable key/value settings store backed by a flat file of
// KEY=VALUE lines. The file is parsed once by Open; reads are served from
// memory and every Set rewrites the whole file atomically.
type Store struct {
	path string

	mu      sync.Mutex
	entries []Setting
	exists  bool
}

// Open loads the settings file at path. A missing or unreadable file is not an
// error: the store is empty and Exists reports false.
func Open(path string) *Store {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	s.entries = parseSettings(data)
	s.exists = true
	return s
}

// Path returns the location of the backing file.
func (s *Store) Path() string { return s.path }

// Exists reports whether the backing file was present when loaded or has
// been written since.
func (s *Store) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exists
}

// Get returns the value of the first entry named key, or defaultValue.
func (s *Store) Get(key, defaultValue string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if !entry.raw && entry.Key == key {
			return entry.Value
		}
	}
	return defaultValue
}

// Entries returns a copy of the key/value entries in file order.
func (s *Store) Entries() []Setting {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Setting, 0, len(s.entries))
	for _, entry := range s.entries {
		if !entry.raw {
			out = append(out, entry)
		}
	}
	return out
}

// Set replaces the value of every entry named key, or appends a new entry at
// the end when none exists, then rewrites the file. The in-memory view only
// changes once the new file is in place.
func (s *Store) Set(key, value string) error {
	if err := validateSetting(key, value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Setting, 0, len(s.entries)+1)
	updated := false
	for _, entry := range s.entries {
		if !entry.raw && entry.Key == key {
			entry.Value = value
			updated = true
		}
		next = append(next, entry)
	}
	if !updated {
		next = append(next, Setting{Key: key, Value: value})
	}

	return s.commit(next)
}

// InitializeDefaults replaces the file with every recognized key at its
// documented default.
func (s *Store) InitializeDefaults() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(defaultSettings())
}

// commit writes entries to disk and adopts them. Callers hold s.mu.
func (s *Store) commit(entries []Setting) error {
	if err := writeFileAtomic(s.path, serializeSettings(entries)); err != nil {
		return &ConfigWriteError{Path: s.path, Err: err}
	}
	s.entries = entries
	s.exists = true
	return nil
}

func validateSetting(key, value string) error {
	if key == "" {
		return &ValidationError{Field: "setting key", Reason: "must not be empty"}
	}
	if strings.ContainsAny(key, "=\r\n") {
		return &ValidationError{Field: "setting key", Reason: fmt.Sprintf("%q must not contain '=' or line breaks", key)}
	}
	if strings.ContainsAny(value, "\r\n") {
		return &ValidationError{Field: key, Reason: "must not contain line breaks"}
	}
	return nil
}

func parseSettings(data []byte) []Setting {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	entries := make([]Setting, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			entries = append(entries, Setting{Value: line, raw: true})
			continue
		}
		entries = append(entries, Setting{Key: key, Value: value})
	}
	return entries
}

func serializeSettings(entries []Setting) []byte {
	var buf bytes.Buffer
	for _, entry := range entries {
		if entry.raw {
			buf.WriteString(entry.Value)
		} else {
			buf.WriteString(entry.Key)
			buf.WriteByte('=')
			buf.WriteString(entry.Value)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// writeFileAtomic writes data to a temporary file next to path, syncs it and
// renames it into place, so readers see either the old or the new contents.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary settings file: %w", err)
	}
	temporaryPath := file.Name()

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary settings file: %w", err)
	}
	if err := file.Chmod(0o600); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("setting permissions on temporary settings file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary settings file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary settings file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming settings file into place: %w", err)
	}

	// The rename is only durable once the directory entry is flushed.
	if parent, err := os.Open(dir); err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}

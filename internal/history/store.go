// Package history persists the definition commands of a session so that its
// Context can be rebuilt on the next start, together with a few settings.
package history

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/funvibe/funski/internal/command"
	"github.com/funvibe/funski/internal/config"
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/parser"
)

// ErrClosed is returned by every method of a closed store.
var ErrClosed = errors.New("history: store is closed")

// SettingDisplayStyle keeps the display style chosen in the REPL.
const SettingDisplayStyle = "display_style"

// Entry is one recorded command in Lazy K syntax, e.g. "``kxy = x" or "i = i".
type Entry struct {
	ID      string    `yaml:"id"`
	Command string    `yaml:"command"`
	Time    time.Time `yaml:"time"`
}

func newEntry(cmd string) Entry {
	return Entry{ID: uuid.NewString(), Command: cmd, Time: time.Now().UTC()}
}

// Store is an append-only log of definition commands plus a key/value
// settings table. Implementations are safe for concurrent use.
type Store interface {
	Append(ctx context.Context, cmd string) (Entry, error)
	// Entries returns the log in append order.
	Entries(ctx context.Context) ([]Entry, error)
	Setting(ctx context.Context, key string) (value string, ok bool, err error)
	SetSetting(ctx context.Context, key, value string) error
	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(cfg config.History) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverSQLite, config.DriverYAML:
	default:
		return nil, fmt.Errorf("history: unknown driver %q", cfg.Driver)
	}

	path, err := config.ExpandHome(cfg.Path)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == config.DriverYAML {
		return OpenYAML(path)
	}
	return OpenSQLite(path)
}

// warnf reports a history entry that Replay skipped.
var warnf = log.Printf

// Replay runs every recorded command against c in order and returns how many
// were applied. An entry that does not parse, or that is not a definition or
// deletion, is skipped with a warning. Only a failure to read the store is
// returned as an error.
func Replay(ctx context.Context, store Store, c *env.Context) (int, error) {
	entries, err := store.Entries(ctx)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, entry := range entries {
		cmd, err := parser.ParseCommand(entry.Command)
		if err == nil {
			err = Apply(c, cmd)
		}
		if err != nil {
			warnf("history: skipping entry %s %q: %v", entry.ID, entry.Command, err)
			continue
		}
		applied++
	}
	return applied, nil
}

// Apply performs a Del or Update command on c.
func Apply(c *env.Context, cmd command.Command) error {
	if !command.Mutates(cmd) {
		return fmt.Errorf("not a definition: %s", cmd)
	}
	switch cmd := cmd.(type) {
	case command.Del:
		c.Del(cmd.ID)
	case command.Update:
		c.Def(cmd.Func)
	}
	return nil
}

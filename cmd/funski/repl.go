package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/funvibe/funski/internal/config"
	"github.com/funvibe/funski/internal/engine"
	"github.com/funvibe/funski/internal/expr"
	"github.com/funvibe/funski/internal/prettyprinter"
	"github.com/funvibe/funski/internal/rpc"
)

const (
	prompt = "> "
	banner = "funski: Lazy K combinator calculus. Type :help for commands."
)

const replHelp = "  ``kxy = x     define k\n" +
	"  k = k         delete k\n" +
	"  ? k           show the definition of k\n" +
	"  ?             list definitions and result aliases\n" +
	"  EXPR          reduce step by step\n" +
	"  ! EXPR        last step only; !N first N, !-N last N\n" +
	"  ~ EXPR        expand definitions; ~~ ~~~ ~~~~ abstract to SKI, SK, Iota\n" +
	"  :style NAME   switch to lazy_k or ecmascript\n" +
	"  :quit         leave\n"

// colorEnabled reports whether stdout is a terminal and NO_COLOR is unset.
func colorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// underline marks the next redex on a color terminal.
func underline(f *prettyprinter.Formed, path expr.Path) string {
	return f.Highlight(path, "\x1b[4m", "\x1b[0m")
}

func marker() engine.Marker {
	if colorEnabled() {
		return underline
	}
	return engine.Brackets
}

func red(s string) string {
	if !colorEnabled() {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

// lineReader wraps liner with the history file of the shell.
type lineReader struct {
	ln   *liner.State
	path string
}

func newLineReader() *lineReader {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	r := &lineReader{ln: ln}
	if home, err := os.UserHomeDir(); err == nil {
		r.path = filepath.Join(home, config.ReplHistoryFile)
		if f, err := os.Open(r.path); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	return r
}

// read returns the next non-empty line, or false on end of input.
func (r *lineReader) read() (string, bool) {
	for {
		line, err := r.ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return "", false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.ln.AppendHistory(line)
		return line, true
	}
}

func (r *lineReader) Close() {
	if r.path != "" {
		if f, err := os.Create(r.path); err == nil {
			_, _ = r.ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	r.ln.Close()
}

// isMetaCommand reports whether line is a shell command rather than a Lazy K
// line. Symbols such as ":a" are Lazy K and go to the engine.
func isMetaCommand(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case ":quit", ":q", ":help", ":h", ":style":
		return true
	}
	return false
}

// metaCommand handles a line accepted by isMetaCommand. quit is true for :quit.
func metaCommand(ctx context.Context, s *session, line string) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":help", ":h":
		fmt.Print(replHelp)
	case ":style":
		if len(fields) != 2 || s == nil {
			fmt.Printf("style: %s\n", currentStyle(s))
			return false
		}
		style, err := prettyprinter.ParseStyle(fields[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return false
		}
		if err := s.engine.SetStyle(ctx, style); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
		}
	}
	return false
}

func currentStyle(s *session) string {
	if s == nil {
		return "set by the server"
	}
	return s.engine.Style().String()
}

func repl(ctx context.Context, s *session) {
	fmt.Println(banner)
	r := newLineReader()
	defer r.Close()

	mark := marker()
	for ctx.Err() == nil {
		line, ok := r.read()
		if !ok {
			fmt.Println()
			return
		}
		if isMetaCommand(line) {
			if metaCommand(ctx, s, line) {
				return
			}
			continue
		}

		out, err := s.engine.RunLine(ctx, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		for _, l := range engine.Lines(s.engine.Style(), out, mark) {
			fmt.Println(l)
		}
	}
}

// remoteRepl forwards each line to a server. Rendering happens remotely, so
// redexes are not marked.
func remoteRepl(ctx context.Context, c *rpc.Client) {
	fmt.Println(banner)
	r := newLineReader()
	defer r.Close()

	for ctx.Err() == nil {
		line, ok := r.read()
		if !ok {
			fmt.Println()
			return
		}
		if isMetaCommand(line) {
			if metaCommand(ctx, nil, line) {
				return
			}
			continue
		}

		res, err := c.Run(ctx, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		for _, l := range res.Lines {
			fmt.Println(l)
		}
	}
}

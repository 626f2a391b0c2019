// Package engine runs parsed commands against a shared Context: definitions
// go to the history store, evaluations drive a calc.Reducer and unlambda
// commands call the bracket abstraction.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/funvibe/funski/internal/calc"
	"github.com/funvibe/funski/internal/command"
	"github.com/funvibe/funski/internal/config"
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
	"github.com/funvibe/funski/internal/history"
	"github.com/funvibe/funski/internal/parser"
	"github.com/funvibe/funski/internal/prettyprinter"
	"github.com/funvibe/funski/internal/unlambda"
)

var (
	ErrInvalidLevel  = errors.New("unlambda level must be between 1 and 4")
	ErrNegativeCount = errors.New("step count must not be negative")
)

// Engine is safe for concurrent use. Each evaluation works on a snapshot of
// the Context taken when it starts.
type Engine struct {
	mu  sync.RWMutex
	ctx *env.Context
	// aliases is replaced, never modified, so a reducer may keep the map.
	aliases calc.Aliases
	style   prettyprinter.Style

	store history.Store // nil disables persistence
	limit int

	ski, sk, iota unlambda.Strategy
}

// New builds an engine from cfg, runs the prelude and replays store. store
// may be nil.
func New(ctx context.Context, cfg *config.Config, store history.Store) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	style, err := prettyprinter.ParseStyle(cfg.DisplayStyle)
	if err != nil {
		return nil, err
	}
	b := cfg.Basis
	e := &Engine{
		ctx:     env.NewContext(),
		aliases: calc.Aliases{},
		style:   style,
		store:   store,
		limit:   cfg.StepLimit,
		ski:     unlambda.SKIWith(expr.Identifier(b.S), expr.Identifier(b.K), expr.Identifier(b.I)),
		sk:      unlambda.SKWith(expr.Identifier(b.S), expr.Identifier(b.K)),
		iota:    unlambda.IotaWith(expr.Identifier(b.Iota)),
	}
	if e.limit <= 0 {
		e.limit = config.DefaultStepLimit
	}

	for n, line := range cfg.Prelude {
		cmd, err := parser.ParseCommand(line)
		if err != nil {
			return nil, fmt.Errorf("prelude[%d]: %w", n, err)
		}
		if err := history.Apply(e.ctx, cmd); err != nil {
			return nil, fmt.Errorf("prelude[%d]: %w", n, err)
		}
	}

	if store == nil {
		return e, nil
	}
	if _, err := history.Replay(ctx, store, e.ctx); err != nil {
		return nil, fmt.Errorf("replaying history: %w", err)
	}
	saved, ok, err := store.Setting(ctx, history.SettingDisplayStyle)
	if err != nil {
		return nil, fmt.Errorf("loading display style: %w", err)
	}
	if ok {
		if style, err := prettyprinter.ParseStyle(saved); err == nil {
			e.style = style
		}
	}
	return e, nil
}

// Context returns a snapshot of the definitions.
func (e *Engine) Context() *env.Context {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ctx.Clone()
}

func (e *Engine) Style() prettyprinter.Style {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.style
}

// SetStyle changes the display style and remembers it in the history store.
func (e *Engine) SetStyle(ctx context.Context, style prettyprinter.Style) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store != nil {
		if err := e.store.SetSetting(ctx, history.SettingDisplayStyle, style.String()); err != nil {
			return err
		}
	}
	e.style = style
	return nil
}

// RunLine parses one Lazy K command and runs it.
func (e *Engine) RunLine(ctx context.Context, line string) (Output, error) {
	cmd, err := parser.ParseCommand(line)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, cmd)
}

// Run executes cmd.
func (e *Engine) Run(ctx context.Context, cmd command.Command) (Output, error) {
	if command.Mutates(cmd) {
		if err := e.define(ctx, cmd); err != nil {
			return nil, err
		}
	}
	switch cmd := cmd.(type) {
	case command.Del:
		return &Deleted{ID: cmd.ID}, nil
	case command.Update:
		return &Updated{Func: cmd.Func}, nil

	case command.Eval:
		return e.reduce(ctx, ModeAll, 0, cmd.Expr, e.limit)
	case command.EvalLast:
		return e.reduce(ctx, ModeLast, 0, cmd.Expr, e.limit)
	case command.EvalHead:
		return e.reduce(ctx, ModeHead, cmd.N, cmd.Expr, e.limit)
	case command.EvalTail:
		return e.reduce(ctx, ModeTail, cmd.N, cmd.Expr, e.limit)

	case command.Query:
		e.mu.RLock()
		f, ok := e.ctx.Get(cmd.ID)
		e.mu.RUnlock()
		return &Found{ID: cmd.ID, Func: f, OK: ok}, nil

	case command.ListContext:
		e.mu.RLock()
		defer e.mu.RUnlock()
		return &Listed{Funcs: e.ctx.Funcs(), Aliases: e.aliasList()}, nil

	case command.Unlambda:
		result, err := e.Unlambda(cmd.Level, cmd.Expr, false)
		if err != nil {
			return nil, err
		}
		return &Unlambdaed{Level: cmd.Level, Input: cmd.Expr, Result: result}, nil

	default:
		return nil, fmt.Errorf("unsupported command %T", cmd)
	}
}

// define records a Del or Update and then applies it. Nothing changes when
// the store refuses the entry.
func (e *Engine) define(ctx context.Context, cmd command.Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store != nil {
		if _, err := e.store.Append(ctx, cmd.String()); err != nil {
			return fmt.Errorf("recording %s: %w", cmd, err)
		}
	}
	return history.Apply(e.ctx, cmd)
}

// Reduce evaluates input for at most limit steps, or the engine's step limit
// when limit is not positive or larger.
func (e *Engine) Reduce(ctx context.Context, input expr.Expr, limit int) (*Reduced, error) {
	if limit <= 0 || limit > e.limit {
		limit = e.limit
	}
	return e.reduce(ctx, ModeAll, 0, input, limit)
}

// Unlambda removes the lambdas of input. Level 1 expands definitions; 2, 3
// and 4 abstract over SKI, SK and Iota. Levels 2 to 4 expand definitions
// first unless shallow is set.
func (e *Engine) Unlambda(level int, input expr.Expr, shallow bool) (expr.Expr, error) {
	var st unlambda.Strategy
	switch level {
	case command.LevelExpand:
		e.mu.RLock()
		defer e.mu.RUnlock()
		return calc.Expand(e.ctx, input), nil
	case command.LevelSKI:
		st = e.ski
	case command.LevelSK:
		st = e.sk
	case command.LevelIota:
		st = e.iota
	default:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLevel, level)
	}
	if shallow {
		return unlambda.Shallow(st, input), nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return unlambda.Recursive(st, e.ctx, input), nil
}

func (e *Engine) reduce(ctx context.Context, mode Mode, n int, input expr.Expr, limit int) (*Reduced, error) {
	if n < 0 {
		return nil, ErrNegativeCount
	}

	e.mu.RLock()
	snapshot := e.ctx.Clone()
	aliases := e.aliases
	e.mu.RUnlock()

	r := calc.NewReducer(snapshot, input, calc.WithAliases(aliases), calc.WithUnaryReduction())
	out := &Reduced{Mode: mode, Count: n, Input: input, Result: input}
	out.Next, out.HasNext = r.ReduciblePath()

	bound := limit
	if mode == ModeHead && n < bound {
		bound = n
	}
	for r.Step() < bound {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("reducing %s: %w", input, err)
		}
		res, ok := r.Next()
		if !ok {
			break
		}
		step := Step{Number: res.Step, Expr: res.Expr, Reduced: res.ReducedPath}
		step.Next, step.HasNext = r.ReduciblePath()
		out.Result = res.Expr

		switch mode {
		case ModeAll, ModeHead:
			out.Steps = append(out.Steps, step)
		case ModeLast:
			out.Steps = append(out.Steps[:0], step)
		case ModeTail:
			out.Steps = append(out.Steps, step)
			if len(out.Steps) > n {
				out.Steps = out.Steps[1:]
			}
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reducing %s: %w", input, err)
	}

	_, more := r.ReduciblePath()
	out.Normal = !more
	out.Total = r.Step()

	e.mu.Lock()
	e.aliases = shiftResults(e.aliases, out.Result)
	e.mu.Unlock()
	return out, nil
}

package engine

import (
	"sort"

	"github.com/samber/lo"

	"github.com/funvibe/funski/internal/calc"
	"github.com/funvibe/funski/internal/config"
	"github.com/funvibe/funski/internal/expr"
)

// Alias is a named earlier result.
type Alias struct {
	Name expr.Identifier
	Expr expr.Expr
}

// shiftResults returns a new alias set with result as `_` and the previous
// `_`, `_0` ... `_8` moved to `_0` ... `_9`. The oldest result falls off.
func shiftResults(prev calc.Aliases, result expr.Expr) calc.Aliases {
	next := calc.Aliases{config.LastResultAlias: result}
	from := config.LastResultAlias
	for _, to := range config.ResultAliases {
		if e, ok := prev[expr.Identifier(from)]; ok {
			next[expr.Identifier(to)] = e
		}
		from = to
	}
	return next
}

// aliasList returns the current aliases sorted by name. Callers hold e.mu.
func (e *Engine) aliasList() []Alias {
	out := lo.MapToSlice(e.aliases, func(name expr.Identifier, ex expr.Expr) Alias {
		return Alias{Name: name, Expr: ex}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Aliases returns the current result aliases sorted by name.
func (e *Engine) Aliases() []Alias {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.aliasList()
}

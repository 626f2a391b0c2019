package env

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/funvibe/funski/internal/expr"
)

// Context maps identifiers to their definitions. Keys are unique; Def
// replaces an existing definition with the same name.
//
// A Context is a plain value without locking. Callers that share one across
// goroutines take a Clone for each reader.
type Context struct {
	funcs map[expr.Identifier]Func
}

// NewContext builds a Context from a list of definitions. Later duplicates win.
func NewContext(funcs ...Func) *Context {
	c := &Context{funcs: make(map[expr.Identifier]Func, len(funcs))}
	for _, f := range funcs {
		c.Def(f)
	}
	return c
}

func (c *Context) Def(f Func) { c.funcs[f.Name()] = f }

func (c *Context) Del(id expr.Identifier) { delete(c.funcs, id) }

func (c *Context) Get(id expr.Identifier) (Func, bool) {
	if c == nil {
		return Func{}, false
	}
	f, ok := c.funcs[id]
	return f, ok
}

// Arity returns the arity of the definition named id.
func (c *Context) Arity(id expr.Identifier) (int, bool) {
	f, ok := c.Get(id)
	if !ok {
		return 0, false
	}
	return f.Arity(), true
}

func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.funcs)
}

// Clone returns an independent snapshot. Func values are immutable, so
// copying the map is enough.
func (c *Context) Clone() *Context {
	out := &Context{funcs: make(map[expr.Identifier]Func, c.Len())}
	if c != nil {
		for id, f := range c.funcs {
			out.funcs[id] = f
		}
	}
	return out
}

var suffixPattern = regexp.MustCompile(`\A(.*?)(\d*)\z`)

type sortKey struct {
	short bool
	name  string
	index int // -1 when the name has no numeric suffix
}

func keyOf(id expr.Identifier) sortKey {
	m := suffixPattern.FindStringSubmatch(string(id))
	name, index := m[1], -1
	if m[2] != "" {
		if n, err := strconv.Atoi(m[2]); err == nil {
			index = n
		}
	}
	return sortKey{
		short: index < 0 && len(name) == 1,
		name:  name,
		index: index,
	}
}

// Funcs lists the definitions in display order: single-character names
// first, then by case-insensitive name (lowercase before uppercase on a
// tie), then by numeric suffix so that X2 sorts before X10.
func (c *Context) Funcs() []Func {
	if c == nil {
		return nil
	}
	funcs := lo.Values(c.funcs)
	sort.SliceStable(funcs, func(i, j int) bool {
		l, r := keyOf(funcs[i].Name()), keyOf(funcs[j].Name())
		if l.short != r.short {
			return l.short
		}
		if ll, rl := strings.ToLower(l.name), strings.ToLower(r.name); ll != rl {
			return ll < rl
		}
		if l.name != r.name {
			return l.name > r.name
		}
		return l.index < r.index
	})
	return funcs
}

// Names returns the defined identifiers in display order.
func (c *Context) Names() []expr.Identifier {
	return lo.Map(c.Funcs(), func(f Func, _ int) expr.Identifier { return f.Name() })
}

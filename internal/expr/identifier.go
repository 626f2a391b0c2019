package expr

import (
	"strconv"
	"strings"
)

// Identifier names a variable, a symbol, a lambda parameter or a defined function.
type Identifier string

func (id Identifier) String() string { return string(id) }

// Rename produces a fresh name for alpha-conversion. The uppercased name is
// used when it is free in avoid, otherwise a numeric suffix 0, 1, 2, ... is
// appended until the candidate is unused.
func (id Identifier) Rename(avoid BoundVars) Identifier {
	base := strings.ToUpper(string(id))
	if !avoid.Contains(Identifier(base)) {
		return Identifier(base)
	}
	for i := 0; ; i++ {
		candidate := Identifier(base + strconv.Itoa(i))
		if !avoid.Contains(candidate) {
			return candidate
		}
	}
}

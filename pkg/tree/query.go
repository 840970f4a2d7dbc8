package tree

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// filterEnv is the variable set visible to filter expressions.
type filterEnv struct {
	ID       string `expr:"id"`
	Label    string `expr:"label"`
	Disabled bool   `expr:"disabled"`
	Depth    int    `expr:"depth"`
	Leaf     bool   `expr:"leaf"`
	Expanded bool   `expr:"expanded"`
	Selected bool   `expr:"selected"`
}

func envFor(s NodeState) filterEnv {
	return filterEnv{
		ID:       s.Node.ID,
		Label:    s.Node.Label,
		Disabled: s.Node.Disabled,
		Depth:    s.Depth,
		Leaf:     s.Node.IsLeaf(),
		Expanded: s.Expanded,
		Selected: s.Selected,
	}
}

// CompileFilter compiles an expr-lang expression into a Predicate.
//
// Available variables: id, label, disabled, depth, leaf, expanded, selected.
// Example: `label contains "api" && !disabled`.
func CompileFilter(source string) (Predicate, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("compile filter: empty expression")
	}
	program, err := expr.Compile(source, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return programPredicate(program), nil
}

// programPredicate treats evaluation errors as non-matches.
func programPredicate(program *vm.Program) Predicate {
	return func(s NodeState) bool {
		out, err := expr.Run(program, envFor(s))
		if err != nil {
			return false
		}
		match, _ := out.(bool)
		return match
	}
}

// LabelContains returns a case-insensitive substring predicate over label
// and id, the same match the interactive search uses.
func LabelContains(query string) Predicate {
	q := strings.ToLower(query)
	return func(s NodeState) bool {
		return strings.Contains(strings.ToLower(s.Node.Label), q) ||
			strings.Contains(strings.ToLower(s.Node.ID), q)
	}
}

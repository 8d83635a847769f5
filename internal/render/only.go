package render

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

type identifiers struct{ names []string }

func (v *identifiers) Visit(n *ast.Node) {
	if id, ok := (*n).(*ast.IdentifierNode); ok {
		v.names = append(v.names, id.Value)
	}
}

// EvalOnly evaluates an only-directive expression such as
// "html and not draft". The active format and each tag are true; any other
// name is false.
func EvalOnly(expression, format string, tags []string) (bool, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return false, fmt.Errorf("only %q: %w", expression, err)
	}
	v := &identifiers{}
	ast.Walk(&tree.Node, v)

	env := make(map[string]any, len(v.names)+len(tags)+1)
	for _, name := range v.names {
		env[name] = false
	}
	env[format] = true
	for _, t := range tags {
		env[t] = true
	}

	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("only %q: %w", expression, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("only %q: %w", expression, err)
	}
	return out.(bool), nil
}

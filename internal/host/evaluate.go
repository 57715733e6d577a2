package host

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
)

// ExprEvaluator evaluates expr-lang expressions against a fixed environment.
type ExprEvaluator struct {
	env map[string]any
}

func NewExprEvaluator(env map[string]any) *ExprEvaluator {
	copied := make(map[string]any, len(env))
	for k, v := range env {
		copied[k] = v
	}
	return &ExprEvaluator{env: copied}
}

func (e *ExprEvaluator) Evaluate(expression string) (any, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("host: empty expression")
	}
	program, err := expr.Compile(expression, expr.Env(e.env))
	if err != nil {
		return nil, fmt.Errorf("host: compile %q: %w", expression, err)
	}
	out, err := expr.Run(program, e.env)
	if err != nil {
		return nil, fmt.Errorf("host: run %q: %w", expression, err)
	}
	return out, nil
}

// Package formula evaluates the tuning expressions that scale spell timing.
package formula

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// Evaluator runs a compiled incant-time expression. The expression sees the
// integer variables base (spell incant time), speech (caster's speech
// attribute) and power (spell power).
type Evaluator struct {
	source string
	prg    cel.Program
	min    int
}

// New compiles expr. Results below minTicks are raised to minTicks.
func New(expr string, minTicks int) (*Evaluator, error) {
	env, err := cel.NewEnv(
		ext.Math(),
		cel.Variable("base", cel.IntType),
		cel.Variable("speech", cel.IntType),
		cel.Variable("power", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("formula env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	if minTicks < 1 {
		minTicks = 1
	}
	return &Evaluator{source: expr, prg: prg, min: minTicks}, nil
}

// Source returns the expression text.
func (ev *Evaluator) Source() string { return ev.source }

// IncantTicks evaluates the expression for one incantation.
func (ev *Evaluator) IncantTicks(base, speech, power int) (int, error) {
	out, _, err := ev.prg.Eval(map[string]any{
		"base":   int64(base),
		"speech": int64(speech),
		"power":  int64(power),
	})
	if err != nil {
		return 0, fmt.Errorf("eval %q: %w", ev.source, err)
	}

	var n int
	switch v := out.Value().(type) {
	case int64:
		n = int(v)
	case uint64:
		n = int(v)
	case float64:
		n = int(v)
	default:
		return 0, fmt.Errorf("eval %q: result %v is not a number", ev.source, out.Value())
	}
	if n < ev.min {
		n = ev.min
	}
	return n, nil
}

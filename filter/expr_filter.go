package filter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/rhc/rest"
)

// ExprFilter is a compiled expression evaluated against applications
type ExprFilter struct {
	program *vm.Program
	expr    string
}

// CompileExprFilter compiles an expr filter expression.
// The expression must evaluate to a boolean.
func CompileExprFilter(expression string) (*ExprFilter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, ErrEmptyExpression
	}

	program, err := expr.Compile(expression,
		expr.Env(newEnv(&rest.Application{})),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{Expression: expression, Err: err}
	}

	return &ExprFilter{
		program: program,
		expr:    expression,
	}, nil
}

// Evaluate reports whether the application matches the filter
func (f *ExprFilter) Evaluate(app *rest.Application) (bool, error) {
	result, err := expr.Run(f.program, newEnv(app))
	if err != nil {
		return false, &EvaluationError{Expression: f.expr, Application: app.Name, Err: err}
	}

	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression:  f.expr,
			Application: app.Name,
			Err:         fmt.Errorf("result is %T, not bool", result),
		}
	}
	return matched, nil
}

// Apply returns the applications matching the filter, in their original order
func (f *ExprFilter) Apply(apps []*rest.Application) ([]*rest.Application, error) {
	var matched []*rest.Application
	for _, app := range apps {
		ok, err := f.Evaluate(app)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, app)
		}
	}
	return matched, nil
}

// String returns the original expression
func (f *ExprFilter) String() string {
	return f.expr
}

// newEnv exposes application fields and helper functions to expressions
func newEnv(app *rest.Application) map[string]any {
	created := app.Created()

	return map[string]any{
		// Application data
		"Name":           app.Name,
		"DomainID":       app.DomainID,
		"Framework":      app.Framework,
		"UUID":           app.UUID,
		"Aliases":        app.Aliases,
		"ServerIdentity": app.ServerIdentity,
		"Created":        created,

		"hasAlias": func(alias string) bool {
			return slices.ContainsFunc(app.Aliases, func(a string) bool {
				return strings.EqualFold(a, alias)
			})
		},
		"createdBefore": func(t time.Time) bool {
			return !created.IsZero() && created.Before(t)
		},
		"createdAfter": func(t time.Time) bool {
			return !created.IsZero() && created.After(t)
		},

		// Date helpers
		"daysSince": func(t time.Time) int {
			return int(time.Since(t).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return time.Now().AddDate(0, 0, -days)
		},
		"parseDate": func(dateStr string) time.Time {
			t, _ := time.Parse("2006-01-02", dateStr)
			return t
		},
		"now": time.Now,

		// String helpers
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"endsWith": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}
}

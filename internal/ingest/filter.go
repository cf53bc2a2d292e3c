package ingest

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter is an optional expr-lang rule evaluated against each request after
// text resolution. A false result drops the request before summarization.
type Filter struct {
	rule    string
	program *vm.Program
}

func NewFilter(rule string) (*Filter, error) {
	if rule == "" {
		return nil, fmt.Errorf("filter rule is required")
	}
	program, err := expr.Compile(rule, expr.Env(filterEnv(Request{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile ingest filter: %w", err)
	}
	return &Filter{rule: rule, program: program}, nil
}

// Match reports whether the request passes the rule.
func (f *Filter) Match(req Request) (bool, error) {
	result, err := expr.Run(f.program, filterEnv(req))
	if err != nil {
		return false, fmt.Errorf("run ingest filter: %w", err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("ingest filter did not return bool")
	}
	return matched, nil
}

func filterEnv(req Request) map[string]interface{} {
	return map[string]interface{}{
		"TweetID": req.TweetID,
		"URL":     req.URL,
		"Author":  req.Author,
		"Text":    req.Text,
	}
}

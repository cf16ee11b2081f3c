package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/utils/logging"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/topdown/print"
)

// admissionQuery collects deny messages of the oracle package. A query is
// admitted when the set is empty or undefined.
const admissionQuery = "data.oracle.deny"

// Admission decides whether a query may be sent to the oracle. A nil
// *Admission admits everything.
type Admission struct {
	query *rego.PreparedEvalQuery
}

// regoPrintHook forwards Rego print() statements to the ctx logger
type regoPrintHook struct {
	ctx context.Context
}

func (h *regoPrintHook) Print(pctx print.Context, message string) error {
	logging.From(h.ctx).Debug("rego print", "message", message)
	return nil
}

// Load reads all Rego files in dir. It returns nil if dir is empty or has
// no policy files.
func Load(ctx context.Context, dir string) (*Admission, error) {
	if dir == "" {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files", goerr.V("dir", dir))
	}
	if len(files) == 0 {
		return nil, nil
	}

	modules := make(map[string]string, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		modules[file] = string(data)
	}

	return New(ctx, modules)
}

// New prepares an admission policy from in-memory modules keyed by file name
func New(ctx context.Context, modules map[string]string) (*Admission, error) {
	options := make([]func(*rego.Rego), 0, len(modules)+2)
	options = append(options, rego.Query(admissionQuery), rego.EnablePrintStatements(true))
	for name, src := range modules {
		options = append(options, rego.Module(name, src))
	}

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare admission policy", goerr.V("query", admissionQuery))
	}

	return &Admission{query: &prepared}, nil
}

// Evaluate returns the reasons a query is denied. An empty result means
// the query is admitted.
func (a *Admission) Evaluate(ctx context.Context, query string) ([]string, error) {
	if a == nil || a.query == nil {
		return nil, nil
	}

	rs, err := a.query.Eval(ctx,
		rego.EvalInput(map[string]any{"query": query}),
		rego.EvalPrintHook(&regoPrintHook{ctx: ctx}),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate admission policy")
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, nil
	}

	var reasons []string
	switch v := rs[0].Expressions[0].Value.(type) {
	case []any:
		for _, r := range v {
			reasons = append(reasons, fmt.Sprint(r))
		}
	case map[string]any:
		for r := range v {
			reasons = append(reasons, r)
		}
	case nil:
	default:
		return nil, goerr.New("unexpected admission result", goerr.V("value", v))
	}

	sort.Strings(reasons)
	return reasons, nil
}

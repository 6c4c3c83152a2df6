package shell

import (
	"context"
	"errors"

	"github.com/marcelocantos/gosh/internal/lookup"
	"github.com/marcelocantos/gosh/internal/pipeline"
)

// Result describes what one dispatched line did.
type Result struct {
	Builtin  bool
	Names    []string          // stage names, or the built-in name
	Statuses []pipeline.Status // empty for built-ins
	Code     int               // built-in status or the last stage's status
	Err      error             // parse or orchestration failure
}

// Action is a dispatched line ready to execute: either a built-in run in
// process or an external pipeline.
type Action interface {
	Execute(ctx context.Context, c *Context) Result
}

// BuiltinAction runs a built-in synchronously.
type BuiltinAction struct {
	Builtin *Builtin
	Args    []string
}

func (a *BuiltinAction) Execute(_ context.Context, c *Context) Result {
	code := a.Builtin.Run(c, a.Args)
	return Result{Builtin: true, Names: []string{a.Builtin.Name}, Code: code}
}

// PipelineAction spawns and reaps an external pipeline.
type PipelineAction struct {
	Pipeline *pipeline.Pipeline
	Spawner  pipeline.Spawner
}

func (a *PipelineAction) Execute(ctx context.Context, c *Context) Result {
	r := &pipeline.Runner{Spawner: a.Spawner, Stdin: c.Stdin, Stdout: c.Stdout}
	statuses, err := r.Run(ctx, a.Pipeline)
	res := Result{Names: a.Pipeline.Names(), Statuses: statuses, Err: err}
	switch {
	case len(statuses) == a.Pipeline.Len():
		res.Code = statuses[len(statuses)-1].Code
	case err != nil:
		res.Code = 1
	}
	return res
}

// ExitUsage is the status of a line that could not be parsed.
const ExitUsage = 2

// Dispatcher decides, per line, between a built-in and an external pipeline.
type Dispatcher struct {
	Builtins *Registry
	// NewSpawner builds the spawner for a pipeline; nil starts real processes
	// from the context's directory and environment.
	NewSpawner func(c *Context) pipeline.Spawner
}

// NewDispatcher returns a dispatcher over the default built-in table.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{Builtins: DefaultRegistry()}
}

// Dispatch maps tokens to an action. tokens[0] is looked up in the built-in
// table; anything else is built into a pipeline, so parse errors come back
// before any process exists.
func (d *Dispatcher) Dispatch(c *Context, tokens []string) (Action, error) {
	if len(tokens) == 0 {
		return nil, pipeline.ErrEmptySegment
	}
	if d.Builtins != nil {
		if b, ok := d.Builtins.Lookup(tokens[0]); ok {
			return &BuiltinAction{Builtin: b, Args: tokens}, nil
		}
	}
	p, err := pipeline.Build(tokens)
	if err != nil {
		return nil, err
	}
	return &PipelineAction{Pipeline: p, Spawner: d.spawner(c)}, nil
}

// Run dispatches and executes one line.
func (d *Dispatcher) Run(ctx context.Context, c *Context, tokens []string) Result {
	action, err := d.Dispatch(c, tokens)
	if err != nil {
		return Result{Code: ExitUsage, Err: err}
	}
	return action.Execute(ctx, c)
}

func (d *Dispatcher) spawner(c *Context) pipeline.Spawner {
	if d.NewSpawner != nil {
		return d.NewSpawner(c)
	}
	return &pipeline.ProcSpawner{
		Resolver: lookup.New(c.Getenv("PATH"), c.Dir),
		Dir:      c.Dir,
		Env:      c.Environ(),
		Stderr:   c.Stderr,
	}
}

// IsParseError reports whether err came from building the pipeline.
func IsParseError(err error) bool {
	return errors.Is(err, pipeline.ErrEmptySegment) || errors.Is(err, pipeline.ErrMalformedRedirect)
}

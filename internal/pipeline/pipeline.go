// Package pipeline sequences the compiler's phases. Shape is grounded on
// the teacher's Processor/Pipeline.Run pattern, with one deliberate
// divergence: the teacher continues past a failing stage to collect every
// diagnostic an LSP client might want in one pass; quackc has no LSP, and
// spec.md's error model is synchronous-first-offense, so Run here stops at
// the next stage boundary once a stage records an error.
package pipeline

import (
	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/catalog"
)

// Context threads compiler state across stages. Each stage reads what it
// needs off ctx and writes its own results back onto it; Err, once set, is
// never cleared or overwritten by a later stage.
type Context struct {
	SourcePath string
	Source     string
	MainClass  string

	Program *ast.Node
	Catalog *catalog.Catalog
	ASM     map[string][]string

	Err error
}

// Stage is one step of the compile pipeline.
type Stage interface {
	Process(ctx *Context) *Context
}

// StageFunc adapts a plain function to Stage.
type StageFunc func(ctx *Context) *Context

func (f StageFunc) Process(ctx *Context) *Context { return f(ctx) }

// Pipeline runs an ordered sequence of stages.
type Pipeline struct {
	stages []Stage
}

// New builds a pipeline from the given stages, run in order.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes each stage in order, stopping as soon as a stage leaves a
// non-nil Err on the context — spec.md §7's "synchronous at first offense"
// rule, applied one stage boundary at a time rather than mid-stage.
func (p *Pipeline) Run(initial *Context) *Context {
	ctx := initial
	for _, stage := range p.stages {
		ctx = stage.Process(ctx)
		if ctx.Err != nil {
			return ctx
		}
	}
	return ctx
}

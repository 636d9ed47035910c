// Package compiler is quackc's driver: the fat internal package behind
// the thin cmd/quackc/main.go, grounded on the teacher's
// pkg/cli/entry.go + cmd/funxy/main.go split (a minimal main that parses
// flags and delegates everything else to an internal package returning a
// plain error for main to translate into an exit code).
package compiler

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quack-lang/quackc/internal/ast"
	"github.com/quack-lang/quackc/internal/cache"
	"github.com/quack-lang/quackc/internal/catalog"
	"github.com/quack-lang/quackc/internal/codegen"
	"github.com/quack-lang/quackc/internal/config"
	"github.com/quack-lang/quackc/internal/diagnostics"
	"github.com/quack-lang/quackc/internal/identck"
	"github.com/quack-lang/quackc/internal/output"
	"github.com/quack-lang/quackc/internal/parser"
	"github.com/quack-lang/quackc/internal/pipeline"
	"github.com/quack-lang/quackc/internal/qconfig"
	"github.com/quack-lang/quackc/internal/semck"
	"github.com/quack-lang/quackc/internal/transform"
	"github.com/quack-lang/quackc/internal/typeinfer"
)

// UsageError marks a CLI-level mistake (bad flags, missing file) so main
// can map it to exit code 2, distinct from a compile error (exit 1).
type UsageError struct{ msg string }

func (e *UsageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// Options are the resolved CLI flags, post config-file merge.
type Options struct {
	SourcePath string
	MainClass  string
	OutputDir  string
	ObjDir     string
	LogLevel   string
	CacheDir   string
	ConfigPath string
	PNGPath    string
}

// Run parses args, compiles the named source file, and writes one .asm
// per class to OutputDir. Returns a *UsageError for a CLI mistake, any
// other non-nil error for a compile failure (already logged to stderr by
// the time it's returned), or nil on success.
func Run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "cache" {
		return runCacheSubcommand(args[1:], stdout)
	}

	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	fileCfg, err := qconfig.Load(filepath.Dir(opts.SourcePath))
	if err != nil {
		return usageErrorf("reading config: %v", err)
	}
	merged := qconfig.Merge(qconfig.Config{
		MainClass: opts.MainClass,
		OutputDir: opts.OutputDir,
		ObjDir:    opts.ObjDir,
		LogLevel:  opts.LogLevel,
		CacheDir:  opts.CacheDir,
	}, fileCfg)
	opts.MainClass, opts.OutputDir, opts.ObjDir, opts.LogLevel, opts.CacheDir =
		merged.MainClass, merged.OutputDir, merged.ObjDir, merged.LogLevel, merged.CacheDir
	if opts.OutputDir == "" {
		opts.OutputDir = config.DefaultOutputDir
	}
	if opts.ObjDir == "" {
		opts.ObjDir = config.DefaultObjDir
	}
	if opts.MainClass == "" {
		opts.MainClass = mainClassFromPath(opts.SourcePath)
	}

	log := output.New(stderr, output.ParseLevel(opts.LogLevel))
	buildID := uuid.New().String()
	log.Debug("build %s starting for %s", buildID, opts.SourcePath)

	asm, err := compile(opts, log, buildID)
	if err != nil {
		var de *diagnostics.DiagnosticError
		if errors.As(err, &de) {
			log.Error("%s: line %d:%d: %s", de.Code, de.Tok.Line, de.Tok.Column, de.Message)
		} else {
			log.Error("%v", err)
		}
		return err
	}

	if err := writeASM(opts.OutputDir, asm); err != nil {
		log.Error("%v", err)
		return err
	}
	log.Statistic("compiled %d class(es) to %s", len(asm), opts.OutputDir)
	return nil
}

func parseFlags(args []string) (Options, error) {
	fs := flag.NewFlagSet("quackc", flag.ContinueOnError)
	var o Options
	fs.StringVar(&o.MainClass, "main-class", "", "synthesized main class name (default: source filename stem)")
	fs.StringVar(&o.OutputDir, "output-dir", "", "directory to write .asm files (default: out)")
	fs.StringVar(&o.ObjDir, "obj-dir", "", "directory for intermediate object output (default: OBJ)")
	fs.StringVar(&o.LogLevel, "log-level", "", "error|warning|verbose|debug (default: warning)")
	fs.StringVar(&o.CacheDir, "cache", "", "directory holding the compile cache (optional)")
	fs.StringVar(&o.ConfigPath, "config", "", "accepted but ignored: .quackc.yaml is always searched for beside the source file, then in the working directory")
	fs.StringVar(&o.PNGPath, "png", "", "write a DOT-format tree dump to this file (debug aid, not a real PNG)")
	if err := fs.Parse(args); err != nil {
		return o, &UsageError{msg: err.Error()}
	}
	if fs.NArg() != 1 {
		return o, usageErrorf("expected exactly one source file, got %d", fs.NArg())
	}
	o.SourcePath = fs.Arg(0)
	if !config.HasSourceExt(o.SourcePath) {
		return o, usageErrorf("%s: not a recognized Quack source file", o.SourcePath)
	}
	return o, nil
}

func mainClassFromPath(path string) string {
	stem := config.TrimSourceExt(filepath.Base(path))
	if stem == "" {
		return config.DefaultMainClassFallback
	}
	return strings.ToUpper(stem[:1]) + stem[1:]
}

// compile runs the core pipeline (C0a–C7), consulting the compile cache
// first when one is configured.
func compile(opts Options, log *output.Logger, buildID string) (map[string][]string, error) {
	data, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return nil, usageErrorf("%v", err)
	}

	var c *cache.Cache
	var key string
	if opts.CacheDir != "" {
		c, err = cache.Open(opts.CacheDir)
		if err != nil {
			return nil, usageErrorf("%v", err)
		}
		defer c.Close()
		key = cache.Key(opts.SourcePath, data)
	}

	ctx := &pipeline.Context{
		SourcePath: opts.SourcePath,
		Source:     string(data),
		MainClass:  opts.MainClass,
		Catalog:    catalog.New(),
	}

	p := pipeline.New(
		pipeline.StageFunc(parseStage),
		pipeline.StageFunc(transformStageFor(opts.MainClass)),
		pipeline.StageFunc(identCheckStage),
		pipeline.StageFunc(typeInferStage),
		pipeline.StageFunc(semCheckStage),
		pipeline.StageFunc(codegenStage),
	)

	if key != "" {
		if hit, ok := lookupCache(c, key, ctx.Source); ok {
			log.Debug("build %s: cache hit for %s", buildID, opts.SourcePath)
			return hit, nil
		}
	}

	log.Progress("Parsing")
	out := p.Run(ctx)
	if out.Err != nil {
		return nil, out.Err
	}
	log.Progress("Generating assembly")

	if opts.PNGPath != "" && out.Program != nil {
		if err := os.WriteFile(opts.PNGPath, []byte(treeDOT(out.Program)), 0o644); err != nil {
			log.Warning("writing tree dump: %v", err)
		}
	}

	if key != "" {
		if err := c.Store(key, out.ASM); err != nil {
			log.Warning("cache store failed: %v", err)
		}
	}
	return out.ASM, nil
}

// lookupCache needs the class set the source would produce to ask the
// cache for exactly those rows; it re-parses just far enough (lex+parse)
// to read class names without running the full pipeline. A cache miss
// here simply falls through to a normal compile.
//
// A raw parse tree's top-level children aren't all clazz nodes: a source
// file of bare top-level statements (every cmd/quackc/testdata fixture,
// and any ordinary script) parses to a program whose children are
// assignment/statement nodes that transform.CaptureLooseStatements would
// normally fold into the synthesized main class — a step this fast path
// deliberately skips. ast.ClazzName panics on anything but a clazz node,
// so only clazz children are read; any loose statement present makes this
// a cache miss (the only name it could give the main class is a guess,
// and a miss just falls through to a normal, correct compile).
func lookupCache(c *cache.Cache, key, source string) (map[string][]string, bool) {
	program, err := parser.Parse(source)
	if err != nil {
		return nil, false
	}
	names := make([]string, 0, len(program.Children))
	for _, ch := range program.Children {
		nc, ok := ch.(ast.NodeChild)
		if !ok || nc.Kind != ast.KindClazz {
			return nil, false
		}
		names = append(names, ast.ClazzName(nc.Node))
	}
	if len(names) == 0 {
		return nil, false
	}
	return c.Lookup(key, names)
}

func parseStage(ctx *pipeline.Context) *pipeline.Context {
	program, err := parser.Parse(ctx.Source)
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			ctx.Err = diagnostics.NewError(diagnostics.ErrA005, pe.Tok, pe.Error())
		} else {
			ctx.Err = err
		}
		return ctx
	}
	ctx.Program = program
	return ctx
}

func transformStageFor(mainClass string) pipeline.StageFunc {
	return func(ctx *pipeline.Context) *pipeline.Context {
		name := mainClass
		if name == "" {
			name = config.DefaultMainClassFallback
		}
		ctx.Program = transform.Run(ctx.Program, name)
		return ctx
	}
}

func identCheckStage(ctx *pipeline.Context) *pipeline.Context {
	if errs := identck.Check(ctx.Program); len(errs) > 0 {
		ctx.Err = errs[0]
	}
	return ctx
}

func typeInferStage(ctx *pipeline.Context) *pipeline.Context {
	if errs := typeinfer.Infer(ctx.Program, ctx.Catalog); len(errs) > 0 {
		ctx.Err = errs[0]
	}
	return ctx
}

func semCheckStage(ctx *pipeline.Context) *pipeline.Context {
	if errs := semck.Check(ctx.Program, ctx.Catalog); len(errs) > 0 {
		ctx.Err = errs[0]
	}
	return ctx
}

func codegenStage(ctx *pipeline.Context) *pipeline.Context {
	classes := codegen.Generate(ctx.Program, ctx.Catalog)
	asm := make(map[string][]string, len(classes))
	for _, c := range classes {
		asm[c.Name] = c.Lines
	}
	ctx.ASM = asm
	return ctx
}

// writeASM fans the per-class listings out to <output-dir>/<class>.asm
// concurrently — spec.md's synchronous core guarantee covers C0a–C9 only;
// once codegen has produced its final, immutable map, writing the files
// it describes is pure independent I/O, so an errgroup is used exactly
// the way it would be for any other "N independent files" fan-out.
func writeASM(dir string, asm map[string][]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	var g errgroup.Group
	for name, lines := range asm {
		name, lines := name, lines
		g.Go(func() error {
			path := filepath.Join(dir, name+".asm")
			content := strings.Join(lines, "\n") + "\n"
			return os.WriteFile(path, []byte(content), 0o644)
		})
	}
	return g.Wait()
}

// treeDOT renders a DOT-format dump of the transformed tree for --png.
// Not a real PNG — spec.md §6 puts that out of core scope — just a debug
// aid a developer can pipe through `dot -Tpng` by hand.
func treeDOT(program *ast.Node) string {
	var b strings.Builder
	b.WriteString("digraph Tree {\n")
	id := 0
	var walk func(n *ast.Node) int
	walk = func(n *ast.Node) int {
		my := id
		id++
		label := string(n.Kind)
		if n.Tok.Lexeme != "" {
			label += "\\n" + n.Tok.Lexeme
		}
		fmt.Fprintf(&b, "  n%d [label=%q];\n", my, label)
		for _, c := range n.Children {
			if nc, ok := c.(ast.NodeChild); ok {
				child := walk(nc.Node)
				fmt.Fprintf(&b, "  n%d -> n%d;\n", my, child)
			}
		}
		return my
	}
	walk(program)
	b.WriteString("}\n")
	return b.String()
}

func runCacheSubcommand(args []string, stdout io.Writer) error {
	if len(args) < 1 || args[0] != "stat" {
		return usageErrorf("usage: quackc cache stat [DIR]")
	}
	dir := config.DefaultObjDir
	if len(args) > 1 {
		dir = args[1]
	}
	c, err := cache.Open(dir)
	if err != nil {
		return usageErrorf("%v", err)
	}
	defer c.Close()
	st, err := c.Stat()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "entries: %d\n", st.Entries)
	fmt.Fprintf(stdout, "size:    %s\n", humanize.Bytes(uint64(st.Bytes)))
	if st.Entries > 0 {
		fmt.Fprintf(stdout, "oldest:  %s\n", humanize.Time(st.Oldest))
		fmt.Fprintf(stdout, "newest:  %s\n", humanize.Time(st.Newest))
	}
	return nil
}

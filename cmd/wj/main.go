// Package main provides the wj command: build, check, watch and repl for
// Windjammer sources.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/windjammer-lang/windjammer/internal/cli"
	"github.com/windjammer-lang/windjammer/internal/compiler"
	"github.com/windjammer-lang/windjammer/internal/diagnostic"
	"github.com/windjammer-lang/windjammer/internal/position"
)

const tool = "wj"

var commands = []cli.CommandInfo{
	{
		Name:        "build",
		Usage:       "wj build [OPTIONS] <file.wj|dir>",
		Description: "Compile sources and write the output directory",
		Examples: []string{
			"wj build hello.wj",
			"wj build -target wasm -o web src/",
			"wj build -library -module-file -o out/lib src/",
		},
	},
	{
		Name:        "check",
		Usage:       "wj check [OPTIONS] <file.wj|dir>",
		Description: "Compile sources without writing output",
		Examples:    []string{"wj check src/", "wj check -cargo main.wj"},
	},
	{
		Name:        "watch",
		Usage:       "wj watch [OPTIONS] <file.wj|dir>",
		Description: "Rebuild whenever a source file changes",
		Examples:    []string{"wj watch -o build src/"},
	},
	{
		Name:        "repl",
		Usage:       "wj repl [-target rust|wasm|go]",
		Description: "Translate snippets interactively",
	},
	{
		Name:        "version",
		Usage:       "wj version [-json]",
		Description: "Print version information",
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		cli.PrintUsage(stderr, tool, commands)
		return 2
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "help", "-h", "-help", "--help":
		cli.PrintUsage(stdout, tool, commands)
		return 0
	case "version", "-version", "--version":
		fs := flag.NewFlagSet("version", flag.ContinueOnError)
		fs.SetOutput(stderr)
		jsonOutput := fs.Bool("json", false, "output version in JSON format")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		cli.PrintVersion(stdout, tool, *jsonOutput)
		return 0
	case "build", "check", "watch":
		return runCompile(ctx, sub, rest, stdout, stderr)
	case "repl":
		return runREPL(ctx, rest, stdout, stderr)
	}

	fmt.Fprintf(stderr, "unknown command: %s\n\n", sub)
	cli.PrintUsage(stderr, tool, commands)
	return 2
}

func commandInfo(name string) cli.CommandInfo {
	for _, c := range commands {
		if c.Name == name {
			return c
		}
	}
	return cli.CommandInfo{Name: name}
}

// flags holds the options shared by build, check and watch
type flags struct {
	fs            *flag.FlagSet
	config        string
	target        string
	compileTarget string
	output        string
	stdlib        string
	verbose       bool
	debug         bool
	format        bool
	jobs          int
	cargo         bool
	library       bool
	moduleFile    bool
}

func newFlags(name string, stderr io.Writer) *flags {
	f := &flags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	fs := f.fs
	fs.SetOutput(stderr)
	fs.StringVar(&f.config, "config", "", "config file (default ./"+cli.DefaultConfigFile+" if present)")
	fs.StringVar(&f.target, "target", "", "output language: rust, wasm or go")
	fs.StringVar(&f.compileTarget, "compile-target", "", "decorator mapping: wasm, node, python or c")
	fs.StringVar(&f.output, "o", "", "output directory")
	fs.StringVar(&f.stdlib, "stdlib", "", "stdlib directory (overrides $"+cli.StdlibEnv+")")
	fs.BoolVar(&f.verbose, "v", false, "verbose output")
	fs.BoolVar(&f.debug, "debug", false, "debug output")
	fs.BoolVar(&f.format, "format", false, "run the target formatter on generated code")
	fs.IntVar(&f.jobs, "jobs", 0, "files compiled in parallel")
	fs.BoolVar(&f.cargo, "cargo", false, "run cargo (wasm-pack for wasm) on the output")
	if name != "check" {
		fs.BoolVar(&f.library, "library", false, "drop fn main from every file")
		fs.BoolVar(&f.moduleFile, "module-file", false, "write a mod.rs re-exporting every file")
	}
	fs.Usage = func() {
		cli.PrintCommandUsage(stderr, tool, commandInfo(name))
		fmt.Fprintf(stderr, "OPTIONS:\n")
		fs.PrintDefaults()
	}
	return f
}

// resolve loads the config file and applies the environment and every flag
// given on the command line, in that order
func (f *flags) resolve() (*cli.Config, error) {
	cfg, err := cli.LoadConfig(f.config)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "target":
			cfg.Target = f.target
		case "compile-target":
			cfg.CompileTarget = f.compileTarget
		case "o":
			cfg.OutputDir = f.output
		case "stdlib":
			cfg.StdlibDir = f.stdlib
		case "v":
			cfg.Verbose = f.verbose
		case "debug":
			cfg.Debug = f.debug
		case "format":
			cfg.Format = f.format
		case "jobs":
			cfg.Jobs = f.jobs
		}
	})
	return cfg, nil
}

func runCompile(ctx context.Context, name string, args []string, stdout, stderr io.Writer) int {
	f := newFlags(name, stderr)
	if err := f.fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if err := cli.ValidateArgs(f.fs.Args(), 1, commandInfo(name).Usage); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	path := f.fs.Arg(0)

	color := stderrIsTerminal(stderr)
	cfg, err := f.resolve()
	if err != nil {
		printError(stderr, err, color)
		return 1
	}
	log := cli.NewLogger(cfg.Verbose, cfg.Debug)
	log.Out = stderr

	opts, err := compiler.OptionsFromConfig(cfg)
	if err != nil {
		printError(stderr, err, color)
		return 1
	}
	opts.Cargo = f.cargo
	opts.Library = f.library
	opts.ModuleFile = f.moduleFile

	d, err := compiler.New(opts, log)
	if err != nil {
		printError(stderr, err, color)
		return 1
	}

	switch name {
	case "check":
		report, err := d.Check(ctx, path)
		if err != nil {
			printReport(stderr, report, err, color)
			return 1
		}
		fmt.Fprintf(stdout, "%d file(s) checked, no errors\n", len(report.Results))
	case "watch":
		w := d.NewWatcher(path, func(report *compiler.Report, err error) {
			if err != nil {
				printReport(stderr, report, err, color)
				return
			}
			fmt.Fprintf(stdout, "built %d file(s) into %s\n", len(report.Results), d.Options().OutputDir)
		})
		fmt.Fprintf(stdout, "watching %s (Ctrl+C to stop)\n", path)
		if err := w.Run(ctx); err != nil {
			printError(stderr, err, color)
			return 1
		}
	default:
		report, err := d.Build(ctx, path)
		if err != nil {
			printReport(stderr, report, err, color)
			return 1
		}
		fmt.Fprintf(stdout, "built %d file(s) into %s\n", len(report.Results), d.Options().OutputDir)
		for _, name := range report.Written {
			log.Debug("  %s", name)
		}
	}
	return 0
}

// printReport renders the per-file failures of report, or err itself when
// the failure was not tied to a file
func printReport(w io.Writer, report *compiler.Report, err error, color bool) {
	engine := diagnostic.NewDiagnosticEngine(diagnostic.DiagnosticConfig{
		MaxErrors:       50,
		ShowSuggestions: true,
		Color:           color,
	})
	if report != nil {
		for _, res := range report.Failed() {
			engine.AddSource(position.NewSourceFile(res.Path, res.Source))
			engine.AddError(res.Err)
		}
	}
	if !stderrors.Is(err, compiler.ErrCompileFailed) {
		engine.AddError(err)
	}
	engine.SortDiagnostics()
	fmt.Fprint(w, engine.FormatDiagnostics())
}

func printError(w io.Writer, err error, color bool) {
	printReport(w, nil, err, color)
}

func stderrIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return diagnostic.IsTerminal(f.Fd()) && !strings.EqualFold(os.Getenv("TERM"), "dumb")
}

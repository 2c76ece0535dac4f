package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/windjammer-lang/windjammer/internal/cli"
	"github.com/windjammer-lang/windjammer/internal/codegen"
	"github.com/windjammer-lang/windjammer/internal/compiler"
	"github.com/windjammer-lang/windjammer/internal/diagnostic"
	"github.com/windjammer-lang/windjammer/internal/parser"
	"github.com/windjammer-lang/windjammer/internal/position"
)

const (
	historyFile = ".wj_history"
	promptMain  = "wj> "
	promptCont  = "... "
	replFile    = "<repl>"
)

const replHelp = `REPL commands:
  :help            Show this help
  :target <name>   Switch output language (rust, wasm, go)
  :quit            Exit the REPL

Items (fn, struct, enum, impl, ...) are translated as written. Anything else
is translated as the body of fn main.
`

// inputState is the outcome of parsing the input collected so far
type inputState int

const (
	inputComplete inputState = iota
	inputIncomplete
	inputInvalid
)

// classifyInput decides whether src is ready to compile. Input that is not a list
// of items is retried as the body of fn main; the returned source is the
// form that parsed.
func classifyInput(src string) (string, inputState, error) {
	_, err := parser.ParseSource(replFile, src)
	if err == nil {
		return src, inputComplete, nil
	}
	wrapped := "fn main() {\n" + src + "\n}\n"
	_, werr := parser.ParseSource(replFile, wrapped)
	if werr == nil {
		return wrapped, inputComplete, nil
	}
	if parser.IsIncomplete(err) || parser.IsIncomplete(werr) {
		return src, inputIncomplete, nil
	}
	return src, inputInvalid, err
}

// session translates REPL input with one driver per target
type session struct {
	opts    compiler.Options
	log     *cli.Logger
	drivers map[codegen.Target]*compiler.Driver
	target  codegen.Target
	out     io.Writer
	errOut  io.Writer
	color   bool
}

func newSession(opts compiler.Options, log *cli.Logger, out, errOut io.Writer, color bool) *session {
	return &session{
		opts:    opts,
		log:     log,
		drivers: make(map[codegen.Target]*compiler.Driver),
		target:  opts.Target,
		out:     out,
		errOut:  errOut,
		color:   color,
	}
}

func (s *session) driver() (*compiler.Driver, error) {
	if d, ok := s.drivers[s.target]; ok {
		return d, nil
	}
	opts := s.opts
	opts.Target = s.target
	d, err := compiler.New(opts, s.log)
	if err != nil {
		return nil, err
	}
	s.drivers[s.target] = d
	return d, nil
}

// command runs a ":" command and reports whether the REPL should exit
func (s *session) command(line string) bool {
	fields := strings.Fields(strings.TrimPrefix(line, ":"))
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "q", "quit", "exit":
		return true
	case "h", "help":
		fmt.Fprint(s.out, replHelp)
	case "target":
		if len(fields) < 2 {
			fmt.Fprintf(s.out, "target: %s\n", s.target)
			return false
		}
		t, err := codegen.ParseTarget(fields[1])
		if err != nil {
			fmt.Fprintln(s.errOut, err)
			return false
		}
		s.target = t
		fmt.Fprintf(s.out, "target: %s\n", s.target)
	default:
		fmt.Fprintf(s.errOut, "unknown command :%s (try :help)\n", fields[0])
	}
	return false
}

// eval translates src and prints the generated source, or diagnostics
func (s *session) eval(ctx context.Context, src string) {
	d, err := s.driver()
	if err != nil {
		printError(s.errOut, err, s.color)
		return
	}
	out, err := d.CompileSource(ctx, replFile, src)
	if err != nil {
		s.diagnose(src, err)
		return
	}
	fmt.Fprint(s.out, out.Source)
	if !strings.HasSuffix(out.Source, "\n") {
		fmt.Fprintln(s.out)
	}
}

func (s *session) diagnose(src string, err error) {
	engine := diagnostic.NewDiagnosticEngine(diagnostic.DiagnosticConfig{ShowSuggestions: true, Color: s.color})
	engine.AddSource(position.NewSourceFile(replFile, src))
	engine.AddError(err)
	fmt.Fprint(s.errOut, engine.FormatDiagnostics())
}

func runREPL(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	target := fs.String("target", "", "output language: rust, wasm or go")
	configPath := fs.String("config", "", "config file")
	debug := fs.Bool("debug", false, "debug output")
	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	color := stderrIsTerminal(stderr)
	cfg, err := cli.LoadConfig(*configPath)
	if err != nil {
		printError(stderr, err, color)
		return 1
	}
	cfg.ApplyEnv(os.Getenv)
	if *target != "" {
		cfg.Target = *target
	}
	opts, err := compiler.OptionsFromConfig(cfg)
	if err != nil {
		printError(stderr, err, color)
		return 1
	}
	log := cli.NewLogger(false, *debug)
	log.Out = stderr
	s := newSession(opts, log, stdout, stderr, color)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(stdout, "Windjammer %s REPL (target %s). Type :help for commands, Ctrl+D to exit.\n", cli.Version, s.target)

	var buf strings.Builder
	for ctx.Err() == nil {
		prompt := promptMain
		if buf.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if stderrors.Is(err, liner.ErrPromptAborted) {
			buf.Reset()
			continue
		}
		if err != nil {
			fmt.Fprintln(stdout)
			return 0
		}

		if buf.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			ln.AppendHistory(line)
			if s.command(strings.TrimSpace(line)) {
				return 0
			}
			continue
		}
		if buf.Len() == 0 && strings.TrimSpace(line) == "" {
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		src, state, perr := classifyInput(buf.String())
		switch state {
		case inputIncomplete:
			continue
		case inputInvalid:
			s.diagnose(buf.String(), perr)
		default:
			s.eval(ctx, src)
		}
		ln.AppendHistory(buf.String())
		buf.Reset()
	}
	return 0
}

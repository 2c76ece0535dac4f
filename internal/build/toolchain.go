package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// CommandSpec describes an external command to be executed by a runner.
type CommandSpec struct {
	Env     map[string]string
	WorkDir string
	Cmd     string
	Args    []string
}

func (s CommandSpec) String() string {
	if len(s.Args) == 0 {
		return s.Cmd
	}
	return s.Cmd + " " + strings.Join(s.Args, " ")
}

// RustToolchain provides commands operating on generated Rust code.
type RustToolchain struct {
	Edition string // defaults to 2021
}

func (tc RustToolchain) edition() string {
	if tc.Edition == "" {
		return "2021"
	}
	return tc.Edition
}

// Format creates a CommandSpec that reads Rust source on stdin and writes the
// formatted source to stdout.
func (tc RustToolchain) Format() CommandSpec {
	return CommandSpec{Cmd: "rustfmt", Args: []string{"--edition", tc.edition(), "--emit", "stdout"}}
}

// Check creates a CommandSpec that type-checks the crate in dir.
func (tc RustToolchain) Check(dir string) (CommandSpec, error) {
	if dir == "" {
		return CommandSpec{}, errors.New("crate directory must be non-empty")
	}
	return CommandSpec{Cmd: "cargo", Args: []string{"check", "--quiet"}, WorkDir: dir}, nil
}

// Build creates a CommandSpec that compiles the crate in dir. Wasm crates are
// built with wasm-pack for the web target.
func (tc RustToolchain) Build(dir string, wasm, release bool) (CommandSpec, error) {
	if dir == "" {
		return CommandSpec{}, errors.New("crate directory must be non-empty")
	}
	if wasm {
		args := []string{"build", "--target", "web"}
		if !release {
			args = append(args, "--dev")
		}
		return CommandSpec{Cmd: "wasm-pack", Args: args, WorkDir: dir}, nil
	}
	args := []string{"build"}
	if release {
		args = append(args, "--release")
	}
	return CommandSpec{Cmd: "cargo", Args: args, WorkDir: dir}, nil
}

// Run executes spec, feeding stdin to the process, and returns its stdout.
// The process is killed when ctx is done. On failure the error carries the
// process stderr.
func Run(ctx context.Context, spec CommandSpec, stdin []byte) ([]byte, error) {
	if spec.Cmd == "" {
		return nil, errors.New("command must be non-empty")
	}
	path, err := exec.LookPath(spec.Cmd)
	if err != nil {
		return nil, fmt.Errorf("%s not found: %w", spec.Cmd, err)
	}

	cmd := exec.CommandContext(ctx, path, spec.Args...)
	cmd.Dir = spec.WorkDir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), envList(spec.Env)...)
	}
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", spec, err)
		}
		return nil, fmt.Errorf("%s: %w: %s", spec, err, msg)
	}
	return stdout.Bytes(), nil
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

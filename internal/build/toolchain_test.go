package build

import (
	"context"
	"strings"
	"testing"
)

func TestRustToolchain_FormatSpec(t *testing.T) {
	spec := RustToolchain{}.Format()
	if spec.Cmd != "rustfmt" {
		t.Fatalf("bad cmd: %s", spec.Cmd)
	}
	if got := strings.Join(spec.Args, " "); got != "--edition 2021 --emit stdout" {
		t.Fatalf("bad args: %s", got)
	}
	spec = RustToolchain{Edition: "2018"}.Format()
	if spec.Args[1] != "2018" {
		t.Fatalf("edition not honored: %v", spec.Args)
	}
}

func TestRustToolchain_BuildSpec(t *testing.T) {
	tests := []struct {
		wasm, release bool
		cmd, args     string
	}{
		{false, false, "cargo", "build"},
		{false, true, "cargo", "build --release"},
		{true, true, "wasm-pack", "build --target web"},
		{true, false, "wasm-pack", "build --target web --dev"},
	}
	for i, tt := range tests {
		spec, err := RustToolchain{}.Build("out", tt.wasm, tt.release)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if spec.Cmd != tt.cmd {
			t.Fatalf("tests[%d] - cmd wrong. expected=%q, got=%q", i, tt.cmd, spec.Cmd)
		}
		if got := strings.Join(spec.Args, " "); got != tt.args {
			t.Fatalf("tests[%d] - args wrong. expected=%q, got=%q", i, tt.args, got)
		}
		if spec.WorkDir != "out" {
			t.Fatalf("tests[%d] - workdir wrong: %q", i, spec.WorkDir)
		}
	}
	if _, err := (RustToolchain{}).Build("", false, false); err == nil {
		t.Fatalf("expected error for empty directory")
	}
	if _, err := (RustToolchain{}).Check(""); err == nil {
		t.Fatalf("expected error for empty directory")
	}
}

func TestRun_MissingCommand(t *testing.T) {
	_, err := Run(context.Background(), CommandSpec{Cmd: "wj-definitely-not-installed"}, nil)
	if err == nil {
		t.Fatalf("expected error for missing command")
	}
	if _, err := Run(context.Background(), CommandSpec{}, nil); err == nil {
		t.Fatalf("expected error for empty command")
	}
}

func TestEnvList_Sorted(t *testing.T) {
	got := envList(map[string]string{"B": "2", "A": "1"})
	if strings.Join(got, ",") != "A=1,B=2" {
		t.Fatalf("env not sorted: %v", got)
	}
}

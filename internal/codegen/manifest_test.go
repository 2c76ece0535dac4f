package codegen

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolveDependencies(t *testing.T) {
	tests := []struct {
		name   string
		crates []string
		pinned map[string]string
		want   []Dependency
	}{
		{
			name:   "highest release wins",
			crates: []string{"tokio", "serde", "wasm_bindgen", "serde"},
			want: []Dependency{
				{Name: "serde", Version: "1.0.210", Features: []string{"derive"}},
				{Name: "tokio", Version: "1.40.0", Features: []string{"full"}},
				{Name: "wasm-bindgen", Version: "0.2.93"},
			},
		},
		{
			name:   "pinned constraint",
			crates: []string{"tokio"},
			pinned: map[string]string{"tokio": "~1.32"},
			want:   []Dependency{{Name: "tokio", Version: "1.32.0", Features: []string{"full"}}},
		},
		{
			name:   "pinned by path name",
			crates: []string{"wasm_bindgen"},
			pinned: map[string]string{"wasm_bindgen": "<0.2.90"},
			want:   []Dependency{{Name: "wasm-bindgen", Version: "0.2.87"}},
		},
		{
			name:   "unknown crates",
			crates: []string{"anyhow", "itertools"},
			pinned: map[string]string{"itertools": "0.12"},
			want: []Dependency{
				{Name: "anyhow", Version: "*"},
				{Name: "itertools", Version: "0.12"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDependencies(DefaultCrates, tt.crates, tt.pinned)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("dependencies wrong.\nexpected=%+v\ngot=%+v", tt.want, got)
			}
		})
	}
}

func TestResolveDependenciesErrors(t *testing.T) {
	tests := []struct {
		name   string
		pinned map[string]string
	}{
		{"invalid constraint", map[string]string{"rand": "not a version"}},
		{"unsatisfiable constraint", map[string]string{"rand": "^2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveDependencies(DefaultCrates, []string{"rand"}, tt.pinned)
			var ce *ConstraintError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConstraintError, got %v", err)
			}
			if ce.Crate != "rand" {
				t.Errorf("crate wrong. expected=%q, got=%q", "rand", ce.Crate)
			}
		})
	}
}

func TestManifestRender(t *testing.T) {
	m := Manifest{
		Name:   "demo",
		CDyLib: true,
		Dependencies: []Dependency{
			{Name: "wasm-bindgen", Version: "0.2.93"},
			{Name: "serde", Version: "1.0.210", Features: []string{"derive"}},
		},
	}
	expected := `[package]
name = "demo"
version = "0.1.0"
edition = "2021"

[lib]
crate-type = ["cdylib"]

[dependencies]
wasm-bindgen = "0.2.93"
serde = { version = "1.0.210", features = ["derive"] }

[profile.release]
opt-level = "s"
lto = true
`
	if got := m.Render(); got != expected {
		t.Errorf("manifest wrong.\nexpected=%q\ngot=%q", expected, got)
	}
}

func TestPackageIdent(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"My App", "my_app"},
		{"hello-world", "hello-world"},
		{"2048", "wj_2048"},
		{"", "wj_"},
	}
	for i, tt := range tests {
		if got := PackageIdent(tt.input); got != tt.expected {
			t.Errorf("tests[%d] - PackageIdent(%q) wrong. expected=%q, got=%q", i, tt.input, tt.expected, got)
		}
	}
}

func TestManifestTargets(t *testing.T) {
	m := Manifest{
		Name:    "app",
		LibPath: "mod.rs",
		Bins:    []BinTarget{{Name: "main", Path: "main.rs"}, {Name: "tool", Path: "tool.rs"}},
	}
	expected := `[package]
name = "app"
version = "0.1.0"
edition = "2021"

[lib]
path = "mod.rs"

[[bin]]
name = "main"
path = "main.rs"

[[bin]]
name = "tool"
path = "tool.rs"

[dependencies]
`
	if got := m.Render(); got != expected {
		t.Errorf("manifest wrong.\nexpected=%q\ngot=%q", expected, got)
	}
}

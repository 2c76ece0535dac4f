package cli

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/windjammer-lang/windjammer/internal/errors"
)

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name           string
		verbose, debug bool
		expected       []string
		absent         []string
	}{
		{"quiet", false, false, []string{"[WARN]", "[ERROR]"}, []string{"[INFO]", "[DEBUG]"}},
		{"verbose", true, false, []string{"[INFO]", "[WARN]"}, []string{"[DEBUG]"}},
		{"debug implies verbose", false, true, []string{"[INFO]", "[DEBUG]"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(tt.verbose, tt.debug)
			l.Out = &buf
			l.Info("compiling %s", "a.wj")
			l.Debug("phase %d", 2)
			l.Warn("careful")
			l.Error("failed")
			out := buf.String()
			for _, want := range tt.expected {
				if !strings.Contains(out, want) {
					t.Errorf("missing %q in %q", want, out)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(out, unwanted) {
					t.Errorf("unexpected %q in %q", unwanted, out)
				}
			}
		})
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.Info("ignored")
	l.Error("ignored")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wj.json")
	content := `{
  "target": "go",
  "output_dir": "out",
  "format": true,
  "jobs": 0,
  "crate_versions": {"serde": "^1.0"}
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Target != "go" || cfg.OutputDir != "out" || !cfg.Format {
		t.Errorf("config fields wrong: %+v", cfg)
	}
	if cfg.CompileTarget != "wasm" || cfg.StdlibDir != "std" {
		t.Errorf("defaults not kept: %+v", cfg)
	}
	if cfg.Jobs != 1 {
		t.Errorf("jobs wrong. expected=1, got=%d", cfg.Jobs)
	}
	if cfg.CrateVersions["serde"] != "^1.0" {
		t.Errorf("crate versions wrong: %v", cfg.CrateVersions)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	for i, path := range []string{bad, filepath.Join(dir, "missing.json")} {
		_, err := LoadConfig(path)
		var se *errors.StandardError
		if !stderrors.As(err, &se) || se.Category != errors.CategoryConfig {
			t.Errorf("tests[%d] - expected a CONFIG error, got %v", i, err)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(string) string { return "" })
	if cfg.StdlibDir != "std" {
		t.Errorf("stdlib dir changed without env: %q", cfg.StdlibDir)
	}
	cfg.ApplyEnv(func(k string) string {
		if k == StdlibEnv {
			return "/opt/wj/std"
		}
		return ""
	})
	if cfg.StdlibDir != "/opt/wj/std" {
		t.Errorf("stdlib dir wrong. got=%q", cfg.StdlibDir)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wj.json")
	cfg := DefaultConfig()
	cfg.Target = "wasm"
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Target != "wasm" {
		t.Errorf("target wrong. got=%q", loaded.Target)
	}
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintVersion(&buf, "wj", false)
	if !strings.HasPrefix(buf.String(), "wj v"+Version+"\n") {
		t.Errorf("version output wrong: %q", buf.String())
	}

	buf.Reset()
	PrintVersion(&buf, "wj", true)
	var decoded struct {
		Tool string      `json:"tool"`
		Info VersionInfo `json:"version_info"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Tool != "wj" || decoded.Info.Version != Version {
		t.Errorf("decoded version wrong: %+v", decoded)
	}
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf, "wj", []CommandInfo{{Name: "build", Description: "Compile sources"}})
	if !strings.Contains(buf.String(), "build        Compile sources") {
		t.Errorf("usage wrong: %q", buf.String())
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/windjammer-lang/windjammer/internal/errors"
)

// DefaultConfigFile is looked up in the working directory when no -config
// flag is given.
const DefaultConfigFile = "wj.json"

// StdlibEnv names the environment variable that overrides StdlibDir.
const StdlibEnv = "WINDJAMMER_STDLIB"

// Config is the wj.json project configuration.
type Config struct {
	Verbose       bool              `json:"verbose"`
	Debug         bool              `json:"debug"`
	Target        string            `json:"target"`
	CompileTarget string            `json:"compile_target"`
	OutputDir     string            `json:"output_dir"`
	Format        bool              `json:"format"`
	StdlibDir     string            `json:"stdlib_dir"`
	Jobs          int               `json:"jobs"`
	CrateVersions map[string]string `json:"crate_versions"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Target:        "rust",
		CompileTarget: "wasm",
		OutputDir:     "build",
		StdlibDir:     "std",
		Jobs:          runtime.NumCPU(),
	}
}

// LoadConfig reads configPath over the defaults. An empty path tries
// DefaultConfigFile; a missing default file is not an error, a missing
// explicit one is.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return config, nil
		}
		return nil, errors.InvalidConfig(configPath, err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.InvalidConfig(configPath, err)
	}
	if config.Jobs < 1 {
		config.Jobs = 1
	}

	return config, nil
}

// ApplyEnv lets WINDJAMMER_STDLIB override the configured stdlib directory.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if dir := getenv(StdlibEnv); dir != "" {
		c.StdlibDir = dir
	}
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WriteFailed(configPath, err)
		}
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WriteFailed(configPath, err)
	}

	return nil
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir string `toml:"log_dir"`
}

// Ingest contains settings for the ingestion pipeline.
type Ingest struct {
	// DeviceID is stamped on every message record; vendor reports rarely
	// expose a stable device identifier.
	DeviceID   string `toml:"device_id"`
	ReportName string `toml:"report_name"`
	ReportExt  string `toml:"report_ext"`
	// BufferSize bounds the streaming hash/copy buffer in bytes.
	BufferSize int      `toml:"buffer_size"`
	MediaDirs  []string `toml:"media_dirs"`
	// DialectPath points at a YAML dialect table overlaying the built-in one.
	DialectPath string `toml:"dialect_path"`
}

// Ledger contains configuration for the run history database.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Verify contains configuration for the offline manifest verifier.
type Verify struct {
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ufdr.
//
// Configuration sections by subsystem:
//   - Paths: log directory
//   - Ingest: report discovery, blob buffering, media scan, dialect table
//   - Ledger: SQLite run history
//   - Verify: verifier concurrency
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Ingest  Ingest  `toml:"ingest"`
	Ledger  Ledger  `toml:"ledger"`
	Verify  Verify  `toml:"verify"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ufdr/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file yields defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	candidates, err := SearchPaths()
	if err != nil {
		return "", false, err
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return candidates[0], false, nil
}

// SearchPaths lists the locations Load checks, in order, when no explicit
// path is given.
func SearchPaths() ([]string, error) {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	projectPath, err := filepath.Abs("ufdr.toml")
	if err != nil {
		return nil, err
	}
	return []string{defaultPath, projectPath}, nil
}

// EnsureDirectories creates the log directory and the ledger's parent directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.Ledger.Enabled && c.Ledger.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Ledger.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// ErrConfigExists reports that WriteSample would clobber an existing file.
var ErrConfigExists = errors.New("config file already exists")

// Sample returns the annotated sample configuration.
func Sample() []byte {
	return []byte(sampleConfig)
}

// WriteSample writes the sample configuration to path, or to
// DefaultConfigPath when path is empty, and returns the resolved location.
// An existing file is replaced only when overwrite is set.
func WriteSample(path string, overwrite bool) (string, error) {
	target := strings.TrimSpace(path)
	var err error
	if target == "" {
		target, err = DefaultConfigPath()
	} else {
		target, err = expandPath(target)
	}
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}

	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			return target, fmt.Errorf("%w at %s", ErrConfigExists, target)
		} else if !os.IsNotExist(err) {
			return target, fmt.Errorf("check config path: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return target, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(target, Sample(), 0o644); err != nil {
		return target, fmt.Errorf("write sample config: %w", err)
	}
	return target, nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

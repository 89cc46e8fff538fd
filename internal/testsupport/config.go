package testsupport

import (
	"path/filepath"
	"testing"

	"ufdr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Ledger.Path = filepath.Join(base, "state", "ledger.db")
	cfgVal.Ingest.DeviceID = "device-test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLedgerDisabled turns off run history recording.
func WithLedgerDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// WithDialect points the config at a dialect override file.
func WithDialect(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.DialectPath = path
	}
}

// WithVerifyWorkers overrides the verifier pool size.
func WithVerifyWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Verify.Workers = n
	}
}

// WithBufferSize overrides the blob streaming buffer.
func WithBufferSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.BufferSize = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}

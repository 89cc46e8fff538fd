package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeIngest(); err != nil {
		return err
	}
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeVerify()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIngest() error {
	if value, ok := os.LookupEnv("UFDR_DEVICE_ID"); ok && strings.TrimSpace(value) != "" {
		c.Ingest.DeviceID = value
	}
	c.Ingest.DeviceID = strings.TrimSpace(c.Ingest.DeviceID)
	if c.Ingest.DeviceID == "" {
		c.Ingest.DeviceID = defaultDeviceID
	}

	c.Ingest.ReportName = strings.TrimSpace(c.Ingest.ReportName)
	if c.Ingest.ReportName == "" {
		c.Ingest.ReportName = defaultReportName
	}
	c.Ingest.ReportExt = strings.ToLower(strings.TrimSpace(c.Ingest.ReportExt))
	if c.Ingest.ReportExt == "" {
		c.Ingest.ReportExt = defaultReportExt
	}
	if !strings.HasPrefix(c.Ingest.ReportExt, ".") {
		c.Ingest.ReportExt = "." + c.Ingest.ReportExt
	}

	if c.Ingest.BufferSize <= 0 {
		c.Ingest.BufferSize = defaultBufferSize
	}

	dirs := make([]string, 0, len(c.Ingest.MediaDirs))
	seen := make(map[string]struct{}, len(c.Ingest.MediaDirs))
	for _, dir := range c.Ingest.MediaDirs {
		normalized := strings.Trim(strings.TrimSpace(dir), "/")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		dirs = append(dirs, normalized)
	}
	if len(dirs) == 0 {
		dirs = append(dirs, DefaultMediaDirs...)
	}
	c.Ingest.MediaDirs = dirs

	if c.Ingest.DialectPath == "" {
		if value, ok := os.LookupEnv("UFDR_DIALECT_PATH"); ok {
			c.Ingest.DialectPath = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Ingest.DialectPath, err = expandPath(strings.TrimSpace(c.Ingest.DialectPath)); err != nil {
		return fmt.Errorf("ingest.dialect_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLedger() error {
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = defaultLedgerPath
	}
	var err error
	if c.Ledger.Path, err = expandPath(strings.TrimSpace(c.Ledger.Path)); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeVerify() {
	if c.Verify.Workers <= 0 {
		c.Verify.Workers = defaultWorkers
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("UFDR_LOG_FORMAT"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Format = value
	}
	if value, ok := os.LookupEnv("UFDR_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

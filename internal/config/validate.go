package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateVerify(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateIngest() error {
	if strings.ContainsAny(c.Ingest.ReportName, `/\`) {
		return fmt.Errorf("ingest.report_name %q must be a bare file name", c.Ingest.ReportName)
	}
	if c.Ingest.BufferSize < minBufferSize {
		return fmt.Errorf("ingest.buffer_size must be at least %d bytes", minBufferSize)
	}
	for _, dir := range c.Ingest.MediaDirs {
		if filepath.IsAbs(dir) || strings.Contains(dir, "..") {
			return fmt.Errorf("ingest.media_dirs entry %q must be relative to the raw workspace", dir)
		}
	}
	return nil
}

func (c *Config) validateVerify() error {
	if c.Verify.Workers > maxVerifyWorkers {
		return fmt.Errorf("verify.workers must be at most %d", maxVerifyWorkers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

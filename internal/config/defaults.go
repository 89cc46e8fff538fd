package config

const (
	defaultLogDir      = "~/.local/share/ufdr/logs"
	defaultLedgerPath  = "~/.local/share/ufdr/ledger.db"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultDeviceID    = "device-unknown"
	defaultReportName  = "report.xml"
	defaultReportExt   = ".xml"
	defaultBufferSize  = 64 * 1024
	minBufferSize      = 4 * 1024
	defaultWorkers     = 4
	maxVerifyWorkers   = 64
	defaultLedgerState = true
)

// DefaultMediaDirs lists the conventional media folders scanned for orphan blobs.
var DefaultMediaDirs = []string{"attachments", "media", "files", "images", "videos"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Ingest: Ingest{
			DeviceID:   defaultDeviceID,
			ReportName: defaultReportName,
			ReportExt:  defaultReportExt,
			BufferSize: defaultBufferSize,
			MediaDirs:  append([]string(nil), DefaultMediaDirs...),
		},
		Ledger: Ledger{
			Enabled: defaultLedgerState,
			Path:    defaultLedgerPath,
		},
		Verify: Verify{
			Workers: defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

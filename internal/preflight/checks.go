package preflight

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"ufdr/internal/config"
	"ufdr/internal/report"
)

var zipSignature = []byte("PK\x03\x04")

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckInput verifies that an extraction container is readable. Directories
// must be listable; files must start with a zip local header.
func CheckInput(path string) Result {
	const name = "Input container"

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (extracted directory)", path)}
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: open: %v)", path, err)}
	}
	defer f.Close()
	header := make([]byte, len(zipSignature))
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, zipSignature) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a zip archive)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (zip archive, %d bytes)", path, info.Size())}
}

// CheckOutputDir verifies an existing output directory is writable, or that
// its nearest existing ancestor allows creating it.
func CheckOutputDir(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "missing path"}
	}
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	return CheckWritableTarget(name, path)
}

// CheckWritableTarget verifies that path can be created, walking up to the
// first existing ancestor.
func CheckWritableTarget(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "missing path"}
	}
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
		}
		return CheckDirectoryAccess(name, path)
	}
	ancestor := filepath.Dir(filepath.Clean(path))
	for {
		info, err := os.Stat(ancestor)
		if err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, ancestor)}
			}
			if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
			}
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
		}
		ancestor = parent
	}
}

// CheckLedger verifies that the run history database location is usable.
func CheckLedger(cfg *config.Config) Result {
	const name = "Run ledger"
	if !cfg.Ledger.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if info, err := os.Stat(cfg.Ledger.Path); err == nil {
		if info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", cfg.Ledger.Path)}
		}
		if err := unix.Access(cfg.Ledger.Path, unix.R_OK|unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", cfg.Ledger.Path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", cfg.Ledger.Path)}
	}
	parent := CheckWritableTarget(name, filepath.Dir(cfg.Ledger.Path))
	if !parent.Passed {
		return parent
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", cfg.Ledger.Path)}
}

// CheckDialect verifies that a dialect override file loads cleanly.
func CheckDialect(path string) Result {
	const name = "Report dialect"
	if path == "" {
		return Result{Name: name, Passed: true, Detail: "built-in"}
	}
	d, err := report.LoadDialect(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s, %d record types)", path, d.Name, len(d.Records))}
}

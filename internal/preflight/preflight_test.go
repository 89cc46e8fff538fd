package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ufdr/internal/config"
	"ufdr/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckInput(t *testing.T) {
	base := t.TempDir()
	zipPath := testsupport.SampleContainer().WriteZip(t, filepath.Join(base, "case.ufdr"))
	dirPath := testsupport.SampleContainer().WriteDir(t, filepath.Join(base, "extracted"))
	textPath := filepath.Join(base, "notes.txt")
	if err := os.WriteFile(textPath, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		pass bool
	}{
		{name: "zip", path: zipPath, pass: true},
		{name: "directory", path: dirPath, pass: true},
		{name: "plain file", path: textPath, pass: false},
		{name: "missing", path: filepath.Join(base, "missing.ufdr"), pass: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckInput(tt.path)
			if result.Passed != tt.pass {
				t.Fatalf("Passed = %v, detail %s", result.Passed, result.Detail)
			}
		})
	}
}

func TestCheckOutputDir_Creatable(t *testing.T) {
	result := CheckOutputDir("out", filepath.Join(t.TempDir(), "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("detail = %s", result.Detail)
	}
}

func TestCheckOutputDir_UnderFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckOutputDir("out", filepath.Join(f, "child")); result.Passed {
		t.Fatal("expected failure when an ancestor is a file")
	}
}

func TestCheckDialect(t *testing.T) {
	if result := CheckDialect(""); !result.Passed || result.Detail != "built-in" {
		t.Fatalf("unexpected result %+v", result)
	}
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("records:\n  messages:\n    items: [msg]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDialect(bad); result.Passed {
		t.Fatal("expected failure for rule without containers")
	}
}

func TestCheckLedger_Disabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLedgerDisabled())
	if result := CheckLedger(cfg); !result.Passed || result.Detail != "Disabled" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(nil, "", t.TempDir())
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := testsupport.SampleContainer().WriteZip(t, filepath.Join(t.TempDir(), "case.ufdr"))

	results := RunAll(cfg, input, filepath.Join(t.TempDir(), "out"))
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_SkipsInputWhenEmpty(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Ledger.Enabled = false

	results := RunAll(&cfg, "", t.TempDir())
	for _, r := range results {
		if r.Name == "Input container" {
			t.Fatal("input check should be skipped without an input path")
		}
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
}

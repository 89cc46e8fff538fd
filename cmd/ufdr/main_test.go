package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ufdr/internal/ingest"
	"ufdr/internal/testsupport"
)

func ingestSample(t *testing.T, env *cliTestEnv, caseID string) ingest.Summary {
	t.Helper()
	input := testsupport.SampleContainer().WriteZip(t, filepath.Join(env.baseDir, "input", caseID+".ufdr"))
	out, _, err := runCLI(t, []string{"ingest", input, env.outputDir, caseID}, env.configPath, "")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	var summary ingest.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary %q: %v", out, err)
	}
	return summary
}

func TestIngestPrintsSummary(t *testing.T) {
	env := setupCLITestEnv(t)
	summary := ingestSample(t, env, "case-1")

	if summary.CaseID != "case-1" || summary.RunID == "" {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Messages.Count != 1 || summary.Contacts.Count != 1 || summary.Calls.Count != 1 || summary.Blobs.Count != 1 {
		t.Fatalf("unexpected counts %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, "case-1", "parsed", "messages.jsonl")); err != nil {
		t.Fatalf("messages stream missing: %v", err)
	}
}

func TestIngestFailsWithoutReport(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.NewContainer().
		Add("media/IMG_001.jpg", testsupport.SampleImage).
		WriteZip(t, filepath.Join(env.baseDir, "noreport.ufdr"))

	out, _, err := runCLI(t, []string{"ingest", input, env.outputDir, "case-2"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected ingest to fail without a report")
	}
	if out != "" {
		t.Fatalf("stdout should stay empty on failure, got %q", out)
	}
}

func TestIngestRequiresThreeArgs(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"ingest", "only-one"}, env.configPath, ""); err == nil {
		t.Fatal("expected argument error")
	}
}

func TestVerifyAfterIngest(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithVerifyWorkers(3))
	ingestSample(t, env, "case-v")
	manifestPath := filepath.Join(env.outputDir, "case-v", "parsed", "blobs_manifest.jsonl")
	blobsDir := filepath.Join(env.outputDir, "case-v", "blobs")

	out, _, err := runCLI(t, []string{"verify", manifestPath, blobsDir, "--strict"}, env.configPath, "")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	requireContains(t, out, "Verified 1 blobs.")

	entries, err := os.ReadDir(blobsDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one blob, got %v (%v)", entries, err)
	}
	if err := os.WriteFile(filepath.Join(blobsDir, entries[0].Name()), []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err = runCLI(t, []string{"verify", manifestPath, blobsDir, "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("verify without --strict should succeed: %v", err)
	}
	var view verifyView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode verify json: %v", err)
	}
	if len(view.Findings) != 1 || view.Findings[0].Kind != "hash_mismatch" {
		t.Fatalf("unexpected findings %+v", view.Findings)
	}

	_, _, err = runCLI(t, []string{"verify", manifestPath, blobsDir, "--strict"}, env.configPath, "")
	if !errors.Is(err, errVerifyFindings) {
		t.Fatalf("expected errVerifyFindings, got %v", err)
	}
}

func TestEntitiesFromArgsAndStdin(t *testing.T) {
	text := "Call +16502530000 or mail a.b@example.com, see https://example.com/x"
	out, _, err := runCLI(t, []string{"entities", text}, "", "")
	if err != nil {
		t.Fatalf("entities: %v", err)
	}
	var view entitiesView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode entities: %v", err)
	}
	if len(view.Phones) != 1 || len(view.Emails) != 1 || len(view.URLs) != 1 {
		t.Fatalf("unexpected entities %+v", view)
	}
	if len(view.NormalizedPhones) != 1 || view.NormalizedPhones[0].E164 != "+16502530000" {
		t.Fatalf("unexpected normalized phones %+v", view.NormalizedPhones)
	}

	out, _, err = runCLI(t, []string{"entities"}, "", "wallet 0xAbC1234567890aBcDeF1234567890AbCdEf12345\n")
	if err != nil {
		t.Fatalf("entities stdin: %v", err)
	}
	requireContains(t, out, "0xAbC1234567890aBcDeF1234567890AbCdEf12345")
}

func TestHistoryListsRuns(t *testing.T) {
	env := setupCLITestEnv(t)
	summary := ingestSample(t, env, "case-h")

	out, _, err := runCLI(t, []string{"history", "case-h", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []runView
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != summary.RunID || runs[0].Status != "succeeded" {
		t.Fatalf("unexpected runs %+v", runs)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, out, "case-h")
}

func TestHistoryRequiresLedger(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithLedgerDisabled())
	if _, _, err := runCLI(t, []string{"history"}, env.configPath, ""); !errors.Is(err, errLedgerDisabled) {
		t.Fatalf("expected errLedgerDisabled, got %v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"check", env.outputDir}, env.configPath, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "== Preflight ==")
	requireContains(t, out, "Output directory")

	missing := filepath.Join(env.baseDir, "missing.ufdr")
	if _, _, err := runCLI(t, []string{"check", env.outputDir, "--input", missing}, env.configPath, ""); !errors.Is(err, errPreflightFailed) {
		t.Fatalf("expected errPreflightFailed, got %v", err)
	}
}

func TestLogsFiltersByCase(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("UFDR_LOG_LEVEL", "info")
	t.Setenv("UFDR_LOG_FORMAT", "json")
	ingestSample(t, env, "case-l")

	out, _, err := runCLI(t, []string{"logs", "--case", "case-l", "-n", "100"}, env.configPath, "")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, `"case_id":"case-l"`)
	requireContains(t, out, "ingest complete")

	out, _, err = runCLI(t, []string{"logs", "--case", "other"}, env.configPath, "")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no lines for another case, got %q", out)
	}
}

// Package preflight provides readiness checks for the paths and tables an
// ingestion run depends on.
//
// These checks run in two contexts:
//   - The CLI "ufdr check" command prints every result as a table.
//   - "ufdr ingest" calls RunAll without an input path before touching the
//     output directory and refuses to start when any check fails. Container
//     problems are left to the run itself so they land in the ledger.
//
// Checks for disabled features pass with a "Disabled" detail.
package preflight

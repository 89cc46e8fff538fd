// Package report locates and parses the structured XML report inside an
// unpacked extraction.
//
// Parse builds a lightweight element tree whose tag and attribute names are
// normalized: namespaces are stripped (both Clark `{uri}local` and `prefix:`
// forms) and names are case-folded. Every node carries an XPath-like
// provenance path such as /report[1]/messages[1]/message[2], which record
// extractors copy into raw_source.
//
// Vendor layouts are described by a Dialect: per record type, the container
// and item keywords Walk matches by substring, and the ordered aliases each
// field is read from. The default dialect is embedded; operators can supply
// a YAML override without code changes.
package report

package report

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record types understood by the extractors.
const (
	RecordMessages = "messages"
	RecordContacts = "contacts"
	RecordCalls    = "calls"
)

//go:embed dialect.yaml
var defaultDialectYAML []byte

// Rule describes how one record type appears in a report.
type Rule struct {
	Containers  []string            `yaml:"containers"`
	Items       []string            `yaml:"items"`
	Fields      map[string][]string `yaml:"fields"`
	Attachments []string            `yaml:"attachments"`
}

// Field reads a named field from an item node using the rule's aliases.
// A field with no configured aliases is looked up by its own name.
func (r Rule) Field(n *Node, name string) string {
	aliases, ok := r.Fields[name]
	if !ok || len(aliases) == 0 {
		return n.First(name)
	}
	return n.First(aliases...)
}

// AttachmentNodes returns the attachment references beneath an item.
func (r Rule) AttachmentNodes(n *Node) []*Node {
	return n.All(r.Attachments...)
}

// Dialect maps record types to rules.
type Dialect struct {
	Name    string          `yaml:"name"`
	Records map[string]Rule `yaml:"records"`
}

// Rule returns the rule for a record type.
func (d *Dialect) Rule(recordType string) (Rule, bool) {
	if d == nil {
		return Rule{}, false
	}
	r, ok := d.Records[recordType]
	return r, ok
}

// DefaultDialect returns the embedded dialect.
func DefaultDialect() *Dialect {
	d, err := parseDialect(defaultDialectYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded dialect is invalid: %v", err))
	}
	return d
}

// LoadDialect returns the embedded dialect, overlaid with the record types
// defined in the YAML file at path when path is non-empty.
func LoadDialect(path string) (*Dialect, error) {
	base := DefaultDialect()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dialect: %w", err)
	}
	override, err := parseDialect(data)
	if err != nil {
		return nil, fmt.Errorf("dialect %s: %w", path, err)
	}
	if override.Name != "" {
		base.Name = override.Name
	}
	for recordType, rule := range override.Records {
		base.Records[recordType] = rule
	}
	return base, nil
}

func parseDialect(data []byte) (*Dialect, error) {
	var d Dialect
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dialect: %w", err)
	}
	if d.Records == nil {
		d.Records = make(map[string]Rule)
	}
	for recordType, rule := range d.Records {
		rule = normalizeRule(rule)
		if len(rule.Containers) == 0 || len(rule.Items) == 0 {
			return nil, fmt.Errorf("record type %q needs containers and items", recordType)
		}
		d.Records[recordType] = rule
	}
	return &d, nil
}

func normalizeRule(r Rule) Rule {
	r.Containers = normalizeKeywords(r.Containers)
	r.Items = normalizeKeywords(r.Items)
	r.Attachments = normalizeAliases(r.Attachments)
	fields := make(map[string][]string, len(r.Fields))
	for name, aliases := range r.Fields {
		fields[strings.TrimSpace(name)] = normalizeAliases(aliases)
	}
	r.Fields = fields
	return r
}

func normalizeKeywords(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = NormalizeTag(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func normalizeAliases(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, strings.ToLower(v))
	}
	return out
}

package report

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/language"
)

// ErrMalformedReport marks a report document that could not be parsed.
var ErrMalformedReport = errors.New("malformed report")

// Node is one element of a parsed report.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Path     string
	Parent   *Node
	Children []*Node
}

// NormalizeTag strips any namespace from name and case-folds it.
func NormalizeTag(name string) string {
	return normalizeWith(cases.Lower(language.Und), name)
}

func normalizeWith(caser cases.Caser, name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "}"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	return caser.String(name)
}

// ParseFile parses the report at path.
func ParseFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	root, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// Parse reads an XML document into a Node tree.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	caser := cases.Lower(language.Und)

	var (
		root  *Node
		stack []*Node
		text  []*bytes.Buffer
		// sibling counts per parent, keyed by normalized tag
		counts []map[string]int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedReport, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Tag: normalizeWith(caser, t.Name.Local)}
			if len(t.Attr) > 0 {
				node.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
						continue
					}
					node.Attrs[normalizeWith(caser, a.Name.Local)] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", ErrMalformedReport)
				}
				root = node
				node.Path = "/" + node.Tag + "[1]"
			} else {
				parent := stack[len(stack)-1]
				siblings := counts[len(counts)-1]
				siblings[node.Tag]++
				node.Parent = parent
				node.Path = parent.Path + "/" + node.Tag + "[" + strconv.Itoa(siblings[node.Tag]) + "]"
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
			text = append(text, &bytes.Buffer{})
			counts = append(counts, make(map[string]int))
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unexpected end element", ErrMalformedReport)
			}
			top := len(stack) - 1
			stack[top].Text = strings.TrimSpace(text[top].String())
			stack, text, counts = stack[:top], text[:top], counts[:top]
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedReport)
	}
	return root, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Child returns the first direct child with the given normalized tag.
func (n *Node) Child(tag string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// Attr returns a normalized attribute value.
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return strings.TrimSpace(n.Attrs[name])
}

// First returns the first non-empty value among aliases. An alias is a
// direct child tag, a slash-separated child path such as "party/name", or
// an attribute written "@name".
func (n *Node) First(aliases ...string) string {
	if n == nil {
		return ""
	}
	for _, alias := range aliases {
		if v := n.lookup(alias); v != "" {
			return v
		}
	}
	return ""
}

func (n *Node) lookup(alias string) string {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return ""
	}
	if strings.HasPrefix(alias, "@") {
		return n.Attr(NormalizeTag(alias[1:]))
	}
	cur := n
	for _, part := range strings.Split(alias, "/") {
		cur = cur.Child(NormalizeTag(part))
		if cur == nil {
			return ""
		}
	}
	return cur.Text
}

// All returns every node reached by the aliases, in alias order then
// document order. Aliases use the same path syntax as First; attribute
// aliases are ignored.
func (n *Node) All(aliases ...string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, alias := range aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" || strings.HasPrefix(alias, "@") {
			continue
		}
		level := []*Node{n}
		for _, part := range strings.Split(alias, "/") {
			tag := NormalizeTag(part)
			var next []*Node
			for _, parent := range level {
				for _, c := range parent.Children {
					if c.Tag == tag {
						next = append(next, c)
					}
				}
			}
			level = next
		}
		out = append(out, level...)
	}
	return out
}

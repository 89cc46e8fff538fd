package report

import (
	"errors"
	"strings"
)

// ErrStop ends a Walk early without reporting an error.
var ErrStop = errors.New("stop walk")

// Walk visits the tree in document order. For every element whose tag
// contains a container keyword of rule, each direct child whose tag
// contains an item keyword is passed to fn. Nested or repeated containers
// each yield their own items.
func Walk(root *Node, rule Rule, fn func(*Node) error) error {
	if root == nil {
		return nil
	}
	err := walk(root, rule, fn)
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

func walk(n *Node, rule Rule, fn func(*Node) error) error {
	if containsAny(n.Tag, rule.Containers) {
		for _, c := range n.Children {
			if !containsAny(c.Tag, rule.Items) {
				continue
			}
			if err := fn(c); err != nil {
				return err
			}
		}
	}
	for _, c := range n.Children {
		if err := walk(c, rule, fn); err != nil {
			return err
		}
	}
	return nil
}

func containsAny(tag string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(tag, k) {
			return true
		}
	}
	return false
}

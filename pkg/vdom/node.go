// Package vdom provides the virtual DOM snapshot and diff used to derive
// minimal patch sets between two successive renders of a view or component.
package vdom

import (
	"sort"
	"strings"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <button>, etc.
	KindText                // Plain text node
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Node is a virtual DOM node. Snapshots are immutable once built; diffing
// never mutates either tree.
type Node struct {
	Kind     Kind
	Tag      string            // Element tag name (e.g., "div")
	Attrs    map[string]string // Attributes
	Text     string            // For KindText
	Children []*Node
}

// TextNode creates a text node.
func TextNode(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// Element creates an element node.
func Element(tag string, attrs map[string]string, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: attrs, Children: children}
}

// HTML serializes the node tree back to markup. Attributes are emitted in
// sorted order so output is deterministic.
func (n *Node) HTML() string {
	var sb strings.Builder
	n.writeHTML(&sb)
	return sb.String()
}

func (n *Node) writeHTML(sb *strings.Builder) {
	if n == nil {
		return
	}
	if n.Kind == KindText {
		sb.WriteString(n.Text)
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	for _, key := range sortedKeys(n.Attrs) {
		sb.WriteByte(' ')
		sb.WriteString(key)
		sb.WriteString(`="`)
		sb.WriteString(n.Attrs[key])
		sb.WriteByte('"')
	}
	if isVoidElement(n.Tag) && len(n.Children) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	for _, child := range n.Children {
		child.writeHTML(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Void elements never have children or a closing tag.
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "source": {},
	"track": {}, "wbr": {},
}

func isVoidElement(tag string) bool {
	_, ok := voidElements[strings.ToLower(tag)]
	return ok
}

package vdom

import (
	"strings"
	"unicode"
)

// Parse builds a node tree from rendered markup. The parser is deliberately
// small: it understands elements, attributes (quoted or bare), void and
// self-closing elements, comments, and text. It is lenient — unclosed tags
// are closed at end of input rather than rejected, since the input is our
// own renderer's output, not untrusted HTML.
//
// Multiple top-level nodes are wrapped in a synthetic root element so that
// every snapshot is a single tree.
func Parse(html string) *Node {
	p := &parser{input: html}
	children := p.parseNodes("")
	if len(children) == 1 && children[0].Kind == KindElement {
		return children[0]
	}
	return &Node{Kind: KindElement, Tag: rootTag, Children: children}
}

// rootTag names the synthetic wrapper for multi-root fragments.
const rootTag = "djust-root"

type parser struct {
	input string
	pos   int
}

// parseNodes consumes siblings until the matching close tag (or EOF).
func (p *parser) parseNodes(parentTag string) []*Node {
	var nodes []*Node
	for p.pos < len(p.input) {
		if strings.HasPrefix(p.input[p.pos:], "</") {
			end := strings.IndexByte(p.input[p.pos:], '>')
			if end < 0 {
				p.pos = len(p.input)
				return nodes
			}
			closing := strings.TrimSpace(p.input[p.pos+2 : p.pos+end])
			if parentTag != "" && !strings.EqualFold(closing, parentTag) {
				// Mismatched close tag: close the current element here and
				// let an ancestor consume it.
				return nodes
			}
			p.pos += end + 1
			return nodes
		}
		if strings.HasPrefix(p.input[p.pos:], "<!--") {
			if end := strings.Index(p.input[p.pos:], "-->"); end >= 0 {
				p.pos += end + 3
			} else {
				p.pos = len(p.input)
			}
			continue
		}
		if p.input[p.pos] == '<' && p.pos+1 < len(p.input) && isTagStart(p.input[p.pos+1]) {
			nodes = append(nodes, p.parseElement())
			continue
		}
		if text := p.parseText(); text != nil {
			nodes = append(nodes, text)
		}
	}
	return nodes
}

func (p *parser) parseElement() *Node {
	p.pos++ // consume '<'
	start := p.pos
	for p.pos < len(p.input) && isTagChar(p.input[p.pos]) {
		p.pos++
	}
	node := &Node{Kind: KindElement, Tag: p.input[start:p.pos]}

	selfClosed := false
	for p.pos < len(p.input) {
		p.skipSpace()
		if p.pos >= len(p.input) {
			break
		}
		if strings.HasPrefix(p.input[p.pos:], "/>") {
			p.pos += 2
			selfClosed = true
			break
		}
		if p.input[p.pos] == '>' {
			p.pos++
			break
		}
		key, value := p.parseAttr()
		if key != "" {
			if node.Attrs == nil {
				node.Attrs = make(map[string]string)
			}
			node.Attrs[key] = value
		}
	}

	if selfClosed || isVoidElement(node.Tag) {
		return node
	}
	node.Children = p.parseNodes(node.Tag)
	return node
}

func (p *parser) parseAttr() (string, string) {
	start := p.pos
	for p.pos < len(p.input) && isAttrNameChar(p.input[p.pos]) {
		p.pos++
	}
	key := p.input[start:p.pos]
	if key == "" {
		p.pos++ // avoid stalling on unexpected bytes
		return "", ""
	}
	p.skipSpace()
	if p.pos >= len(p.input) || p.input[p.pos] != '=' {
		return key, "" // boolean attribute
	}
	p.pos++
	p.skipSpace()
	if p.pos < len(p.input) && (p.input[p.pos] == '"' || p.input[p.pos] == '\'') {
		quote := p.input[p.pos]
		p.pos++
		start = p.pos
		for p.pos < len(p.input) && p.input[p.pos] != quote {
			p.pos++
		}
		value := p.input[start:p.pos]
		if p.pos < len(p.input) {
			p.pos++ // closing quote
		}
		return key, value
	}
	start = p.pos
	for p.pos < len(p.input) && !unicode.IsSpace(rune(p.input[p.pos])) && p.input[p.pos] != '>' {
		p.pos++
	}
	return key, p.input[start:p.pos]
}

func (p *parser) parseText() *Node {
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != '<' {
		p.pos++
	}
	// A lone '<' that does not open a tag is treated as text.
	if p.pos == start {
		p.pos++
		if p.pos > len(p.input) {
			p.pos = len(p.input)
		}
	}
	text := p.input[start:p.pos]
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return &Node{Kind: KindText, Text: text}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func isTagStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isTagChar(c byte) bool {
	return isTagStart(c) || c >= '0' && c <= '9' || c == '-'
}

func isAttrNameChar(c byte) bool {
	return isTagChar(c) || c == '_' || c == ':'
}

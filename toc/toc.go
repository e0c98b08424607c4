// Package toc extracts a table of contents from rendered HTML and rewrites
// headers so each carries an in-page anchor.
//
// A Parser keeps state between Feed calls and must not be shared between
// documents or goroutines.
package toc

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// punctuationExp matches runs of whitespace and punctuation (ASCII, Latin-1,
// general and CJK punctuation, full-width forms) that become "-" in anchor ids.
var punctuationExp = regexp.MustCompile(`[\s\x{0020}-\x{002f}\x{003a}-\x{0040}\x{005b}-\x{0060}\x{007b}-\x{007e}` +
	`\x{00a0}-\x{00bf}\x{2000}-\x{206f}\x{2e00}-\x{2e7f}\x{3000}-\x{303f}` +
	`\x{ff01}-\x{ff0f}\x{ff1a}-\x{ff20}\x{ff3b}-\x{ff40}\x{ff5b}-\x{ff65}` +
	`\x{ffe0}-\x{ffe6}\x{ffe8}-\x{ffec}\x{fe10}-\x{fe1f}]+`)

// Node is one header in the TOC tree.
type Node struct {
	Level     int     `json:"level"`
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	InnerHTML string  `json:"inner_html"`
	Children  []*Node `json:"children"`

	parent *Node
}

func (n *Node) clone() *Node {
	c := &Node{
		Level:     n.Level,
		ID:        n.ID,
		Text:      n.Text,
		InnerHTML: n.InnerHTML,
		Children:  make([]*Node, 0, len(n.Children)),
	}
	for _, child := range n.Children {
		c.Children = append(c.Children, child.clone())
	}
	return c
}

// Parser consumes HTML and builds the header tree.
type Parser struct {
	root     *Node
	curr     *Node
	inHeader bool
	startTag string
	out      strings.Builder
	idCount  map[string]int
}

// New returns an empty Parser.
func New() *Parser {
	root := &Node{Children: []*Node{}}
	return &Parser{
		root:    root,
		curr:    root,
		idCount: make(map[string]int),
	}
}

// Feed processes a chunk of markup. Malformed markup never fails; it is
// passed through as well as the tokenizer can recover it.
func (p *Parser) Feed(markup string) {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				// Unparsable tail, keep it verbatim.
				p.write(string(z.Raw()))
			}
			return
		}
		raw := string(z.Raw())
		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			p.handleStartTag(name, raw)
		case html.EndTagToken:
			name, _ := z.TagName()
			p.handleEndTag(name, raw)
		case html.TextToken:
			if p.inHeader {
				p.curr.Text += raw
			}
			p.write(raw)
		default:
			// Comments, doctypes and self-closing tags.
			p.write(raw)
		}
	}
}

func (p *Parser) write(s string) {
	if p.inHeader {
		p.curr.InnerHTML += s
		return
	}
	p.out.WriteString(s)
}

func (p *Parser) handleStartTag(name []byte, raw string) {
	if p.inHeader {
		p.curr.InnerHTML += raw
		return
	}
	level := headerLevel(name)
	if level == 0 {
		p.out.WriteString(raw)
		return
	}
	node := &Node{Level: level, Children: []*Node{}}
	for node.Level <= p.curr.Level {
		p.curr = p.curr.parent
	}
	node.parent = p.curr
	p.curr.Children = append(p.curr.Children, node)
	p.curr = node
	p.inHeader = true
	p.startTag = raw
}

func (p *Parser) handleEndTag(name []byte, raw string) {
	if !p.inHeader {
		p.out.WriteString(raw)
		return
	}
	if headerLevel(name) == 0 {
		p.curr.InnerHTML += raw
		return
	}

	id := strings.Trim(punctuationExp.ReplaceAllString(p.curr.Text, "-"), "-")
	count := p.idCount[id]
	p.idCount[id]++
	if count > 0 {
		id = fmt.Sprintf("%s_%d", id, count)
	}
	p.curr.ID = id

	p.out.WriteString(p.startTag)
	fmt.Fprintf(&p.out, `<a id="%s" href="#%s" class="anchor"></a>`, id, id)
	p.out.WriteString(p.curr.InnerHTML)
	p.out.WriteString(raw)
	p.startTag = ""
	p.inHeader = false
}

// HTML returns the processed markup with header anchors inserted. A header
// left open at the end of input is emitted without an anchor.
func (p *Parser) HTML() string {
	if p.inHeader {
		return p.out.String() + p.startTag + p.curr.InnerHTML
	}
	return p.out.String()
}

// TOC returns the header tree pruned to depth levels of nesting and to
// headers no lower than lowestLevel. depth 0 means 6.
func (p *Parser) TOC(depth, lowestLevel int) []*Node {
	depth = min(max(depth, 0), 6)
	if depth == 0 {
		depth = 6
	}
	lowestLevel = min(max(lowestLevel, 1), 6)

	toc := p.root.clone().Children
	return prune(toc, depth, lowestLevel, 1)
}

func prune(nodes []*Node, depth, lowestLevel, currDepth int) []*Node {
	if currDepth > depth {
		return []*Node{}
	}
	kept := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Level > lowestLevel {
			continue
		}
		n.Children = prune(n.Children, depth, lowestLevel, currDepth+1)
		kept = append(kept, n)
	}
	return kept
}

// TOCHTML renders the pruned tree as nested lists of anchor links.
func (p *Parser) TOCHTML(depth, lowestLevel int) string {
	toc := p.TOC(depth, lowestLevel)
	if len(toc) == 0 {
		return ""
	}
	var buf bytes.Buffer
	writeList(&buf, toc)
	return buf.String()
}

func writeList(buf *bytes.Buffer, nodes []*Node) {
	if len(nodes) == 0 {
		return
	}
	buf.WriteString("<ul>\n")
	for _, n := range nodes {
		fmt.Fprintf(buf, `<li><a href="#%s">%s</a>`, n.ID, n.InnerHTML)
		writeList(buf, n.Children)
		buf.WriteString("</li>\n")
	}
	buf.WriteString("</ul>")
}

func headerLevel(name []byte) int {
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	return 0
}

package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Document wraps a parsed HTML tree with the small set of lookups the
// extractors need. Lookups never fail: a selector that matches nothing
// yields a nil node or an empty string.
type Document struct {
	root *html.Node
}

// Parse builds a Document from raw page bytes. The underlying parser is
// error-tolerant, so only truly unreadable input fails.
func Parse(data []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// Select returns the first node matching a minimal selector. Supported
// forms: "tag", ".class", "#id" and "tag.class".
func (d *Document) Select(selector string) *html.Node {
	return FirstIn(d.root, selector)
}

// SelectAll returns every node matching the selector in document order.
func (d *Document) SelectAll(selector string) []*html.Node {
	return AllIn(d.root, selector)
}

// SelectText returns the text of the first selector that matches a node,
// or "" when none do.
func (d *Document) SelectText(selectors ...string) string {
	for _, selector := range selectors {
		if n := d.Select(selector); n != nil {
			return Text(n)
		}
	}
	return ""
}

// Title returns the <title> text.
func (d *Document) Title() string {
	if n := d.Select("title"); n != nil {
		return Text(n)
	}
	return ""
}

// MetaProperty returns the content of <meta property=...>.
func (d *Document) MetaProperty(property string) string {
	return d.metaContent("property", property)
}

// MetaName returns the content of <meta name=...>.
func (d *Document) MetaName(name string) string {
	return d.metaContent("name", name)
}

func (d *Document) metaContent(attr, want string) string {
	var content string
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "meta" && attrVal(n, attr) == want {
			content = attrVal(n, "content")
			return false
		}
		return true
	})
	return content
}

// JSONLDBlocks returns the raw contents of every ld+json script tag in
// document order.
func (d *Document) JSONLDBlocks() []string {
	var blocks []string
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "script" &&
			strings.EqualFold(attrVal(n, "type"), "application/ld+json") {
			var b strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					b.WriteString(c.Data)
				}
			}
			blocks = append(blocks, b.String())
		}
		return true
	})
	return blocks
}

// Anchor is one link with its visible text.
type Anchor struct {
	Text string
	Href string
}

// Anchors returns every <a> in the document.
func (d *Document) Anchors() []Anchor {
	return AnchorsIn(d.root)
}

// AnchorsIn collects the anchors beneath root.
func AnchorsIn(root *html.Node) []Anchor {
	if root == nil {
		return nil
	}
	var anchors []Anchor
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "a" {
			anchors = append(anchors, Anchor{Text: Text(n), Href: attrVal(n, "href")})
		}
		return true
	})
	return anchors
}

// FirstIn returns the first node under root matching the selector, or nil.
func FirstIn(root *html.Node, selector string) *html.Node {
	if root == nil {
		return nil
	}
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if matches(n, selector) {
			found = n
			return false
		}
		return true
	})
	return found
}

// AllIn returns every node under root matching the selector.
func AllIn(root *html.Node, selector string) []*html.Node {
	if root == nil {
		return nil
	}
	var nodes []*html.Node
	walk(root, func(n *html.Node) bool {
		if matches(n, selector) {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}

// Text returns the whitespace-collapsed visible text beneath n. Script and
// style contents are never part of visible text.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	appendText(n, &b)
	return collapse(b.String())
}

func appendText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(c, b)
	}
}

// walk visits nodes in document order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func matches(n *html.Node, selector string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch {
	case strings.HasPrefix(selector, "#"):
		return attrVal(n, "id") == selector[1:]
	case strings.HasPrefix(selector, "."):
		return hasClass(n, selector[1:])
	case strings.Contains(selector, "."):
		tag, class, _ := strings.Cut(selector, ".")
		return n.Data == tag && hasClass(n, class)
	default:
		return n.Data == selector
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

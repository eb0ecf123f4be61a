package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Boilerplate containers whose text never describes the person.
var noiseTags = map[string]struct{}{
	"script":   {},
	"style":    {},
	"nav":      {},
	"header":   {},
	"footer":   {},
	"aside":    {},
	"iframe":   {},
	"noscript": {},
}

// Elements whose class attribute contains any of these fragments are
// dropped with their whole subtree.
var noiseClassFragments = []string{
	"cookie",
	"banner",
	"ad",
	"advertisement",
	"popup",
	"modal",
	"sidebar",
	"menu",
	"navigation",
}

// CleanText returns the visible text of doc with boilerplate and
// noise-classed subtrees removed and whitespace collapsed. The document is
// not modified; cleaning already-clean text is a no-op.
func CleanText(doc *Document) string {
	if doc == nil || doc.root == nil {
		return ""
	}
	var b strings.Builder
	appendClean(doc.root, &b)
	return collapse(b.String())
}

func appendClean(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	case html.ElementNode:
		if _, drop := noiseTags[n.Data]; drop {
			return
		}
		if isNoiseClassed(n) {
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendClean(c, b)
	}
}

func isNoiseClassed(n *html.Node) bool {
	class := strings.ToLower(attrVal(n, "class"))
	if class == "" {
		return false
	}
	for _, fragment := range noiseClassFragments {
		if strings.Contains(class, fragment) {
			return true
		}
	}
	return false
}

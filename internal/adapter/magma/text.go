package magma

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// skipText reports whether text under the element is not page prose.
func skipText(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "script", "style", "template", "noscript":
		return true
	}
	return false
}

// walkText calls fn for every prose text node under n in document order.
func walkText(n *html.Node, fn func(*html.Node)) {
	if skipText(n) {
		return
	}
	if n.Type == html.TextNode {
		fn(n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, fn)
	}
}

// flattenText joins every non-blank text node, trimmed, with newlines. The
// result is NFKC-normalized so non-breaking spaces compare as plain spaces.
func flattenText(root *html.Node) string {
	var lines []string
	walkText(root, func(n *html.Node) {
		if s := strings.TrimSpace(norm.NFKC.String(n.Data)); s != "" {
			lines = append(lines, s)
		}
	})
	return strings.Join(lines, "\n")
}

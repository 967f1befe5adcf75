package receipt

import (
	"regexp"
	"strings"

	"ridetrace/internal/model"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var amountRe = regexp.MustCompile(`^\$([\d.]+)$`)

func parseDocument(body string) (*html.Node, error) {
	return html.Parse(strings.NewReader(body))
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasDescendant(n *html.Node, a atom.Atom) bool {
	found := false
	for c := n.FirstChild; c != nil && !found; c = c.NextSibling {
		walk(c, func(d *html.Node) {
			if d.Type == html.ElementNode && d.DataAtom == a {
				found = true
			}
		})
	}
	return found
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// charges pairs each innermost table cell with a following sibling cell
// holding a dollar amount.
func charges(doc *html.Node) []model.Charge {
	var out []model.Charge
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Td || hasDescendant(n, atom.Td) {
			return
		}
		next := nextElement(n)
		if next == nil || next.DataAtom != atom.Td {
			return
		}
		m := amountRe.FindStringSubmatch(text(next))
		if m == nil {
			return
		}
		out = append(out, model.Charge{Label: text(n), Amount: m[1]})
	})
	return out
}

// mapImage returns the src of the first <img> mentioning "map", falling back
// to the first <img> with a src.
func mapImage(doc *html.Node) string {
	var first, mapped string
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Img {
			return
		}
		src := strings.TrimSpace(attr(n, "src"))
		if src == "" {
			return
		}
		if first == "" {
			first = src
		}
		if mapped == "" && (strings.Contains(strings.ToLower(src), "map") ||
			strings.Contains(strings.ToLower(attr(n, "alt")), "map")) {
			mapped = src
		}
	})
	if mapped != "" {
		return mapped
	}
	return first
}

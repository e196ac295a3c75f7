package wiktionary

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/louisbranch/fictionary/internal/game/domain"
)

const (
	headingID   = "firstHeading"
	semanticsID = "Семантические_свойства"

	// exampleMarker separates a meaning from its usage examples.
	exampleMarker = "◆"
)

// parsePage extracts the entry word and its meanings from a wiktionary
// article. Meanings come from the first ordered list after the semantics
// section; inline markup such as usage labels and footnote references is
// dropped.
func parsePage(r io.Reader) (string, []string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", nil, fmt.Errorf("parse article: %w", err)
	}

	ordered := flatten(doc)

	word := ""
	if heading := nodeByID(ordered, headingID); heading != nil {
		word = strings.TrimSpace(collectText(heading))
	}
	if word == "" {
		return "", nil, fmt.Errorf("article has no heading")
	}

	semantics := nodeByID(ordered, semanticsID)
	if semantics == nil {
		return "", nil, fmt.Errorf("article %q has no semantics section", word)
	}
	list := nextElement(ordered, semantics, "ol")
	if list == nil {
		return "", nil, fmt.Errorf("article %q has no meaning list", word)
	}

	var meanings []string
	for child := list.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "li" {
			continue
		}
		if meaning := meaningText(child); meaning != "" {
			meanings = append(meanings, meaning)
		}
	}
	return word, meanings, nil
}

// meaningText renders one list item, skipping span and sup elements, which
// carry usage labels and references rather than the definition itself.
func meaningText(li *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "span" || n.Data == "sup" {
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(li)

	text := b.String()
	if idx := strings.Index(text, exampleMarker); idx >= 0 {
		text = text[:idx]
	}
	return strings.Join(strings.Fields(text), " ")
}

// flatten returns the document's nodes in document order.
func flatten(doc *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		out = append(out, n)
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return out
}

func nodeByID(ordered []*html.Node, id string) *html.Node {
	for _, n := range ordered {
		if n.Type != html.ElementNode {
			continue
		}
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	return nil
}

// nextElement returns the first element named tag appearing after marker in
// document order.
func nextElement(ordered []*html.Node, marker *html.Node, tag string) *html.Node {
	seen := false
	for _, n := range ordered {
		if n == marker {
			seen = true
			continue
		}
		if seen && n.Type == html.ElementNode && n.Data == tag {
			return n
		}
	}
	return nil
}

func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

// question turns a parsed article into a playable question, or reports
// false when the article is unusable.
func question(word string, meanings []string) (domain.Question, bool) {
	if word == "" || strings.ContainsAny(word, " -") || len(meanings) == 0 {
		return domain.Question{}, false
	}
	return domain.Question{Word: word, Definition: capitalize(meanings[0])}, true
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

package cascade

import (
	"strings"

	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
)

// MatchAncestors reports whether the ancestor chain of b satisfies items,
// nearest first. Boxes without a tag are skipped. An item joined by '>'
// must match the next tagged ancestor; other items may match any ancestor
// further up.
func MatchAncestors(b *html.Box, items []css.SelectorItem) bool {
	cur := b
	for _, item := range items {
		for {
			cur = cur.Parent
			for cur != nil && cur.Tag == nil {
				cur = cur.Parent
			}
			if cur == nil {
				return false
			}
			if MatchToken(cur, item.Token) {
				break
			}
			if item.DirectParent {
				return false
			}
		}
	}
	return true
}

// MatchToken matches a simple selector such as "div", ".note", "#main",
// "p.note" or "p#main" against a tagged box.
func MatchToken(b *html.Box, token string) bool {
	if b.Tag == nil {
		return false
	}
	token = strings.ToLower(token)
	if token == "*" {
		return true
	}
	tag, id, classes := splitToken(token)
	if tag != "" && tag != "*" && tag != b.Tag.Name {
		return false
	}
	if id != "" && !strings.EqualFold(id, b.ID()) {
		return false
	}
	if len(classes) > 0 {
		own := b.Classes()
		for _, want := range classes {
			if !contains(own, want) {
				return false
			}
		}
	}
	return tag != "" || id != "" || len(classes) > 0
}

func splitToken(token string) (tag, id string, classes []string) {
	i := strings.IndexAny(token, ".#")
	if i < 0 {
		return token, "", nil
	}
	tag = token[:i]
	rest := token[i:]
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, ".#")
		if end < 0 {
			end = len(rest)
		}
		part := rest[:end]
		rest = rest[end:]
		if part == "" {
			continue
		}
		if kind == '#' {
			id = part
		} else {
			classes = append(classes, part)
		}
	}
	return tag, id, classes
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

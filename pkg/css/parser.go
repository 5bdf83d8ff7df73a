package css

import (
	"regexp"
	"strings"
)

var mediaRule = regexp.MustCompile(`(?i)@media\s*([^{]*)\{`)

// Parser turns stylesheet text into StylesheetData. It never fails: broken
// rules are skipped and parsing continues with the next one.
type Parser struct {
	values *ValueParser
}

// NewParser creates a stylesheet parser resolving font families through
// fonts.
func NewParser(fonts FontQuery) *Parser {
	return &Parser{values: NewValueParser(fonts)}
}

// Values returns the value parser used for declarations.
func (p *Parser) Values() *ValueParser {
	return p.values
}

// Parse parses text into a fresh stylesheet.
func (p *Parser) Parse(text string) *StylesheetData {
	data := NewStylesheetData()
	p.ParseInto(data, text)
	return data
}

// ParseOnto parses text on top of a copy of base. base is left untouched.
func (p *Parser) ParseOnto(base *StylesheetData, text string) *StylesheetData {
	var data *StylesheetData
	if base != nil {
		data = base.Clone()
	} else {
		data = NewStylesheetData()
	}
	p.ParseInto(data, text)
	return data
}

// ParseInto parses text and adds the rules to data in place.
func (p *Parser) ParseInto(data *StylesheetData, text string) {
	text = StripComments(text)
	if strings.TrimSpace(text) == "" {
		return
	}
	rest := p.parseMediaBlocks(data, text)
	p.parseStyleBlocks(data, MediaAll, removeAtRules(rest))
}

// ParseBlock parses a declaration list such as an inline style attribute
// into a block stored under key.
func (p *Parser) ParseBlock(key, declarations string) *Block {
	b := &Block{Key: key, Properties: Properties{}}
	p.ParseDeclarations(b.Properties, declarations)
	return b
}

// StripComments removes /* */ comments. An unterminated comment runs to the
// end of the text.
func StripComments(text string) string {
	if !strings.Contains(text, "/*") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if i+1 < len(text) && text[i] == '/' && text[i+1] == '*' {
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				break
			}
			i += 2 + end + 2
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

// matchBrace returns the index of the '}' closing the '{' at open, or -1.
func matchBrace(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseMediaBlocks feeds the content of every @media rule into the buckets of
// its media types and returns the text with those rules cut out.
func (p *Parser) parseMediaBlocks(data *StylesheetData, text string) string {
	matches := mediaRule.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var rest strings.Builder
	pos := 0
	for _, m := range matches {
		if m[0] < pos {
			// nested inside an earlier @media body
			continue
		}
		open := m[1] - 1
		close := matchBrace(text, open)
		body := ""
		end := len(text)
		if close < 0 {
			body = text[open+1:]
		} else {
			body = text[open+1 : close]
			end = close + 1
		}
		rest.WriteString(text[pos:m[0]])
		pos = end

		body = removeAtRules(body)
		for _, media := range strings.Split(text[m[2]:m[3]], ",") {
			media = strings.ToLower(strings.TrimSpace(media))
			if media == "" {
				media = MediaAll
			}
			p.parseStyleBlocks(data, media, body)
		}
	}
	rest.WriteString(text[pos:])
	return rest.String()
}

// removeAtRules drops every remaining at-rule: block at-rules up to their
// matching brace, statement at-rules up to their semicolon.
func removeAtRules(text string) string {
	if !strings.Contains(text, "@") {
		return text
	}
	var b strings.Builder
	i := 0
	for i < len(text) {
		at := strings.IndexByte(text[i:], '@')
		if at < 0 {
			break
		}
		at += i
		b.WriteString(text[i:at])
		semi := strings.IndexByte(text[at:], ';')
		open := strings.IndexByte(text[at:], '{')
		switch {
		case open >= 0 && (semi < 0 || open < semi):
			close := matchBrace(text, at+open)
			if close < 0 {
				return b.String()
			}
			i = close + 1
		case semi >= 0:
			i = at + semi + 1
		default:
			return b.String()
		}
	}
	b.WriteString(text[i:])
	return b.String()
}

// parseStyleBlocks scans text for "selector { declarations }" pairs. When a
// '{' shows up before the block is closed the block is malformed: the outer
// rule is dropped and scanning restarts at the last unmatched '{', whose
// rule is kept with the selector text following the preceding '{' or ';'.
func (p *Parser) parseStyleBlocks(data *StylesheetData, media, text string) {
	pos := 0
	for pos < len(text) {
		open := strings.IndexByte(text[pos:], '{')
		if open < 0 {
			return
		}
		open += pos
		start := pos
		if stray := strings.LastIndexByte(text[pos:open], '}'); stray >= 0 {
			start = pos + stray + 1
		}
		close := -1
		for i := open + 1; i < len(text); i++ {
			if text[i] == '{' {
				start = open + 1
				if semi := strings.LastIndexByte(text[start:i], ';'); semi >= 0 {
					start += semi + 1
				}
				open = i
			}
			if text[i] == '}' {
				close = i
				break
			}
		}
		if close < 0 {
			return
		}
		p.feedStyleBlock(data, media, text[start:open], text[open+1:close])
		pos = close + 1
	}
}

// feedStyleBlock stores one rule under every selector of its comma separated
// selector list.
func (p *Parser) feedStyleBlock(data *StylesheetData, media, selectors, body string) {
	props := Properties{}
	p.ParseDeclarations(props, body)
	if len(props) == 0 {
		return
	}
	for _, sel := range strings.Split(selectors, ",") {
		sel = strings.ToLower(strings.TrimSpace(sel))
		if sel == "" {
			continue
		}
		hover := false
		if strings.HasSuffix(sel, SelectionKey) {
			sel = SelectionKey
		} else if colon := strings.IndexByte(sel, ':'); colon >= 0 {
			pseudo := strings.TrimSpace(sel[colon+1:])
			switch pseudo {
			case "link":
			case "hover":
				hover = true
			default:
				continue
			}
			sel = strings.TrimSpace(sel[:colon])
			if sel == "" {
				continue
			}
		}
		b := ParseSelector(sel)
		b.Hover = hover
		b.Properties = props.Clone()
		data.Add(media, b)
	}
}

// ParseSelector splits a selector into its primary key and ancestor chain.
// Tokens are read right to left; a '>' marks the next ancestor as a direct
// parent requirement.
func ParseSelector(selector string) *Block {
	selector = strings.ReplaceAll(selector, ">", " > ")
	tokens := strings.Fields(selector)
	b := &Block{}
	if len(tokens) == 0 {
		return b
	}
	last := len(tokens) - 1
	for last >= 0 && tokens[last] == ">" {
		last--
	}
	if last < 0 {
		return b
	}
	b.Key = tokens[last]
	direct := false
	for i := last - 1; i >= 0; i-- {
		if tokens[i] == ">" {
			direct = true
			continue
		}
		b.Ancestors = append(b.Ancestors, SelectorItem{Token: tokens[i], DirectParent: direct})
		direct = false
	}
	return b
}

// ParseDeclarations parses "name: value; ..." into props. A ';' inside a
// data:image URL does not end the declaration.
func (p *Parser) ParseDeclarations(props Properties, body string) {
	start := 0
	for start < len(body) {
		end := strings.IndexAny(body[start:], ";}")
		if end < 0 {
			end = len(body)
		} else {
			end += start
		}
		segment := body[start:end]
		if u := strings.Index(strings.ToLower(segment), "url("); u >= 0 &&
			strings.Contains(strings.ToLower(segment[u:]), "data:image") &&
			!strings.Contains(segment[u:], ")") {
			closeParen := strings.IndexByte(body[start+u:], ')')
			if closeParen >= 0 {
				next := strings.IndexAny(body[start+u+closeParen:], ";}")
				if next < 0 {
					end = len(body)
				} else {
					end = start + u + closeParen + next
				}
				segment = body[start:end]
			}
		}
		p.parseDeclaration(props, segment)
		start = end + 1
	}
}

func (p *Parser) parseDeclaration(props Properties, decl string) {
	colon := strings.IndexByte(decl, ':')
	if colon < 0 {
		return
	}
	name := strings.TrimSpace(decl[:colon])
	value := strings.TrimSpace(decl[colon+1:])
	if name == "" || value == "" {
		return
	}
	p.values.ParseProperty(props, name, value)
}

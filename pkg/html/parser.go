package html

// rawTextTags hold unparsed content up to their end tag.
var rawTextTags = map[string]bool{"style": true, "script": true}

// Parser builds a box tree from markup.
type Parser struct {
	tokenizer *Tokenizer
	root      *Box
	current   *Box
}

func NewParser(markup string) *Parser {
	root := NewRoot()
	return &Parser{tokenizer: NewTokenizer(markup), root: root, current: root}
}

// Parse consumes the whole input. It never fails; malformed markup yields a
// best-effort tree.
func (p *Parser) Parse() *Box {
	for {
		token := p.tokenizer.NextToken()
		switch token.Type {
		case TokenEOF:
			return p.root
		case TokenStartTag:
			p.openTag(token)
		case TokenEndTag:
			p.closeTag(token.TagName)
		case TokenText:
			p.addText(token.Text)
		}
	}
}

func (p *Parser) openTag(token Token) {
	tag := NewTag(token.TagName, token.SelfClosing)
	tag.Attrs = token.Attributes
	box := NewBox(p.current, tag)

	if rawTextTags[tag.Name] && !tag.Void {
		if raw := p.tokenizer.ReadRawUntil(tag.Name); raw != "" {
			NewTextBox(box, raw)
		}
		return
	}
	if !tag.Void {
		p.current = box
	}
}

// closeTag moves to the parent of the nearest open box with the same name.
// End tags without an open match are ignored.
func (p *Parser) closeTag(name string) {
	for b := p.current; b != nil && b != p.root; b = b.Parent {
		if b.TagName() == name {
			p.current = b.Parent
			return
		}
	}
}

// addText attaches text to the open box. Text after the last tag goes to
// the root instead, and is dropped when it is only whitespace.
func (p *Parser) addText(text string) {
	if p.tokenizer.pos >= len(p.tokenizer.input) {
		if !isBlank(text) {
			NewTextBox(p.root, text)
		}
		return
	}
	NewTextBox(p.current, text)
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isSpace(s[i]) {
			return false
		}
	}
	return true
}

// Parse builds the box tree of markup. The root is an anonymous block.
func Parse(markup string) *Box {
	return NewParser(markup).Parse()
}

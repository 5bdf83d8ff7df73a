package html

import (
	"strings"

	nethtml "golang.org/x/net/html"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenEOF
)

func (t TokenType) String() string {
	switch t {
	case TokenStartTag:
		return "StartTag"
	case TokenEndTag:
		return "EndTag"
	case TokenText:
		return "Text"
	case TokenEOF:
		return "EOF"
	}
	return "Unknown"
}

type Token struct {
	Type       TokenType
	TagName    string
	Attributes Attributes
	// Text is a slice of the input for text tokens.
	Text string
	// SelfClosing is set for tags ending with "/>".
	SelfClosing bool
}

// Tokenizer splits markup into tags and text. It never fails: anything that
// does not scan as a tag is returned as text.
type Tokenizer struct {
	input string
	pos   int
}

func NewTokenizer(markup string) *Tokenizer {
	return &Tokenizer{input: markup}
}

func (t *Tokenizer) NextToken() Token {
	for t.pos < len(t.input) {
		if t.input[t.pos] == '<' {
			start := t.pos
			if tok, ok := t.readMarkup(); ok {
				return tok
			}
			if t.pos == start {
				// not a tag; the '<' starts a text run
				return t.readText()
			}
			continue
		}
		return t.readText()
	}
	return Token{Type: TokenEOF}
}

// readMarkup handles the construct at a '<'. Comments, declarations and
// processing instructions are skipped and report false with pos moved past
// them. A '<' that does not start a tag reports false with pos unchanged.
func (t *Tokenizer) readMarkup() (Token, bool) {
	rest := t.input[t.pos:]
	switch {
	case strings.HasPrefix(rest, "<!--"):
		end := strings.Index(rest[4:], "-->")
		if end < 0 {
			t.pos = len(t.input)
		} else {
			t.pos += 4 + end + 3
		}
		return Token{}, false
	case strings.HasPrefix(rest, "<!"):
		t.skipPast(">")
		return Token{}, false
	case strings.HasPrefix(rest, "<?"):
		t.skipPast("?>")
		return Token{}, false
	case len(rest) > 2 && rest[1] == '/' && isLetter(rest[2]):
		start := t.pos
		t.pos += 2
		name := t.readTagName()
		end := strings.IndexByte(t.input[t.pos:], '>')
		if end < 0 {
			t.pos = start
			return Token{}, false
		}
		t.pos += end + 1
		return Token{Type: TokenEndTag, TagName: name}, true
	case len(rest) > 1 && isLetter(rest[1]):
		start := t.pos
		t.pos++
		tok, ok := t.readStartTag()
		if !ok {
			t.pos = start
		}
		return tok, ok
	}
	return Token{}, false
}

func (t *Tokenizer) readStartTag() (Token, bool) {
	tok := Token{Type: TokenStartTag, TagName: t.readTagName()}
	for {
		t.skipWhitespace()
		if t.pos >= len(t.input) {
			return Token{}, false
		}
		switch t.input[t.pos] {
		case '>':
			t.pos++
			return tok, true
		case '/':
			t.pos++
			t.skipWhitespace()
			if t.pos < len(t.input) && t.input[t.pos] == '>' {
				t.pos++
				tok.SelfClosing = true
				return tok, true
			}
			continue
		}
		name, value, ok := t.readAttribute()
		if !ok {
			return Token{}, false
		}
		if name != "" {
			tok.Attributes.Set(name, value)
		}
	}
}

func (t *Tokenizer) readTagName() string {
	start := t.pos
	for t.pos < len(t.input) && isTagNameChar(t.input[t.pos]) {
		t.pos++
	}
	return strings.ToLower(t.input[start:t.pos])
}

func (t *Tokenizer) readAttribute() (string, string, bool) {
	start := t.pos
	for t.pos < len(t.input) && isAttributeNameChar(t.input[t.pos]) {
		t.pos++
	}
	if t.pos == start {
		// stray character inside the tag
		t.pos++
		return "", "", true
	}
	name := strings.ToLower(t.input[start:t.pos])
	t.skipWhitespace()
	if t.pos >= len(t.input) || t.input[t.pos] != '=' {
		return name, "", true
	}
	t.pos++
	t.skipWhitespace()
	if t.pos >= len(t.input) {
		return "", "", false
	}
	quote := t.input[t.pos]
	if quote == '"' || quote == '\'' {
		t.pos++
		end := strings.IndexByte(t.input[t.pos:], quote)
		if end < 0 {
			return "", "", false
		}
		value := t.input[t.pos : t.pos+end]
		t.pos += end + 1
		return name, nethtml.UnescapeString(value), true
	}
	start = t.pos
	for t.pos < len(t.input) && !isSpace(t.input[t.pos]) && t.input[t.pos] != '>' {
		t.pos++
	}
	return name, nethtml.UnescapeString(t.input[start:t.pos]), true
}

// readText returns the run up to the next '<' that could start markup.
func (t *Tokenizer) readText() Token {
	start := t.pos
	t.pos++
	for t.pos < len(t.input) {
		next := strings.IndexByte(t.input[t.pos:], '<')
		if next < 0 {
			t.pos = len(t.input)
			break
		}
		t.pos += next
		if t.startsMarkup() {
			break
		}
		t.pos++
	}
	return Token{Type: TokenText, Text: t.input[start:t.pos]}
}

func (t *Tokenizer) startsMarkup() bool {
	rest := t.input[t.pos:]
	if len(rest) < 2 {
		return false
	}
	switch c := rest[1]; {
	case c == '!' || c == '?' || isLetter(c):
		return true
	case c == '/':
		return len(rest) > 2 && isLetter(rest[2])
	}
	return false
}

func (t *Tokenizer) skipPast(terminator string) {
	end := strings.Index(t.input[t.pos:], terminator)
	if end < 0 {
		t.pos = len(t.input)
		return
	}
	t.pos += end + len(terminator)
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && isSpace(t.input[t.pos]) {
		t.pos++
	}
}

// ReadRawUntil reads raw content up to the case-insensitive end tag, e.g.
// </style>, and consumes the end tag. Without an end tag the rest of the
// input is returned.
func (t *Tokenizer) ReadRawUntil(endTag string) string {
	needle := "</" + strings.ToLower(endTag)
	start := t.pos
	for t.pos+len(needle) <= len(t.input) {
		if strings.EqualFold(t.input[t.pos:t.pos+len(needle)], needle) {
			content := t.input[start:t.pos]
			t.pos += len(needle)
			t.skipPast(">")
			return content
		}
		t.pos++
	}
	content := t.input[start:]
	t.pos = len(t.input)
	return content
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isTagNameChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':'
}

func isAttributeNameChar(c byte) bool {
	return c > ' ' && c != '=' && c != '>' && c != '/' && c != '"' && c != '\''
}

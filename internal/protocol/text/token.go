package text

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenKind tells a renderer how to draw a token.
type TokenKind uint8

const (
	TokenChar TokenKind = iota
	TokenSymbol
	TokenPlaceholder
)

// Token is one item of decoded display text: a character, a named symbol the
// device draws from its own glyph ROM, or a placeholder for an escape sequence
// nobody has identified yet.
type Token struct {
	Kind TokenKind
	Char rune
	Name string
	Raw  []byte
}

func Char(r rune) Token {
	return Token{Kind: TokenChar, Char: r}
}

func Symbol(name string) Token {
	return Token{Kind: TokenSymbol, Name: name}
}

// Placeholder keeps the raw bytes of an unresolved escape sequence.
func Placeholder(raw ...byte) Token {
	buf := make([]byte, len(raw))
	copy(buf, raw)
	return Token{Kind: TokenPlaceholder, Raw: buf}
}

// String is the wire form of the token: the character itself, the symbol name,
// or "<fd 99>" for placeholders.
func (t Token) String() string {
	switch t.Kind {
	case TokenSymbol:
		return t.Name
	case TokenPlaceholder:
		parts := make([]string, len(t.Raw))
		for i, b := range t.Raw {
			parts[i] = fmt.Sprintf("%02x", b)
		}
		return "<" + strings.Join(parts, " ") + ">"
	default:
		return string(t.Char)
	}
}

func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Token) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	tok, err := ParseToken(s)
	if err != nil {
		return err
	}
	*t = tok
	return nil
}

// ParseToken reverses Token.String.
func ParseToken(s string) (Token, error) {
	if IsSymbolName(s) {
		return Symbol(s), nil
	}
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") && len(s) > 2 {
		fields := strings.Fields(s[1 : len(s)-1])
		raw := make([]byte, 0, len(fields))
		for _, f := range fields {
			v, err := strconv.ParseUint(f, 16, 8)
			if err != nil {
				return Token{}, fmt.Errorf("text: invalid placeholder %q: %w", s, err)
			}
			raw = append(raw, byte(v))
		}
		return Placeholder(raw...), nil
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return Char(r), nil
	}
	return Token{}, fmt.Errorf("text: invalid token %q", s)
}

// Text is an ordered run of tokens.
type Text []Token

// FromString builds a character-only Text.
func FromString(s string) Text {
	out := make(Text, 0, len(s))
	for _, r := range s {
		out = append(out, Char(r))
	}
	return out
}

// String renders the text for annotations: symbols appear as {name}.
func (t Text) String() string {
	var sb strings.Builder
	for _, tok := range t {
		switch tok.Kind {
		case TokenChar:
			sb.WriteRune(tok.Char)
		case TokenSymbol:
			sb.WriteString("{" + tok.Name + "}")
		default:
			sb.WriteString(tok.String())
		}
	}
	return sb.String()
}

// Strings returns the wire form of every token.
func (t Text) Strings() []string {
	out := make([]string, len(t))
	for i, tok := range t {
		out[i] = tok.String()
	}
	return out
}

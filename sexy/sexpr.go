package sexy

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrIncomplete reports input that ended inside an open list or map.
var ErrIncomplete = errors.New("unexpected end of input")

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeFloat
	NodeList
	NodeMap
)

// Node represents any Sexy data structure
type Node struct {
	Type NodeType

	// Atoms and text
	Text string // NodeSymbol, NodeString, NodeInteger, NodeFloat

	// Collections
	Items []*Node  // NodeList, NodeMap
	Keys  []string // NodeMap - parallel to Items

	// Metadata for NodeList - stored as parallel slices like maps
	MetaKeys  []string // NodeList - metadata keys
	MetaItems []*Node  // NodeList - metadata values

	// Line is the 1-based line the node starts on in the parsed text.
	Line int
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger, NodeFloat:
		return n.Text
	case NodeString:
		escaped := strings.ReplaceAll(n.Text, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		escaped = strings.ReplaceAll(escaped, "\n", "\\n")
		escaped = strings.ReplaceAll(escaped, "\t", "\\t")
		return fmt.Sprintf("\"%s\"", escaped)
	case NodeList:
		var parts []string
		if len(n.MetaKeys) > 0 {
			var metaParts []string
			for i, key := range n.MetaKeys {
				if i < len(n.MetaItems) {
					metaParts = append(metaParts, fmt.Sprintf("%s: %s", key, n.MetaItems[i].String()))
				}
			}
			parts = append(parts, fmt.Sprintf("^{%s}", strings.Join(metaParts, ", ")))
		}
		for _, item := range n.Items {
			parts = append(parts, item.String())
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, " "))
	case NodeMap:
		var parts []string
		for i, key := range n.Keys {
			if i < len(n.Items) {
				parts = append(parts, fmt.Sprintf("%s: %s", key, n.Items[i].String()))
			}
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

// Helper constructors for common node types
func NewSymbol(name string) *Node {
	return &Node{Type: NodeSymbol, Text: name}
}

func NewString(value string) *Node {
	return &Node{Type: NodeString, Text: value}
}

func NewInteger(text string) *Node {
	return &Node{Type: NodeInteger, Text: text}
}

func NewFloat(text string) *Node {
	return &Node{Type: NodeFloat, Text: text}
}

func NewList(items []*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

func NewListWithMeta(items []*Node, metaKeys []string, metaItems []*Node) *Node {
	return &Node{Type: NodeList, Items: items, MetaKeys: metaKeys, MetaItems: metaItems}
}

func NewMap(keys []string, items []*Node) *Node {
	return &Node{Type: NodeMap, Keys: keys, Items: items}
}

// IsAtom checks if the node is an atomic value
func (n *Node) IsAtom() bool {
	return n.Type == NodeSymbol || n.Type == NodeString || n.Type == NodeInteger || n.Type == NodeFloat
}

// IsSymbol reports whether n is the symbol name.
func (n *Node) IsSymbol(name string) bool {
	return n != nil && n.Type == NodeSymbol && n.Text == name
}

// Head returns the symbol a list starts with, or "".
func (n *Node) Head() string {
	if n.Type != NodeList || len(n.Items) == 0 || n.Items[0].Type != NodeSymbol {
		return ""
	}
	return n.Items[0].Text
}

// Meta returns the metadata value stored under key, or nil.
func (n *Node) Meta(key string) *Node {
	for i, k := range n.MetaKeys {
		if k == key && i < len(n.MetaItems) {
			return n.MetaItems[i]
		}
	}
	return nil
}

type parser struct {
	lexer        *lexer
	currentToken token
	peekToken    token
}

// Parse parses the entire input and returns the top-level datum
func Parse(input string) (*Node, error) {
	p := &parser{lexer: newLexer(input)}
	p.nextToken()
	p.nextToken()

	result, err := p.ParseDatum()
	if len(p.lexer.errors) > 0 {
		// Lexer errors take priority because they might cause confusing parser errors.
		return nil, fmt.Errorf("%s", p.lexer.errors[0])
	}
	if err != nil {
		return nil, err
	}

	if p.currentToken.Type != tokenEOF {
		return nil, fmt.Errorf("line %d: expected EOF but got %s", p.currentToken.Line, p.currentToken.Type)
	}

	return result, nil
}

func (p *parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.lexer.nextToken()
}

func (p *parser) ParseDatum() (*Node, error) {
	line := p.currentToken.Line
	var node *Node
	var err error
	switch p.currentToken.Type {
	case tokenSymbol:
		node = NewSymbol(p.currentToken.Value)
		p.nextToken()
	case tokenString:
		node = NewString(p.currentToken.Value)
		p.nextToken()
	case tokenInteger:
		node = NewInteger(p.currentToken.Value)
		p.nextToken()
	case tokenFloat:
		node = NewFloat(p.currentToken.Value)
		p.nextToken()
	case tokenLParen:
		node, err = p.parseList()
	case tokenLBrace:
		node, err = p.parseMap()
	default:
		return nil, fmt.Errorf("line %d: unexpected token: %s", line, p.currentToken.Type)
	}
	if err != nil {
		return nil, err
	}
	node.Line = line
	return node, nil
}

func (p *parser) parseList() (*Node, error) {
	var items []*Node
	var metaKeys []string
	var metaItems []*Node
	p.nextToken() // consume '('

	for p.currentToken.Type != tokenRParen && p.currentToken.Type != tokenEOF {
		if p.currentToken.Type == tokenCaret {
			metaNode, err := p.parseMeta()
			if err != nil {
				return nil, err
			}

			for i, key := range metaNode.Keys {
				// Later values win
				found := false
				for j, existingKey := range metaKeys {
					if existingKey == key {
						metaItems[j] = metaNode.Items[i]
						found = true
						break
					}
				}
				if !found {
					metaKeys = append(metaKeys, key)
					metaItems = append(metaItems, metaNode.Items[i])
				}
			}
			continue
		}

		item, err := p.ParseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if p.currentToken.Type != tokenRParen {
		return nil, fmt.Errorf("line %d: expected ')': %w", p.currentToken.Line, ErrIncomplete)
	}
	p.nextToken() // consume ')'

	if len(metaKeys) > 0 {
		return NewListWithMeta(items, metaKeys, metaItems), nil
	}
	return NewList(items), nil
}

func (p *parser) parseMeta() (*Node, error) {
	p.nextToken() // consume '^'

	if p.currentToken.Type != tokenLBrace {
		return nil, fmt.Errorf("line %d: expected '{' after '^' but got %s", p.currentToken.Line, p.currentToken.Type)
	}
	return p.parseMap()
}

func (p *parser) parseMap() (*Node, error) {
	p.nextToken() // consume '{'

	var keys []string
	var items []*Node

	for p.currentToken.Type != tokenRBrace && p.currentToken.Type != tokenEOF {
		if p.currentToken.Type != tokenSymbol {
			return nil, fmt.Errorf("line %d: expected symbol for map key but got %s", p.currentToken.Line, p.currentToken.Type)
		}

		keys = append(keys, p.currentToken.Value)
		p.nextToken()

		if p.currentToken.Type != tokenColon {
			return nil, fmt.Errorf("line %d: expected ':' after map key but got %s", p.currentToken.Line, p.currentToken.Type)
		}
		p.nextToken()

		value, err := p.ParseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, value)

		if p.currentToken.Type == tokenComma {
			p.nextToken()
		} else if p.currentToken.Type != tokenRBrace {
			return nil, fmt.Errorf("line %d: expected ',' or '}' in map but got %s", p.currentToken.Line, p.currentToken.Type)
		}
	}

	if p.currentToken.Type != tokenRBrace {
		return nil, fmt.Errorf("line %d: expected '}': %w", p.currentToken.Line, ErrIncomplete)
	}
	p.nextToken() // consume '}'

	return NewMap(keys, items), nil
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenSymbol
	tokenString
	tokenInteger
	tokenFloat
	tokenLParen
	tokenRParen
	tokenLBrace
	tokenRBrace
	tokenColon
	tokenComma
	tokenCaret
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenSymbol:
		return "symbol"
	case tokenString:
		return "string"
	case tokenInteger:
		return "integer"
	case tokenFloat:
		return "float"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenLBrace:
		return "'{'"
	case tokenRBrace:
		return "'}'"
	case tokenColon:
		return "':'"
	case tokenComma:
		return "','"
	case tokenCaret:
		return "'^'"
	default:
		return fmt.Sprintf("unknown token %d", int(t))
	}
}

type token struct {
	Type     tokenType
	Value    string
	Position int
	Line     int
}

type lexer struct {
	input    string
	position int
	current  rune
	line     int
	errors   []string
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.current == '\n' {
		l.line++
	}
	if l.position >= len(l.input) {
		l.current = 0
	} else {
		l.current = rune(l.input[l.position])
	}
	l.position++
}

func (l *lexer) peekChar() rune {
	if l.position >= len(l.input) {
		return 0
	}
	return rune(l.input[l.position])
}

func (l *lexer) skipWhitespace() {
	for unicode.IsSpace(l.current) {
		l.readChar()
	}
}

func (l *lexer) skipComment() {
	for l.current != '\n' && l.current != '\r' && l.current != 0 {
		l.readChar()
	}
}

func (l *lexer) readSymbol() string {
	start := l.position - 1
	for isSymbolChar(l.current) {
		l.readChar()
	}
	return l.input[start : l.position-1]
}

func (l *lexer) readString() (string, error) {
	var b strings.Builder
	l.readChar() // skip opening quote

	for l.current != '"' && l.current != 0 {
		if l.current == '\\' {
			l.readChar()
			switch l.current {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				return "", fmt.Errorf("line %d: invalid escape sequence: \\%c", l.line, l.current)
			}
		} else {
			b.WriteRune(l.current)
		}
		l.readChar()
	}

	if l.current != '"' {
		return "", fmt.Errorf("line %d: unterminated string", l.line)
	}
	l.readChar() // skip closing quote

	return b.String(), nil
}

// readNumber reads an integer or, with a fraction or exponent, a float.
func (l *lexer) readNumber() (string, tokenType) {
	start := l.position - 1
	typ := tokenInteger
	if l.current == '+' || l.current == '-' {
		l.readChar()
	}
	for unicode.IsDigit(l.current) {
		l.readChar()
	}
	if l.current == '.' && unicode.IsDigit(l.peekChar()) {
		typ = tokenFloat
		l.readChar()
		for unicode.IsDigit(l.current) {
			l.readChar()
		}
	}
	if l.current == 'e' || l.current == 'E' {
		next := l.peekChar()
		if unicode.IsDigit(next) || next == '+' || next == '-' {
			typ = tokenFloat
			l.readChar()
			if l.current == '+' || l.current == '-' {
				l.readChar()
			}
			for unicode.IsDigit(l.current) {
				l.readChar()
			}
		}
	}
	return l.input[start : l.position-1], typ
}

func (l *lexer) nextToken() token {
	for {
		l.skipWhitespace()

		pos := l.position - 1
		line := l.line
		tok := func(t tokenType, v string) token {
			return token{Type: t, Value: v, Position: pos, Line: line}
		}

		switch l.current {
		case 0:
			return tok(tokenEOF, "")
		case ';':
			l.skipComment()
			continue
		case '(':
			l.readChar()
			return tok(tokenLParen, "(")
		case ')':
			l.readChar()
			return tok(tokenRParen, ")")
		case '{':
			l.readChar()
			return tok(tokenLBrace, "{")
		case '}':
			l.readChar()
			return tok(tokenRBrace, "}")
		case ':':
			l.readChar()
			return tok(tokenColon, ":")
		case ',':
			l.readChar()
			return tok(tokenComma, ",")
		case '^':
			l.readChar()
			return tok(tokenCaret, "^")
		case '"':
			str, err := l.readString()
			if err != nil {
				l.errors = append(l.errors, err.Error())
				return tok(tokenEOF, "")
			}
			return tok(tokenString, str)
		default:
			switch {
			case unicode.IsDigit(l.current),
				(l.current == '+' || l.current == '-') && unicode.IsDigit(l.peekChar()):
				text, typ := l.readNumber()
				return tok(typ, text)
			case isSymbolStart(l.current):
				return tok(tokenSymbol, l.readSymbol())
			default:
				l.errors = append(l.errors, fmt.Sprintf("line %d: unexpected character '%c'", l.line, l.current))
				return tok(tokenEOF, "")
			}
		}
	}
}

// Operator characters may appear anywhere in a symbol, so (<= a b) and
// (!= a b) read as plain symbols.
const operatorChars = "+-*/%<>=!&|@?"

func isSymbolStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || strings.ContainsRune(operatorChars, r)
}

func isSymbolChar(r rune) bool {
	return isSymbolStart(r) || unicode.IsDigit(r) || r == '.'
}

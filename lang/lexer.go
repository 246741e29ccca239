// Package lang implements a lexer, token stream, and a small
// recursive-descent parser for the source language instrumented by
// package transform. It deliberately does not build a full expression
// grammar: statement bodies are kept as raw token spans (see Stmt),
// which is what lets the transformer slice and patch the original byte
// stream without ever having to unparse a regenerated syntax tree.
package lang

import (
	"bytes"
	"io"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// Lexer tokenizes the source language. Keyword must be listed before
// Ident so that reserved words aren't swallowed by the identifier rule -
// the stateful lexer tries rules in declaration order and takes the
// first match at the current position.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Whitespace", `[ \t\r]+`, nil},
		{"Newline", `\n`, nil},
		{"String", `"(\\.|[^"\\])*"`, nil},
		{"Number", `\b[0-9]+(\.[0-9]+)?\b`, nil},
		{"Keyword", `\b(var|const|fn|if|else|while|for|switch|case|default|defer|errdefer|discard|return|break|continue|struct|enum|union|catch|orelse|suspend|resume|import|export|comptime|threadlocal|true|false|null)\b`, nil},
		{"Ident", `[A-Za-z_][A-Za-z0-9_]*`, nil},
		{"Operator", `==|!=|<=|>=|&&|\|\||::|\.\.|[{}()\[\];,.:=+\-*/%<>!?&|^~@]`, nil},
		{"Bad", `.`, nil},
	},
})

// elidedTypes are token kinds dropped before they reach the parser.
var elidedTypes = []string{"Comment", "Whitespace", "Newline"}

// Tokenize lexes the full contents of src (attributed to filename for
// position reporting) into a flat, elided token stream terminated by an
// io.EOF-equivalent lexer.EOF token.
func Tokenize(filename string, src []byte) ([]lexer.Token, error) {
	lx, err := Lexer.Lex(filename, bytes.NewReader(src))
	if err != nil {
		return nil, errors.Wrap(err, "lex")
	}

	elide := make(map[rune]bool, len(elidedTypes))
	for _, name := range elidedTypes {
		elide[Lexer.Symbols()[name]] = true
	}

	var tokens []lexer.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, errors.Wrap(err, "lex")
		}
		if elide[tok.Type] {
			continue
		}
		tokens = append(tokens, tok)
		if tok.EOF() {
			break
		}
	}
	return tokens, nil
}

// ReadAll is a convenience wrapper for sources that arrive as an
// io.Reader rather than an in-memory buffer.
func ReadAll(filename string, r io.Reader) ([]lexer.Token, []byte, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read source")
	}
	tokens, err := Tokenize(filename, src)
	return tokens, src, err
}

// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"image/color"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// TokenType is the kind of a highlighted token.
type TokenType int

const (
	TokenPlain       TokenType = iota // whitespace and unknown characters
	TokenKeyword                      // if, return, switch, etc.
	TokenString                       // "...", `...`, '.'
	TokenComment                      // //, /* */ on one line
	TokenNumber                       // 123, 3.14, 0x1A
	TokenOperator                     // +, -, *, :=, ==
	TokenIdentifier                   // variable names
	TokenBuiltinType                  // int, string, bool, etc.
	TokenParameter                    // data, mode and row
)

// Token is a run of source text of one kind.
type Token struct {
	Type TokenType
	Text string
}

// SyntaxStyles is the color scheme for each token type. Missing entries
// use the theme foreground.
var SyntaxStyles = map[TokenType]widget.TextGridStyle{
	TokenKeyword: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 255, G: 20, B: 147, A: 255},
		TextStyle: fyne.TextStyle{Bold: true},
	},
	TokenString: &widget.CustomTextGridStyle{
		FGColor: color.NRGBA{R: 0, G: 180, B: 0, A: 255},
	},
	TokenComment: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 128, G: 128, B: 128, A: 255},
		TextStyle: fyne.TextStyle{Italic: true},
	},
	TokenNumber: &widget.CustomTextGridStyle{
		FGColor: color.NRGBA{R: 0, G: 150, B: 255, A: 255},
	},
	TokenOperator: &widget.CustomTextGridStyle{
		FGColor: color.NRGBA{R: 120, G: 120, B: 120, A: 255},
	},
	TokenBuiltinType: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 0, G: 180, B: 180, A: 255},
		TextStyle: fyne.TextStyle{Bold: true},
	},
	TokenParameter: &widget.CustomTextGridStyle{
		FGColor: color.NRGBA{R: 255, G: 140, B: 0, A: 255},
	},
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,
}

var goBuiltinTypes = map[string]bool{
	"bool": true, "byte": true, "error": true, "float32": true,
	"float64": true, "int": true, "int8": true, "int16": true,
	"int32": true, "int64": true, "rune": true, "string": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true,
	"uint64": true, "any": true, "nil": true, "true": true, "false": true,
}

// renderParameters are the names a render script receives.
var renderParameters = map[string]bool{"data": true, "mode": true, "row": true}

// TokenizeLine splits one line of Go source into tokens. Joining the token
// texts gives the line back.
func TokenizeLine(line string) []Token {
	var tokens []Token
	runes := []rune(line)
	emit := func(t TokenType, from, to int) {
		if n := len(tokens); n > 0 && tokens[n-1].Type == t && t == TokenPlain {
			tokens[n-1].Text += string(runes[from:to])
			return
		}
		tokens = append(tokens, Token{Type: t, Text: string(runes[from:to])})
	}

	pos := 0
	for pos < len(runes) {
		r := runes[pos]
		switch {
		case r == '/' && pos+1 < len(runes) && runes[pos+1] == '/':
			emit(TokenComment, pos, len(runes))
			pos = len(runes)
		case r == '/' && pos+1 < len(runes) && runes[pos+1] == '*':
			end := scanBlockComment(runes, pos)
			emit(TokenComment, pos, end)
			pos = end
		case r == '"' || r == '`' || r == '\'':
			end := scanString(runes, pos)
			emit(TokenString, pos, end)
			pos = end
		case isDigit(r):
			end := scanNumber(runes, pos)
			emit(TokenNumber, pos, end)
			pos = end
		case isLetter(r) || r == '_':
			end := scanIdentifier(runes, pos)
			emit(wordType(string(runes[pos:end])), pos, end)
			pos = end
		case strings.ContainsRune("+-*/%&|^<>=!:;,.()[]{}~", r):
			emit(TokenOperator, pos, pos+1)
			pos++
		default:
			emit(TokenPlain, pos, pos+1)
			pos++
		}
	}
	return tokens
}

func wordType(word string) TokenType {
	switch {
	case goKeywords[word]:
		return TokenKeyword
	case goBuiltinTypes[word]:
		return TokenBuiltinType
	case renderParameters[word]:
		return TokenParameter
	default:
		return TokenIdentifier
	}
}

// scanString returns the end of the literal opened at start. Unclosed
// literals run to the end of the line.
func scanString(runes []rune, start int) int {
	quote := runes[start]
	pos := start + 1
	for pos < len(runes) {
		if quote != '`' && runes[pos] == '\\' && pos+1 < len(runes) {
			pos += 2
			continue
		}
		if runes[pos] == quote {
			return pos + 1
		}
		pos++
	}
	return pos
}

// scanBlockComment returns the end of the comment opened at start, or the
// end of the line.
func scanBlockComment(runes []rune, start int) int {
	for pos := start + 2; pos+1 < len(runes); pos++ {
		if runes[pos] == '*' && runes[pos+1] == '/' {
			return pos + 2
		}
	}
	return len(runes)
}

func scanNumber(runes []rune, start int) int {
	pos := start
	for pos < len(runes) {
		r := runes[pos]
		if !isDigit(r) && r != '.' && r != '_' && !strings.ContainsRune("eExXabcdefABCDEF", r) {
			break
		}
		pos++
	}
	return pos
}

func scanIdentifier(runes []rune, start int) int {
	pos := start
	for pos < len(runes) && (isLetter(runes[pos]) || isDigit(runes[pos]) || runes[pos] == '_') {
		pos++
	}
	return pos
}

func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

// SyntaxPreview is a read-only, highlighted copy of a script with line
// numbers.
type SyntaxPreview struct {
	widget.BaseWidget
	mu   sync.Mutex
	grid *widget.TextGrid
}

// NewSyntaxPreview creates an empty preview.
func NewSyntaxPreview() *SyntaxPreview {
	p := &SyntaxPreview{grid: widget.NewTextGrid()}
	// SetText("") with line numbers on an empty grid panics in fyne 2.7,
	// so rows are assigned directly.
	p.grid.ShowLineNumbers = true
	p.ExtendBaseWidget(p)
	return p
}

// SetText replaces the previewed source.
func (p *SyntaxPreview) SetText(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	lines := strings.Split(text, "\n")
	rows := make([]widget.TextGridRow, len(lines))
	for i, line := range lines {
		rows[i] = styledRow(line)
	}
	p.grid.Rows = rows
	p.grid.Refresh()
}

// Text returns the previewed source.
func (p *SyntaxPreview) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.grid.Text()
}

// CreateRenderer implements fyne.Widget.
func (p *SyntaxPreview) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.grid)
}

func styledRow(line string) widget.TextGridRow {
	var row widget.TextGridRow
	for _, tok := range TokenizeLine(line) {
		style := SyntaxStyles[tok.Type]
		for _, r := range tok.Text {
			row.Cells = append(row.Cells, widget.TextGridCell{Rune: r, Style: style})
		}
	}
	return row
}

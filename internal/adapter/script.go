package adapter

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Script re-indents C-family script text from a token stream, so brackets
// inside strings, template literals, regular expressions and comments do not
// count. Lines that begin inside a multi-line string or comment are kept
// verbatim. Line count is preserved.
type Script struct {
	// Lexer names the chroma lexer to use; empty means "javascript".
	Lexer string
}

type scriptLine struct {
	depth    int  // open brackets before the line
	closers  int  // closing brackets before any other token on the line
	seen     bool // a non-closing token has been seen on the line
	verbatim bool // the line starts inside a literal or comment
}

// TryFormat tokenizes text and assigns each line the bracket depth it starts at.
func (s Script) TryFormat(text string, opts Options) (string, error) {
	name := s.Lexer
	if name == "" {
		name = "javascript"
	}
	lexer := lexers.Get(name)
	if lexer == nil {
		return "", fmt.Errorf("script: no lexer for %q", name)
	}
	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", fmt.Errorf("script: %w", err)
	}

	lines := strings.Split(text, "\n")
	info := make([]scriptLine, len(lines))
	line, depth := 0, 0

tokens:
	for tok := it(); tok != chroma.EOF; tok = it() {
		if tok.Type == chroma.Error {
			return "", fmt.Errorf("script: unexpected %q on line %d", tok.Value, line+1)
		}
		// A newline inside a string or block comment means the next line
		// starts inside it. Single-line comments may swallow their newline.
		literal := tok.Type.InSubCategory(chroma.LiteralString) ||
			(tok.Type.InCategory(chroma.Comment) && tok.Type != chroma.CommentSingle && tok.Type != chroma.CommentHashbang)
		bracket := tok.Type.InCategory(chroma.Punctuation)

		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				line++
				// Lexers may append a final newline the input did not have.
				if line >= len(info) {
					break tokens
				}
				info[line].depth = depth
				info[line].verbatim = literal
			}
			cur := &info[line]
			switch {
			case bracket:
				for _, r := range part {
					switch r {
					case '{', '(', '[':
						cur.seen = true
						depth++
					case '}', ')', ']':
						if !cur.seen {
							cur.closers++
						}
						if depth > 0 {
							depth--
						}
					case ' ', '\t', '\r':
					default:
						cur.seen = true
					}
				}
			case strings.TrimSpace(part) != "":
				cur.seen = true
			}
		}
	}

	unit := opts.Unit()
	var b strings.Builder
	b.Grow(len(text))
	for i, raw := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if info[i].verbatim {
			b.WriteString(raw)
			continue
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		level := max(info[i].depth-info[i].closers, 0)
		b.WriteString(strings.Repeat(unit, level))
		b.WriteString(trimmed)
	}
	return b.String(), nil
}

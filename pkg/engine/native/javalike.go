package native

import (
	"fmt"
	"strings"

	"github.com/ideafmt/ideafmt/pkg/codestyle"
	"github.com/ideafmt/ideafmt/pkg/engine"
)

// Lexer states shared by the brace-structured passes.
const (
	stCode = iota
	stLineComment
	stBlockComment
	stString
	stChar
)

const opChars = "=<>!+-*/%&|^"

// javaLikeBuilder handles the brace-structured families (java, kotlin,
// groovy). The three share one layout algorithm; per-family differences
// live in the style scheme.
type javaLikeBuilder struct {
	family string
}

func (b *javaLikeBuilder) Build(filename, text string) (engine.Tree, error) {
	if err := checkBraceBalance(text); err != nil {
		return nil, err
	}
	return &tree{
		text:   text,
		whole:  formatBraced(b.family),
		ranged: reindentBracedRange(b.family),
	}, nil
}

func indentUnit(scheme *codestyle.Scheme, family string) string {
	if scheme.UseTabs {
		return "\t"
	}
	return strings.Repeat(" ", scheme.IndentFor(family))
}

// checkBraceBalance walks the text once and rejects inputs whose brace
// structure cannot be laid out.
func checkBraceBalance(text string) error {
	st := stCode
	depth := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch st {
		case stLineComment:
			if c == '\n' {
				st = stCode
			}
		case stBlockComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				st = stCode
				i++
			}
		case stString:
			if c == '\\' {
				i++
			} else if c == '"' || c == '\n' {
				st = stCode
			}
		case stChar:
			if c == '\\' {
				i++
			} else if c == '\'' || c == '\n' {
				st = stCode
			}
		case stCode:
			switch c {
			case '/':
				if i+1 < len(text) {
					if text[i+1] == '/' {
						st = stLineComment
						i++
					} else if text[i+1] == '*' {
						st = stBlockComment
						i++
					}
				}
			case '"':
				st = stString
			case '\'':
				st = stChar
			case '{':
				depth++
			case '}':
				depth--
				if depth < 0 {
					return fmt.Errorf("unexpected '}' at offset %d", i)
				}
			}
		}
	}

	if depth != 0 {
		return fmt.Errorf("unbalanced braces: %d unclosed", depth)
	}
	return nil
}

func formatBraced(family string) wholeFunc {
	return func(text string, scheme *codestyle.Scheme) (string, error) {
		pad := indentUnit(scheme, family)
		out := restructureBraced(text, pad)
		out = normalizeOperatorSpacing(out)
		out = limitBlankLines(out, scheme.KeepBlankLines)
		return out, nil
	}
}

// restructureBraced rebuilds the statement layout: one statement per line,
// opening braces attached to their header, closing braces on their own
// line, indentation by brace depth.
func restructureBraced(text, pad string) string {
	var out []string
	var cur []byte
	depth, parens := 0, 0
	hasContent := false
	pendingSpace := false
	skipNewline := false // swallow the source newline after a forced flush
	st := stCode

	indent := func(d int) {
		if d < 0 {
			d = 0
		}
		for j := 0; j < d; j++ {
			cur = append(cur, pad...)
		}
	}
	ensureContent := func() {
		skipNewline = false
		if !hasContent {
			extra := 0
			if parens > 0 {
				extra = 1 // continuation of an unterminated expression
			}
			indent(depth + extra)
			hasContent = true
			pendingSpace = false
			return
		}
		if pendingSpace {
			cur = append(cur, ' ')
			pendingSpace = false
		}
	}
	flush := func() {
		out = append(out, strings.TrimRight(string(cur), " \t"))
		cur = cur[:0]
		hasContent = false
		pendingSpace = false
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\r' {
			continue
		}

		switch st {
		case stLineComment:
			if c == '\n' {
				flush()
				st = stCode
			} else {
				cur = append(cur, c)
			}

		case stBlockComment:
			if c == '\n' {
				flush()
				continue
			}
			if !hasContent {
				if c == ' ' || c == '\t' {
					continue
				}
				indent(depth)
				if c == '*' {
					cur = append(cur, ' ') // align continuation stars
				}
				hasContent = true
			}
			cur = append(cur, c)
			if c == '/' && i > 0 && text[i-1] == '*' {
				st = stCode
			}

		case stString:
			if c == '\n' {
				flush()
				st = stCode
				continue
			}
			cur = append(cur, c)
			if c == '\\' && i+1 < len(text) {
				i++
				cur = append(cur, text[i])
				continue
			}
			if c == '"' {
				st = stCode
			}

		case stChar:
			if c == '\n' {
				flush()
				st = stCode
				continue
			}
			cur = append(cur, c)
			if c == '\\' && i+1 < len(text) {
				i++
				cur = append(cur, text[i])
				continue
			}
			if c == '\'' {
				st = stCode
			}

		case stCode:
			switch {
			case c == '\n':
				if skipNewline && !hasContent {
					skipNewline = false
					continue
				}
				flush()
			case c == ' ' || c == '\t':
				if hasContent {
					pendingSpace = true
				}
			case c == '/' && i+1 < len(text) && text[i+1] == '/':
				ensureContent()
				cur = append(cur, '/', '/')
				i++
				st = stLineComment
			case c == '/' && i+1 < len(text) && text[i+1] == '*':
				ensureContent()
				cur = append(cur, '/', '*')
				i++
				st = stBlockComment
			case c == '"':
				ensureContent()
				cur = append(cur, c)
				st = stString
			case c == '\'':
				ensureContent()
				cur = append(cur, c)
				st = stChar
			case c == '{':
				if hasContent {
					pendingSpace = false
					cur = []byte(strings.TrimRight(string(cur), " \t"))
					cur = append(cur, ' ', '{')
				} else {
					indent(depth)
					cur = append(cur, '{')
					hasContent = true
				}
				flush()
				skipNewline = true
				depth++
			case c == '}':
				if hasContent {
					flush()
				}
				if depth > 0 {
					depth--
				}
				indent(depth)
				cur = append(cur, '}')
				hasContent = true
				// `};`, `},` and `})` stay attached to the brace
				j := i + 1
				for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
					j++
				}
				if j < len(text) && (text[j] == ';' || text[j] == ',' || text[j] == ')') {
					cur = append(cur, text[j])
					if text[j] == ')' && parens > 0 {
						parens--
					}
					i = j
				}
				flush()
				skipNewline = true
			case c == ';':
				if !hasContent {
					indent(depth)
					hasContent = true
				}
				pendingSpace = false
				cur = append(cur, ';')
				if parens == 0 {
					flush()
					skipNewline = true
				} else {
					pendingSpace = true // for(;;) headers keep going
				}
			case c == '(':
				ensureContent()
				cur = append(cur, '(')
				parens++
			case c == ')':
				if parens > 0 {
					parens--
				}
				if !hasContent {
					indent(depth + 1)
					hasContent = true
				}
				pendingSpace = false
				cur = append(cur, ')')
			default:
				ensureContent()
				cur = append(cur, c)
			}
		}
	}

	if len(cur) > 0 || hasContent {
		flush()
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	res := strings.Join(out, "\n")
	if res != "" && strings.HasSuffix(text, "\n") {
		res += "\n"
	}
	return res
}

// binaryOps lists the operators that get single-space padding, longest
// match first so compounds win over the bare assignment.
var binaryOps = []string{
	"==", "!=", "<=", ">=", "+=", "-=", "*=", "/=", "%=",
	"&=", "|=", "^=", "&&", "||", "->", "=",
}

// normalizeOperatorSpacing pads binary operators with single spaces outside
// strings and comments. Ambiguous neighborhoods (shift-assign and friends)
// are left untouched.
func normalizeOperatorSpacing(text string) string {
	var out []byte
	st := stCode

	lastNonSpace := func() byte {
		for j := len(out) - 1; j >= 0; j-- {
			if out[j] != ' ' && out[j] != '\t' {
				return out[j]
			}
		}
		return 0
	}
	trimLineTrailing := func() {
		for len(out) > 0 && (out[len(out)-1] == ' ' || out[len(out)-1] == '\t') {
			out = out[:len(out)-1]
		}
	}

	for i := 0; i < len(text); {
		c := text[i]

		switch st {
		case stLineComment:
			out = append(out, c)
			if c == '\n' {
				st = stCode
			}
			i++
		case stBlockComment:
			out = append(out, c)
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				out = append(out, '/')
				st = stCode
				i += 2
				continue
			}
			i++
		case stString:
			out = append(out, c)
			if c == '\\' && i+1 < len(text) {
				out = append(out, text[i+1])
				i += 2
				continue
			}
			if c == '"' || c == '\n' {
				st = stCode
			}
			i++
		case stChar:
			out = append(out, c)
			if c == '\\' && i+1 < len(text) {
				out = append(out, text[i+1])
				i += 2
				continue
			}
			if c == '\'' || c == '\n' {
				st = stCode
			}
			i++
		default: // stCode
			if c == '/' && i+1 < len(text) && text[i+1] == '/' {
				out = append(out, '/', '/')
				st = stLineComment
				i += 2
				continue
			}
			if c == '/' && i+1 < len(text) && text[i+1] == '*' {
				out = append(out, '/', '*')
				st = stBlockComment
				i += 2
				continue
			}
			if c == '"' {
				out = append(out, c)
				st = stString
				i++
				continue
			}
			if c == '\'' {
				out = append(out, c)
				st = stChar
				i++
				continue
			}

			matched := ""
			for _, op := range binaryOps {
				if strings.HasPrefix(text[i:], op) {
					matched = op
					break
				}
			}
			if matched == "" {
				out = append(out, c)
				i++
				continue
			}

			prev := lastNonSpace()
			next := byte(0)
			if i+len(matched) < len(text) {
				next = text[i+len(matched)]
			}
			// A neighboring operator char means this is part of a longer
			// operator we do not model; pass it through untouched.
			if prev != 0 && strings.IndexByte(opChars, prev) >= 0 ||
				next != 0 && strings.IndexByte(opChars, next) >= 0 && matched == "=" {
				out = append(out, matched...)
				i += len(matched)
				continue
			}

			trimLineTrailing()
			if n := len(out); n > 0 && out[n-1] != '\n' && out[n-1] != '(' {
				out = append(out, ' ')
			}
			out = append(out, matched...)
			i += len(matched)
			for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
				i++
			}
			if i < len(text) && text[i] != '\n' {
				out = append(out, ' ')
			}
		}
	}

	return string(out)
}

// limitBlankLines collapses runs of blank lines down to keep.
func limitBlankLines(text string, keep int) string {
	if keep < 0 {
		keep = 0
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > keep {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}
	res := strings.Join(out, "\n")
	if strings.HasSuffix(text, "\n") && !strings.HasSuffix(res, "\n") {
		res += "\n"
	}
	return res
}

// reindentBracedRange reindents and re-spaces only the lines intersecting
// the requested character range; every other line stays byte-identical.
func reindentBracedRange(family string) rangedFunc {
	return func(text string, scheme *codestyle.Scheme, start, end int) (string, error) {
		pad := indentUnit(scheme, family)

		type lineInfo struct {
			start, end int // content bounds, newline excluded
			state      int
			depth      int
		}

		var infos []lineInfo
		st := stCode
		depth := 0
		lineStart := 0
		stateAtStart := st
		depthAtStart := depth

		record := func(endOff int) {
			infos = append(infos, lineInfo{start: lineStart, end: endOff, state: stateAtStart, depth: depthAtStart})
		}

		for i := 0; i < len(text); i++ {
			c := text[i]
			if c == '\n' {
				record(i)
				lineStart = i + 1
				if st == stLineComment || st == stString || st == stChar {
					st = stCode
				}
				stateAtStart = st
				depthAtStart = depth
				continue
			}
			switch st {
			case stLineComment:
			case stBlockComment:
				if c == '*' && i+1 < len(text) && text[i+1] == '/' {
					st = stCode
					i++
				}
			case stString:
				if c == '\\' {
					i++
				} else if c == '"' {
					st = stCode
				}
			case stChar:
				if c == '\\' {
					i++
				} else if c == '\'' {
					st = stCode
				}
			case stCode:
				switch c {
				case '/':
					if i+1 < len(text) {
						if text[i+1] == '/' {
							st = stLineComment
							i++
						} else if text[i+1] == '*' {
							st = stBlockComment
							i++
						}
					}
				case '"':
					st = stString
				case '\'':
					st = stChar
				case '{':
					depth++
				case '}':
					if depth > 0 {
						depth--
					}
				}
			}
		}
		record(len(text))

		out := make([]string, 0, len(infos))
		for _, info := range infos {
			line := text[info.start:info.end]
			touched := info.start < end && info.end > start && info.state == stCode
			if !touched {
				out = append(out, line)
				continue
			}
			content := strings.TrimLeft(line, " \t")
			if content == "" {
				out = append(out, "")
				continue
			}
			d := info.depth
			if content[0] == '}' || content[0] == ')' {
				d--
			}
			if d < 0 {
				d = 0
			}
			reformatted := strings.Repeat(pad, d) + normalizeOperatorSpacing(content)
			out = append(out, strings.TrimRight(reformatted, " \t"))
		}

		return strings.Join(out, "\n"), nil
	}
}

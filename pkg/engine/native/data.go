package native

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/ideafmt/ideafmt/pkg/codestyle"
	"github.com/ideafmt/ideafmt/pkg/engine"
)

// jsonBuilder reformats json documents.
type jsonBuilder struct{}

func (b *jsonBuilder) Build(filename, text string) (engine.Tree, error) {
	if strings.TrimSpace(text) != "" && !gjson.Valid(text) {
		return nil, fmt.Errorf("invalid json document")
	}
	return &tree{
		text:   text,
		whole:  b.reformat,
		ranged: b.reindentRange,
	}, nil
}

func (b *jsonBuilder) reformat(text string, scheme *codestyle.Scheme) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	opts := &pretty.Options{
		Indent: strings.Repeat(" ", scheme.IndentFor("json")),
		Width:  scheme.RightMargin,
	}
	if scheme.UseTabs {
		opts.Indent = "\t"
	}
	out := pretty.PrettyOptions([]byte(text), opts)
	return string(out), nil
}

// reindentRange adjusts indentation on the selected lines based on bracket
// depth, leaving every other line byte-identical.
func (b *jsonBuilder) reindentRange(text string, scheme *codestyle.Scheme, start, end int) (string, error) {
	pad := strings.Repeat(" ", scheme.IndentFor("json"))
	if scheme.UseTabs {
		pad = "\t"
	}

	type lineInfo struct {
		start, end int
		depth      int
	}

	var infos []lineInfo
	depth := 0
	lineStart := 0
	depthAtStart := 0
	inString := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' {
			infos = append(infos, lineInfo{start: lineStart, end: i, depth: depthAtStart})
			lineStart = i + 1
			depthAtStart = depth
			inString = false
			continue
		}
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			if depth > 0 {
				depth--
			}
		}
	}
	infos = append(infos, lineInfo{start: lineStart, end: len(text), depth: depthAtStart})

	out := make([]string, 0, len(infos))
	for _, info := range infos {
		line := text[info.start:info.end]
		if info.start >= end || info.end <= start {
			out = append(out, line)
			continue
		}
		content := strings.TrimLeft(line, " \t")
		if content == "" {
			out = append(out, "")
			continue
		}
		d := info.depth
		if content[0] == '}' || content[0] == ']' {
			d--
		}
		if d < 0 {
			d = 0
		}
		out = append(out, strings.Repeat(pad, d)+strings.TrimRight(content, " \t"))
	}

	return strings.Join(out, "\n"), nil
}

// yamlBuilder reformats yaml documents by round-tripping the node tree.
type yamlBuilder struct{}

func (b *yamlBuilder) Build(filename, text string) (engine.Tree, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return nil, err
	}
	return &tree{
		text:   text,
		whole:  b.reformat,
		ranged: b.trimRange,
	}, nil
}

func (b *yamlBuilder) reformat(text string, scheme *codestyle.Scheme) (string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return "", err
	}
	if node.Kind == 0 {
		// empty document, nothing to emit
		return text, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if n := scheme.IndentFor("yaml"); n > 0 {
		enc.SetIndent(n)
	}
	if err := enc.Encode(&node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// trimRange strips trailing whitespace on the selected lines. A structural
// re-emit cannot preserve untouched lines byte-for-byte, so range requests
// on yaml stay conservative.
func (b *yamlBuilder) trimRange(text string, _ *codestyle.Scheme, start, end int) (string, error) {
	return trimTrailingInRange(text, start, end), nil
}

// propertiesBuilder normalizes java .properties files.
type propertiesBuilder struct{}

func (b *propertiesBuilder) Build(filename, text string) (engine.Tree, error) {
	return &tree{
		text:   text,
		whole:  b.reformat,
		ranged: b.reformatRange,
	}, nil
}

func (b *propertiesBuilder) reformat(text string, scheme *codestyle.Scheme) (string, error) {
	spaced := scheme.Language("properties").Options["SPACES_AROUND_KEY_VALUE_DELIMITER"] == "true"
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = normalizeProperty(line, spaced)
	}
	return strings.Join(lines, "\n"), nil
}

func (b *propertiesBuilder) reformatRange(text string, scheme *codestyle.Scheme, start, end int) (string, error) {
	spaced := scheme.Language("properties").Options["SPACES_AROUND_KEY_VALUE_DELIMITER"] == "true"

	var out []string
	lineStart := 0
	flush := func(lineEnd int) {
		line := text[lineStart:lineEnd]
		if lineStart < end && lineEnd > start {
			line = normalizeProperty(line, spaced)
		}
		out = append(out, line)
	}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			flush(i)
			lineStart = i + 1
		}
	}
	flush(len(text))
	return strings.Join(out, "\n"), nil
}

// normalizeProperty tightens (or pads) the first unescaped '=' or ':'
// delimiter on a key=value line. Comments and blank lines pass through.
func normalizeProperty(line string, spaced bool) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] == '#' || trimmed[0] == '!' {
		return strings.TrimRight(line, " \t")
	}

	sep := -1
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c == '\\' {
			i++
			continue
		}
		if c == '=' || c == ':' {
			sep = i
			break
		}
	}
	if sep < 0 {
		return trimmed
	}

	key := strings.TrimRight(trimmed[:sep], " \t")
	value := strings.TrimLeft(trimmed[sep+1:], " \t")
	delim := string(trimmed[sep])
	if spaced {
		delim = " " + delim + " "
	}
	return key + delim + value
}

// trimTrailingInRange removes trailing spaces and tabs from lines that
// intersect [start, end); other lines stay byte-identical.
func trimTrailingInRange(text string, start, end int) string {
	var out []string
	lineStart := 0
	flush := func(lineEnd int) {
		line := text[lineStart:lineEnd]
		if lineStart < end && lineEnd > start {
			line = strings.TrimRight(line, " \t")
		}
		out = append(out, line)
	}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			flush(i)
			lineStart = i + 1
		}
	}
	flush(len(text))
	return strings.Join(out, "\n")
}

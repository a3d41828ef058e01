package native

import (
	"encoding/xml"
	"strings"

	"github.com/beevik/etree"

	"github.com/ideafmt/ideafmt/pkg/codestyle"
	"github.com/ideafmt/ideafmt/pkg/engine"
)

// markupBuilder handles the markup family and its html dialect. html runs
// the parser in permissive mode with the standard auto-close and entity
// tables, mirroring how browsers treat void elements.
type markupBuilder struct {
	family     string
	permissive bool
}

func (b *markupBuilder) Build(filename, text string) (engine.Tree, error) {
	if _, err := b.parse(text); err != nil {
		return nil, err
	}
	return &tree{
		text:   text,
		whole:  b.reformat,
		ranged: b.reindentRange,
	}, nil
}

func (b *markupBuilder) parse(text string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if b.permissive {
		doc.ReadSettings.Permissive = true
		doc.ReadSettings.AutoClose = xml.HTMLAutoClose
		doc.ReadSettings.Entity = xml.HTMLEntity
	}
	if err := doc.ReadFromString(text); err != nil {
		return nil, err
	}
	return doc, nil
}

func (b *markupBuilder) reformat(text string, scheme *codestyle.Scheme) (string, error) {
	doc, err := b.parse(text)
	if err != nil {
		return "", err
	}
	doc.Indent(scheme.IndentFor(b.family))
	out, err := doc.WriteToString()
	if err != nil {
		return "", err
	}
	return out, nil
}

// reindentRange adjusts indentation only on the lines intersecting the
// range, using tag nesting depth computed from the full document. Lines
// outside the range stay byte-identical.
func (b *markupBuilder) reindentRange(text string, scheme *codestyle.Scheme, start, end int) (string, error) {
	pad := strings.Repeat(" ", scheme.IndentFor(b.family))
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
	inComment := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' {
			infos = append(infos, lineInfo{start: lineStart, end: i, depth: depthAtStart})
			lineStart = i + 1
			depthAtStart = depth
			continue
		}
		if inComment {
			if c == '-' && strings.HasPrefix(text[i:], "-->") {
				inComment = false
				i += 2
			}
			continue
		}
		if c != '<' {
			continue
		}
		switch {
		case strings.HasPrefix(text[i:], "<!--"):
			inComment = true
			i += 3
		case strings.HasPrefix(text[i:], "</"):
			if depth > 0 {
				depth--
			}
		case strings.HasPrefix(text[i:], "<?"), strings.HasPrefix(text[i:], "<!"):
			// declarations and doctypes do not nest
		default:
			gt := strings.IndexByte(text[i:], '>')
			if gt < 0 {
				continue
			}
			tag := text[i : i+gt+1]
			if !strings.HasSuffix(tag, "/>") && !b.isVoidTag(tag) {
				depth++
			}
			i += gt
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
		if strings.HasPrefix(content, "</") {
			d--
		}
		if d < 0 {
			d = 0
		}
		out = append(out, strings.Repeat(pad, d)+strings.TrimRight(content, " \t"))
	}

	return strings.Join(out, "\n"), nil
}

// html void elements never contribute nesting depth.
var htmlVoidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

func (b *markupBuilder) isVoidTag(tag string) bool {
	if !b.permissive {
		return false
	}
	name := strings.TrimPrefix(tag, "<")
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' || name[i] == '>' || name[i] == '/' || name[i] == '\t' || name[i] == '\n' {
			name = name[:i]
			break
		}
	}
	return htmlVoidTags[strings.ToLower(name)]
}

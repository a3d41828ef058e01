package codestyle

import (
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/ideafmt/ideafmt/pkg/errors"
)

const (
	schemeTag          = "code_scheme"
	componentTag       = "component"
	projectTag         = "project"
	stateTag           = "state"
	styleComponentName = "ProjectCodeStyleConfiguration"
)

// IntelliJ exports name language blocks by display name; the engine keys
// them by family tag.
var languageAliases = map[string]string{
	"xml":  "markup",
	"java": "java",
}

// LoadFile parses a style configuration document into a Scheme. Three
// document shapes are accepted: a bare code_scheme root, a project document
// wrapping a ProjectCodeStyleConfiguration component, and a bare component
// holding the scheme directly or inside its state child.
func LoadFile(path string) (*Scheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrConfigNotFound, "code style file not found: %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrConfigNotFound, "code style file not readable: %s", path)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse code style file: %s", path)
	}

	root := doc.Root()
	if root == nil {
		return nil, errors.Newf(errors.ErrConfigParse, "code style file is empty: %s", path)
	}

	schemeNode := findSchemeNode(root)
	if schemeNode == nil {
		return nil, errors.Newf(errors.ErrConfigShape,
			"no code style scheme found in %s (root element %q)", path, root.Tag).
			WithDetail("root", root.Tag)
	}

	return parseScheme(schemeNode), nil
}

// findSchemeNode normalizes the three accepted document shapes to the one
// code_scheme element, or nil when no heuristic matches.
func findSchemeNode(root *etree.Element) *etree.Element {
	if root.Tag == schemeTag {
		return root
	}

	if root.Tag == componentTag && root.SelectAttrValue("name", "") == styleComponentName {
		if state := root.SelectElement(stateTag); state != nil {
			if scheme := state.SelectElement(schemeTag); scheme != nil {
				return scheme
			}
		}
		return root.SelectElement(schemeTag)
	}

	if root.Tag == projectTag {
		for _, child := range root.SelectElements(componentTag) {
			if child.SelectAttrValue("name", "") == styleComponentName {
				return findSchemeNode(child)
			}
		}
	}

	return nil
}

func parseScheme(el *etree.Element) *Scheme {
	s := Default()
	s.Name = el.SelectAttrValue("name", s.Name)
	s.Version = el.SelectAttrValue("version", "")

	for _, opt := range el.SelectElements("option") {
		applySchemeOption(s, opt.SelectAttrValue("name", ""), opt.SelectAttrValue("value", ""))
	}

	for _, block := range el.SelectElements("codeStyleSettings") {
		lang := strings.ToLower(block.SelectAttrValue("language", ""))
		if lang == "" {
			continue
		}
		if alias, ok := languageAliases[lang]; ok {
			lang = alias
		}
		ls := s.Language(lang)
		for _, opt := range block.SelectElements("option") {
			applyLanguageOption(ls, opt.SelectAttrValue("name", ""), opt.SelectAttrValue("value", ""))
		}
		if indentOpts := block.SelectElement("indentOptions"); indentOpts != nil {
			for _, opt := range indentOpts.SelectElements("option") {
				applyLanguageOption(ls, opt.SelectAttrValue("name", ""), opt.SelectAttrValue("value", ""))
			}
		}
	}

	return s
}

func applySchemeOption(s *Scheme, name, value string) {
	if name == "" {
		return
	}
	s.Options[name] = value

	switch name {
	case "INDENT_SIZE":
		setInt(&s.IndentSize, value)
	case "CONTINUATION_INDENT_SIZE":
		setInt(&s.ContinuationIndentSize, value)
	case "TAB_SIZE":
		setInt(&s.TabSize, value)
	case "RIGHT_MARGIN":
		setInt(&s.RightMargin, value)
	case "KEEP_BLANK_LINES_IN_CODE":
		setInt(&s.KeepBlankLines, value)
	case "USE_TAB_CHARACTER":
		s.UseTabs = value == "true"
	}
}

func applyLanguageOption(ls *LanguageSettings, name, value string) {
	if name == "" {
		return
	}
	if ls.Options == nil {
		ls.Options = make(map[string]string)
	}
	ls.Options[name] = value

	switch name {
	case "INDENT_SIZE":
		setInt(&ls.IndentSize, value)
	case "CONTINUATION_INDENT_SIZE":
		setInt(&ls.ContinuationIndentSize, value)
	case "TAB_SIZE":
		setInt(&ls.TabSize, value)
	}
}

// setInt keeps the existing value when the document carries a malformed
// number, matching the engine's lenient readExternal behavior.
func setInt(dst *int, value string) {
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		*dst = n
	}
}

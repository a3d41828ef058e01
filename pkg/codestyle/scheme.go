// Package codestyle holds the canonical, swappable style scheme consulted
// during reformat operations, and the loader that parses externally
// supplied IntelliJ-style XML configuration into it.
package codestyle

// Scheme is the canonical in-memory representation of formatting rules.
// At most one scheme is active per session; the session replaces it as a
// whole object, never field by field.
type Scheme struct {
	Name                   string
	Version                string
	IndentSize             int
	ContinuationIndentSize int
	TabSize                int
	UseTabs                bool
	RightMargin            int
	KeepBlankLines         int

	// Languages holds per-language custom settings blocks keyed by the
	// lower-cased language family tag.
	Languages map[string]*LanguageSettings

	// Options keeps every recognized top-level option verbatim so custom
	// engine hooks can consult settings this model has no field for.
	Options map[string]string
}

// LanguageSettings overrides scheme-wide values for one language family.
// Zero int values mean "inherit from the scheme".
type LanguageSettings struct {
	IndentSize             int
	ContinuationIndentSize int
	TabSize                int
	Options                map[string]string
}

// Default returns a scheme populated with the engine's default settings.
func Default() *Scheme {
	return &Scheme{
		Name:                   "Default",
		IndentSize:             4,
		ContinuationIndentSize: 8,
		TabSize:                4,
		RightMargin:            120,
		KeepBlankLines:         2,
		Languages:              make(map[string]*LanguageSettings),
		Options:                make(map[string]string),
	}
}

// IndentFor returns the effective indent width for a language family.
func (s *Scheme) IndentFor(family string) int {
	if ls, ok := s.Languages[family]; ok && ls.IndentSize > 0 {
		return ls.IndentSize
	}
	return s.IndentSize
}

// ContinuationIndentFor returns the effective continuation indent width.
func (s *Scheme) ContinuationIndentFor(family string) int {
	if ls, ok := s.Languages[family]; ok && ls.ContinuationIndentSize > 0 {
		return ls.ContinuationIndentSize
	}
	return s.ContinuationIndentSize
}

// TabSizeFor returns the effective tab size for a language family.
func (s *Scheme) TabSizeFor(family string) int {
	if ls, ok := s.Languages[family]; ok && ls.TabSize > 0 {
		return ls.TabSize
	}
	return s.TabSize
}

// Language returns the settings block for a family, creating it if absent.
func (s *Scheme) Language(family string) *LanguageSettings {
	if s.Languages == nil {
		s.Languages = make(map[string]*LanguageSettings)
	}
	ls, ok := s.Languages[family]
	if !ok {
		ls = &LanguageSettings{Options: make(map[string]string)}
		s.Languages[family] = ls
	}
	return ls
}

// Clone returns a deep copy. Style providers contribute defaults to a copy
// so the active scheme is only ever replaced wholesale.
func (s *Scheme) Clone() *Scheme {
	out := *s
	out.Languages = make(map[string]*LanguageSettings, len(s.Languages))
	for k, v := range s.Languages {
		ls := *v
		ls.Options = make(map[string]string, len(v.Options))
		for ok, ov := range v.Options {
			ls.Options[ok] = ov
		}
		out.Languages[k] = &ls
	}
	out.Options = make(map[string]string, len(s.Options))
	for k, v := range s.Options {
		out.Options[k] = v
	}
	return &out
}

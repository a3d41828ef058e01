// Package native is the bundled reference implementation of the engine
// contract. It covers the same language families as the hosted IDE engine:
// brace-structured sources (java, kotlin, groovy), markup (xml and the html
// dialect), and data-serialization formats (json, yaml, properties).
package native

import (
	"strings"

	"github.com/ideafmt/ideafmt/pkg/codestyle"
	"github.com/ideafmt/ideafmt/pkg/engine"
)

const version = "native-2025.3"

// Engine implements engine.Engine.
type Engine struct {
	builders   map[string]engine.TreeBuilder
	components map[string]interface{}
}

// New creates the reference engine with all supported families wired.
func New() *Engine {
	e := &Engine{
		builders:   make(map[string]engine.TreeBuilder),
		components: make(map[string]interface{}),
	}

	e.builders["java"] = &javaLikeBuilder{family: "java"}
	e.builders["kotlin"] = &javaLikeBuilder{family: "kotlin"}
	e.builders["groovy"] = &javaLikeBuilder{family: "groovy"}
	e.builders["markup"] = &markupBuilder{family: "markup"}
	e.builders["html"] = &markupBuilder{family: "html", permissive: true}
	e.builders["json"] = &jsonBuilder{}
	e.builders["yaml"] = &yamlBuilder{}
	e.builders["properties"] = &propertiesBuilder{}

	// Optional components. Families without an entry here exercise the
	// host's skip path; that mirrors engine versions missing a hook.
	e.components["styleProvider/java"] = &defaultsProvider{family: "java", options: map[string]string{
		"KEEP_BLANK_LINES_IN_DECLARATIONS": "2",
	}}
	e.components["styleProvider/kotlin"] = &defaultsProvider{family: "kotlin", options: map[string]string{
		"ALLOW_TRAILING_COMMA": "false",
	}}
	e.components["styleProvider/groovy"] = &defaultsProvider{family: "groovy", options: map[string]string{
		"USE_FLYING_GEESE_BRACES": "false",
	}}
	e.components["styleProvider/properties"] = &defaultsProvider{family: "properties", options: map[string]string{
		"SPACES_AROUND_KEY_VALUE_DELIMITER": "false",
	}}
	e.components["preProcessor/kotlin"] = lineEndingNormalizer{}
	e.components["postProcessor/markup"] = finalNewlineProcessor{}
	e.components["service/progressCallback"] = noopService{"progressCallback"}
	e.components["service/documentCommitQueue"] = noopService{"documentCommitQueue"}

	return e
}

// Version implements engine.Engine.
func (e *Engine) Version() string { return version }

// TreeBuilder implements engine.Engine.
func (e *Engine) TreeBuilder(family string) (engine.TreeBuilder, error) {
	b, ok := e.builders[family]
	if !ok {
		return nil, engine.NotSupported("treeBuilder/" + family)
	}
	return b, nil
}

// Component implements engine.Engine.
func (e *Engine) Component(name string) (interface{}, error) {
	c, ok := e.components[name]
	if !ok {
		return nil, engine.NotSupported(name)
	}
	return c, nil
}

// defaultsProvider contributes per-language option defaults without
// clobbering values an externally loaded scheme already set.
type defaultsProvider struct {
	family  string
	options map[string]string
}

func (p *defaultsProvider) Contribute(scheme *codestyle.Scheme) {
	ls := scheme.Language(p.family)
	for k, v := range p.options {
		if _, exists := ls.Options[k]; !exists {
			ls.Options[k] = v
		}
	}
}

type lineEndingNormalizer struct{}

func (lineEndingNormalizer) Process(text string, _ *codestyle.Scheme) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

type finalNewlineProcessor struct{}

func (finalNewlineProcessor) Process(text string, _ *codestyle.Scheme) string {
	if text == "" || text[len(text)-1] == '\n' {
		return text
	}
	return text + "\n"
}

type noopService struct {
	name string
}

func (s noopService) Name() string { return s.name }

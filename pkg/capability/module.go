package capability

import (
	"github.com/ideafmt/ideafmt/pkg/engine"
	"github.com/ideafmt/ideafmt/pkg/host"
)

// Hook is one installable piece of a capability module.
type Hook struct {
	Name    string
	Install func(s *host.Session) error
}

// Module describes the engine support for one language family: which family
// it depends on, the hooks that must install, and the hooks that may.
type Module struct {
	Tag      string
	Requires string // tag installed first, empty when standalone
	Required []Hook
	Optional []Hook
}

// treeBuilderHook is the one hook every family must install: without a
// builder there is nothing to format.
func treeBuilderHook(tag string) Hook {
	return Hook{
		Name: "treeBuilder/" + tag,
		Install: func(s *host.Session) error {
			builder, err := s.Engine().TreeBuilder(tag)
			if err != nil {
				return err
			}
			return s.App().Put("treeBuilder/"+tag, builder)
		},
	}
}

// styleProviderHook probes the engine for per-family style defaults and
// folds them into the active scheme via an atomic replace.
func styleProviderHook(tag string) Hook {
	name := "styleProvider/" + tag
	return Hook{
		Name: name,
		Install: func(s *host.Session) error {
			component, err := s.Engine().Component(name)
			if err != nil {
				return err
			}
			provider, ok := component.(engine.StyleProvider)
			if !ok {
				return engine.NotSupported(name)
			}
			s.UpdateScheme(provider.Contribute)
			return s.App().Put(name, provider)
		},
	}
}

// processorHook registers an optional pre/post processor under its
// component name.
func processorHook(name string) Hook {
	return Hook{
		Name: name,
		Install: func(s *host.Session) error {
			component, err := s.Engine().Component(name)
			if err != nil {
				return err
			}
			processor, ok := component.(engine.Processor)
			if !ok {
				return engine.NotSupported(name)
			}
			return s.App().Put(name, processor)
		},
	}
}

// DefaultModules returns the built-in capability set. kotlin layers on top
// of java, html on top of markup; the rest stand alone.
func DefaultModules() []Module {
	return []Module{
		{
			Tag:      TagJava,
			Required: []Hook{treeBuilderHook(TagJava)},
			Optional: []Hook{styleProviderHook(TagJava)},
		},
		{
			Tag:      TagKotlin,
			Requires: TagJava,
			Required: []Hook{treeBuilderHook(TagKotlin)},
			Optional: []Hook{
				styleProviderHook(TagKotlin),
				processorHook("preProcessor/" + TagKotlin),
			},
		},
		{
			Tag:      TagGroovy,
			Required: []Hook{treeBuilderHook(TagGroovy)},
			Optional: []Hook{styleProviderHook(TagGroovy)},
		},
		{
			Tag:      TagMarkup,
			Required: []Hook{treeBuilderHook(TagMarkup)},
			Optional: []Hook{
				styleProviderHook(TagMarkup),
				processorHook("postProcessor/" + TagMarkup),
			},
		},
		{
			Tag:      TagHTML,
			Requires: TagMarkup,
			Required: []Hook{treeBuilderHook(TagHTML)},
			Optional: []Hook{styleProviderHook(TagHTML)},
		},
		{
			Tag:      TagJSON,
			Required: []Hook{treeBuilderHook(TagJSON)},
			Optional: []Hook{styleProviderHook(TagJSON)},
		},
		{
			Tag:      TagYAML,
			Required: []Hook{treeBuilderHook(TagYAML)},
			Optional: []Hook{styleProviderHook(TagYAML)},
		},
		{
			Tag:      TagProperties,
			Required: []Hook{treeBuilderHook(TagProperties)},
			Optional: []Hook{styleProviderHook(TagProperties)},
		},
	}
}

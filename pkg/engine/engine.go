// Package engine declares the contract the formatting engine satisfies.
// The host consumes exactly this surface: structural tree builders keyed by
// language family, whole/range reformat operations on the built tree, and a
// component lookup that answers NOT_SUPPORTED for optional hooks the engine
// version does not carry.
package engine

import (
	"github.com/ideafmt/ideafmt/pkg/codestyle"
	"github.com/ideafmt/ideafmt/pkg/errors"
)

// Tree is the structural representation of one source file. It is scoped to
// a single format request; the engine mutates it in place and the final text
// is always extracted from the tree, never from a cached copy.
type Tree interface {
	// Text returns the current text of the tree.
	Text() string

	// Reformat reformats the whole tree against the given scheme.
	Reformat(scheme *codestyle.Scheme) error

	// ReformatRange reformats the half-open character range [start, end).
	// Behavior at a boundary splitting a multi-line construct is
	// engine-defined.
	ReformatRange(scheme *codestyle.Scheme, start, end int) error
}

// TreeBuilder builds the structural representation for one language family.
type TreeBuilder interface {
	Build(filename, text string) (Tree, error)
}

// Engine is the external formatting engine.
type Engine interface {
	// Version identifies the engine build; hooks present in one version may
	// be absent in another.
	Version() string

	// TreeBuilder returns the builder for a language family, or a
	// NOT_SUPPORTED error when this engine version has no support for it.
	TreeBuilder(family string) (TreeBuilder, error)

	// Component looks up an optional engine component by name. Absence is
	// an expected outcome reported as NOT_SUPPORTED, not a failure.
	Component(name string) (interface{}, error)
}

// StyleProvider is an optional component contributing per-language default
// settings into a style scheme. Contributions must be non-destructive:
// values already present are left alone.
type StyleProvider interface {
	Contribute(scheme *codestyle.Scheme)
}

// Processor is an optional pre/post-processing hook applied around the main
// reformat pass on whole-file requests.
type Processor interface {
	Process(text string, scheme *codestyle.Scheme) string
}

// NotSupported reports that an engine component or family is absent in this
// engine version.
func NotSupported(name string) error {
	return errors.Newf(errors.ErrNotSupported, "engine component %q not supported", name)
}

// IsNotSupported checks whether err marks an absent optional capability.
func IsNotSupported(err error) bool {
	return errors.IsErrorCode(err, errors.ErrNotSupported)
}

// Package formatter is the public entry point: it boots the host
// environment once per process and executes whole-file and line-range
// format requests against it.
package formatter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ideafmt/ideafmt/pkg/capability"
	"github.com/ideafmt/ideafmt/pkg/codestyle"
	"github.com/ideafmt/ideafmt/pkg/engine"
	"github.com/ideafmt/ideafmt/pkg/errors"
	"github.com/ideafmt/ideafmt/pkg/host"
	"github.com/ideafmt/ideafmt/pkg/lines"
	"github.com/ideafmt/ideafmt/pkg/logging"
)

// Formatter executes format requests against the booted host session.
type Formatter struct {
	session *host.Session
	caps    *capability.Registry
	logger  zerolog.Logger
}

// Initialize boots the host environment (or joins the live one) and returns
// a formatter bound to it.
func Initialize(opts ...host.Option) (*Formatter, error) {
	session, err := host.Initialize(opts...)
	if err != nil {
		return nil, err
	}
	return &Formatter{
		session: session,
		caps:    capability.NewRegistry(session),
		logger:  logging.GetLogger("formatter"),
	}, nil
}

// Shutdown tears down the bound session.
func (f *Formatter) Shutdown() {
	if f.session == nil {
		return
	}
	f.caps.Reset()
	f.session.Shutdown()
}

// ensureReady guards every request against use before Initialize or after
// Shutdown.
func (f *Formatter) ensureReady() (*host.Session, error) {
	if f == nil || f.session == nil {
		return nil, errors.New(errors.ErrNotInitialized, "formatter is not initialized")
	}
	live, err := host.EnsureReady()
	if err != nil {
		return nil, err
	}
	if live != f.session {
		return nil, errors.New(errors.ErrNotInitialized, "formatter session has been shut down")
	}
	return f.session, nil
}

// LoadStyleConfig loads a style configuration file and atomically replaces
// the active scheme. In-flight requests finish on the scheme they started
// with.
func (f *Formatter) LoadStyleConfig(path string) error {
	s, err := f.ensureReady()
	if err != nil {
		return err
	}

	scheme, err := codestyle.LoadFile(path)
	if err != nil {
		return err
	}

	s.ReplaceScheme(scheme)
	f.logger.Info().Str("path", path).Str("scheme", scheme.Name).Msg("Style configuration loaded")
	return nil
}

// Scheme returns the active style scheme.
func (f *Formatter) Scheme() (*codestyle.Scheme, error) {
	s, err := f.ensureReady()
	if err != nil {
		return nil, err
	}
	return s.Scheme(), nil
}

// FormatAll reformats the whole text as the language family implied by
// filename and returns the formatted text.
func (f *Formatter) FormatAll(filename, text string) (string, error) {
	return f.format(filename, text, 0, 0, false)
}

// FormatRange reformats the 1-based inclusive line range [startLine,
// endLine] and returns the full text with only that range changed. A range
// reaching past the last line is clamped to the end of the document.
func (f *Formatter) FormatRange(filename, text string, startLine, endLine int) (string, error) {
	if startLine < 1 || endLine < startLine {
		return "", errors.Newf(errors.ErrInvalidRange,
			"invalid line range %d:%d, want 1 <= start <= end", startLine, endLine)
	}
	return f.format(filename, text, startLine, endLine, true)
}

func (f *Formatter) format(filename, text string, startLine, endLine int, ranged bool) (string, error) {
	s, err := f.ensureReady()
	if err != nil {
		return "", err
	}

	family, ok := capability.FamilyFor(filename)
	if !ok {
		return "", errors.Newf(errors.ErrUnsupportedLanguage,
			"no language family registered for %q", filename)
	}

	if err := f.caps.EnsureInstalled(family); err != nil {
		return "", err
	}

	scheme := s.Scheme()

	// pre/post processors apply to whole-file requests only; a range
	// request must not touch text outside the range
	if !ranged {
		text = f.runProcessor("preProcessor/"+family, text, scheme)
	}

	tree, err := f.buildTree(s, family, filename, text)
	if err != nil {
		return "", err
	}

	err = s.Gate().Do(context.Background(), func(ctx context.Context) error {
		if ranged {
			start := lines.StartOffset(text, startLine)
			end := lines.EndOffset(text, endLine)
			return tree.ReformatRange(scheme, start, end)
		}
		return tree.Reformat(scheme)
	})
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFormatting, "reformat of %q failed", filename)
	}

	out := tree.Text()
	if !ranged {
		out = f.runProcessor("postProcessor/"+family, out, scheme)
	}

	f.logger.Debug().
		Str("file", filename).
		Str("family", family).
		Bool("ranged", ranged).
		Msg("Format request completed")
	return out, nil
}

func (f *Formatter) buildTree(s *host.Session, family, filename, text string) (engine.Tree, error) {
	item, err := s.App().Get("treeBuilder/" + family)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrModuleInstall,
			"tree builder for %q missing after install", family)
	}
	builder, ok := item.(engine.TreeBuilder)
	if !ok {
		return nil, errors.Newf(errors.ErrInternal,
			"registered tree builder for %q has wrong type", family)
	}

	tree, err := builder.Build(filename, text)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrParse, "failed to parse %q", filename)
	}
	return tree, nil
}

func (f *Formatter) runProcessor(name, text string, scheme *codestyle.Scheme) string {
	item, err := f.session.App().Get(name)
	if err != nil {
		return text
	}
	processor, ok := item.(engine.Processor)
	if !ok {
		return text
	}
	return processor.Process(text, scheme)
}

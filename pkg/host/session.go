// Package host boots and owns the embedded engine environment. One session
// exists per process; it carries the application- and project-scope service
// areas, the active style scheme, and the write gate that serializes tree
// mutations.
package host

import (
	"sync"
	"sync/atomic"

	"github.com/ideafmt/ideafmt/pkg/codestyle"
	"github.com/ideafmt/ideafmt/pkg/engine"
	"github.com/ideafmt/ideafmt/pkg/engine/native"
	"github.com/ideafmt/ideafmt/pkg/errors"
	"github.com/ideafmt/ideafmt/pkg/logging"
	"github.com/ideafmt/ideafmt/pkg/registry"
)

// Engine toggles pinned during bootstrap. They select stable formatter
// behavior independent of what the engine build would default to.
var bootstrapToggles = map[string]string{
	"toggle/headless":   "true",
	"toggle/unitTest":   "false",
	"toggle/background": "false",

	"java.formatter.chained.calls.pre212.compatibility": "false",
	"groovy.document.based.formatting":                  "false",
	"kotlin.formatter.allowTrailingCommaOnCallSite":     "false",
}

// Optional engine services probed during bootstrap. Absence is expected on
// reduced engine builds and is skipped, never fatal.
var optionalServices = []string{
	"service/progressCallback",
	"service/documentCommitQueue",
	"service/readActionCache",
	"service/encodingManager",
	"service/pluginProblemReporter",
}

var (
	initMu sync.Mutex
	active *Session
)

// Session is the booted host environment.
type Session struct {
	engine   engine.Engine
	app      registry.Registry[interface{}]
	project  registry.Registry[interface{}]
	gate     *WriteGate
	disposer *Disposer

	// schemeMu serializes writers of the scheme pointer so read-clone-swap
	// updates cannot lose a concurrent replacement; reads stay lock-free.
	schemeMu sync.Mutex
	scheme   atomic.Pointer[codestyle.Scheme]

	toggleMu sync.RWMutex
	toggles  map[string]string
}

// Options configures Initialize.
type Options struct {
	// Engine overrides the bundled engine, mainly for tests.
	Engine engine.Engine
}

// Option mutates Options.
type Option func(*Options)

// WithEngine selects the engine implementation to boot against.
func WithEngine(eng engine.Engine) Option {
	return func(o *Options) { o.Engine = eng }
}

// Initialize boots the host environment and returns the process-wide
// session. Calling it again while a session is live returns that session
// unchanged; options passed to later calls are ignored.
func Initialize(opts ...Option) (*Session, error) {
	initMu.Lock()
	defer initMu.Unlock()

	if active != nil {
		return active, nil
	}

	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Engine == nil {
		options.Engine = native.New()
	}

	s, err := bootstrap(options.Engine)
	if err != nil {
		return nil, err
	}
	active = s
	return s, nil
}

func bootstrap(eng engine.Engine) (*Session, error) {
	logger := logging.GetLogger("host")

	if eng.Version() == "" {
		return nil, errors.New(errors.ErrBootstrap, "engine reported an empty version")
	}
	logger.Info().Str("engineVersion", eng.Version()).Msg("Bootstrapping host environment")

	s := &Session{
		engine:   eng,
		app:      registry.New[interface{}](),
		project:  registry.New[interface{}](),
		gate:     NewWriteGate(),
		disposer: NewDisposer(),
		toggles:  make(map[string]string, len(bootstrapToggles)),
	}

	for k, v := range bootstrapToggles {
		s.toggles[k] = v
	}

	if err := s.app.Put("engine", eng); err != nil {
		return nil, errors.Wrap(err, errors.ErrBootstrap, "failed to register engine service")
	}
	s.disposer.Register("app-services", s.app.Clear)
	s.disposer.Register("project-services", s.project.Clear)

	for _, name := range optionalServices {
		component, err := eng.Component(name)
		if err != nil {
			if engine.IsNotSupported(err) {
				logging.Skipped(logger, name, "not present in this engine version")
			} else {
				logger.Warn().Err(err).Str("service", name).Msg("Optional service probe failed")
			}
			continue
		}
		if err := s.app.Put(name, component); err != nil {
			return nil, errors.Wrapf(err, errors.ErrBootstrap, "failed to register service %q", name)
		}
		logger.Debug().Str("service", name).Msg("Optional service registered")
	}

	s.scheme.Store(codestyle.Default())

	logger.Debug().Msg("Host environment ready")
	return s, nil
}

// EnsureReady returns the live session, or NOT_INITIALIZED when no session
// has been booted.
func EnsureReady() (*Session, error) {
	initMu.Lock()
	defer initMu.Unlock()

	if active == nil {
		return nil, errors.New(errors.ErrNotInitialized, "host environment is not initialized")
	}
	return active, nil
}

// Shutdown tears the session down and frees the process slot so a later
// Initialize boots fresh. Safe to call more than once.
func (s *Session) Shutdown() {
	initMu.Lock()
	if active == s {
		active = nil
	}
	initMu.Unlock()

	s.disposer.Dispose()
}

// Engine returns the booted engine.
func (s *Session) Engine() engine.Engine { return s.engine }

// App returns the application-scope service area.
func (s *Session) App() registry.Registry[interface{}] { return s.app }

// Project returns the project-scope service area.
func (s *Session) Project() registry.Registry[interface{}] { return s.project }

// Gate returns the write gate serializing tree mutations.
func (s *Session) Gate() *WriteGate { return s.gate }

// Disposer returns the session teardown tracker.
func (s *Session) Disposer() *Disposer { return s.disposer }

// Scheme returns the active style scheme. Callers must not mutate it; use
// ReplaceScheme with a modified clone instead.
func (s *Session) Scheme() *codestyle.Scheme {
	return s.scheme.Load()
}

// ReplaceScheme atomically swaps the active scheme. In-flight format
// requests keep the scheme pointer they started with.
func (s *Session) ReplaceScheme(scheme *codestyle.Scheme) {
	s.schemeMu.Lock()
	defer s.schemeMu.Unlock()
	s.scheme.Store(scheme)
}

// UpdateScheme applies mutate to a clone of the active scheme and swaps the
// clone in. The whole read-clone-swap runs under the scheme writer lock, so
// concurrent updates and replacements never lose each other's changes.
func (s *Session) UpdateScheme(mutate func(*codestyle.Scheme)) {
	s.schemeMu.Lock()
	defer s.schemeMu.Unlock()
	next := s.scheme.Load().Clone()
	mutate(next)
	s.scheme.Store(next)
}

// Toggle reads a named engine toggle set at bootstrap or later.
func (s *Session) Toggle(key string) (string, bool) {
	s.toggleMu.RLock()
	defer s.toggleMu.RUnlock()
	v, ok := s.toggles[key]
	return v, ok
}

// SetToggle sets a named engine toggle.
func (s *Session) SetToggle(key, value string) {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()
	s.toggles[key] = value
}

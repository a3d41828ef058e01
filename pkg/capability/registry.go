package capability

import (
	"sync"

	"github.com/ideafmt/ideafmt/pkg/engine"
	"github.com/ideafmt/ideafmt/pkg/errors"
	"github.com/ideafmt/ideafmt/pkg/host"
	"github.com/ideafmt/ideafmt/pkg/logging"
)

// Registry tracks which capability modules are installed into a session.
type Registry struct {
	mu         sync.Mutex
	session    *host.Session
	modules    map[string]Module
	installed  map[string]bool
	installing map[string]bool
}

// NewRegistry creates a registry over the default module set.
func NewRegistry(session *host.Session) *Registry {
	return NewRegistryWithModules(session, DefaultModules())
}

// NewRegistryWithModules creates a registry over an explicit module set.
func NewRegistryWithModules(session *host.Session, modules []Module) *Registry {
	byTag := make(map[string]Module, len(modules))
	for _, m := range modules {
		byTag[m.Tag] = m
	}
	return &Registry{
		session:    session,
		modules:    byTag,
		installed:  make(map[string]bool),
		installing: make(map[string]bool),
	}
}

// EnsureInstalled installs the module for tag, first installing whatever it
// depends on. Already-installed tags return immediately. A failed required
// hook leaves the tag uninstalled so a later call retries from scratch.
func (r *Registry) EnsureInstalled(tag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureLocked(tag)
}

func (r *Registry) ensureLocked(tag string) error {
	if r.installed[tag] {
		return nil
	}

	module, ok := r.modules[tag]
	if !ok {
		return errors.Newf(errors.ErrUnsupportedLanguage, "no capability module for language family %q", tag)
	}

	if r.installing[tag] {
		return errors.Newf(errors.ErrModuleInstall,
			"dependency cycle detected while installing module %q", tag)
	}
	r.installing[tag] = true
	defer delete(r.installing, tag)

	if module.Requires != "" {
		if err := r.ensureLocked(module.Requires); err != nil {
			return errors.Wrapf(err, errors.ErrModuleInstall,
				"dependency %q of module %q failed", module.Requires, tag)
		}
	}

	logger := logging.GetLogger("capability")
	logger.Debug().Str("module", tag).Msg("Installing capability module")

	for _, hook := range module.Required {
		if err := hook.Install(r.session); err != nil {
			return errors.Wrapf(err, errors.ErrModuleInstall,
				"required hook %q of module %q failed", hook.Name, tag)
		}
	}

	for _, hook := range module.Optional {
		if err := hook.Install(r.session); err != nil {
			reason := "installation failed: " + err.Error()
			if engine.IsNotSupported(err) {
				reason = "not present in this engine version"
			}
			logging.Skipped(logger, hook.Name, reason)
		}
	}

	r.installed[tag] = true
	return nil
}

// IsInstalled reports whether a tag's module has been installed.
func (r *Registry) IsInstalled(tag string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.installed[tag]
}

// Reset forgets all installed tags. The next EnsureInstalled reinstalls.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installed = make(map[string]bool)
}

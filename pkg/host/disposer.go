package host

import (
	"sync"

	"github.com/ideafmt/ideafmt/pkg/logging"
)

// Disposer tracks named teardown callbacks and runs them once, in reverse
// registration order.
type Disposer struct {
	mu       sync.Mutex
	entries  []disposable
	disposed bool
}

type disposable struct {
	name string
	fn   func()
}

// NewDisposer creates an empty disposer.
func NewDisposer() *Disposer {
	return &Disposer{}
}

// Register adds a teardown callback. Registration after disposal runs the
// callback immediately.
func (d *Disposer) Register(name string, fn func()) {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		fn()
		return
	}
	d.entries = append(d.entries, disposable{name: name, fn: fn})
	d.mu.Unlock()
}

// Dispose runs all registered callbacks LIFO. Subsequent calls are no-ops.
func (d *Disposer) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	entries := d.entries
	d.entries = nil
	d.mu.Unlock()

	logger := logging.GetLogger("host.disposer")
	for i := len(entries) - 1; i >= 0; i-- {
		logger.Trace().Str("name", entries[i].name).Msg("disposing")
		entries[i].fn()
	}
}

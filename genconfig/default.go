package genconfig

import "sync"

var (
	defaultMu     sync.Mutex
	defaultEngine *Engine
)

// Default returns the shared engine, creating it with New() on first use.
// Callers that switch strategies should build their own engine with New
// instead of mutating this one.
func Default() *Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine == nil {
		defaultEngine = New()
	}
	return defaultEngine
}

// SetDefault installs e as the shared engine, typically at startup with
// configured options.
func SetDefault(e *Engine) {
	defaultMu.Lock()
	defaultEngine = e
	defaultMu.Unlock()
}

// ResetDefault drops the shared engine; the next Default call builds a
// fresh one. Tests use it for isolation.
func ResetDefault() {
	SetDefault(nil)
}

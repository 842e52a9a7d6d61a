package runtime

import (
	"sync"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driven"
)

// Services holds references to dynamically configurable collaborators.
// The browser launcher can be attached or detached at runtime (the
// open-in-browser feature is a pure configuration concern).
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic (can be nil)
	launcher driven.Launcher
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// Launcher returns the current browser launcher (may be nil)
func (s *Services) Launcher() driven.Launcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.launcher
}

// SetLauncher updates the browser launcher and the capability flag
func (s *Services) SetLauncher(l driven.Launcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launcher = l
	s.config.SetBrowserAvailable(l != nil)
}

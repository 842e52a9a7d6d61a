package domain

import "sync"

// SearchEngine identifies the search-engine URL template used by
// build_search_url
type SearchEngine string

const (
	SearchEngineGoogle     SearchEngine = "google"
	SearchEngineBing       SearchEngine = "bing"
	SearchEngineDuckDuckGo SearchEngine = "duckduckgo"
)

// IsValid returns true if this is a known engine
func (e SearchEngine) IsValid() bool {
	switch e {
	case SearchEngineGoogle, SearchEngineBing, SearchEngineDuckDuckGo:
		return true
	default:
		return false
	}
}

// URLTemplate returns the engine's search URL with a %s slot for the
// percent-encoded query
func (e SearchEngine) URLTemplate() string {
	switch e {
	case SearchEngineBing:
		return "https://www.bing.com/search?q=%s"
	case SearchEngineDuckDuckGo:
		return "https://duckduckgo.com/?q=%s"
	default:
		return "https://www.google.com/search?q=%s"
	}
}

// RuntimeConfig tracks which collaborators are active at runtime.
// The store backend is fixed at startup; the search engine and the
// browser-launch capability can change while running.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	StoreBackend   string // "file" or "postgres"
	SessionBackend string // "memory" or "redis"

	// Dynamic
	searchEngine     SearchEngine
	browserAvailable bool
}

// NewRuntimeConfig creates a RuntimeConfig with initial values
func NewRuntimeConfig(storeBackend, sessionBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		StoreBackend:   storeBackend,
		SessionBackend: sessionBackend,
		searchEngine:   SearchEngineGoogle,
	}
}

// SearchEngine returns the active search engine
func (c *RuntimeConfig) SearchEngine() SearchEngine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.searchEngine
}

// SetSearchEngine updates the active search engine. Unknown engines are
// ignored and the current engine kept.
func (c *RuntimeConfig) SetSearchEngine(engine SearchEngine) {
	if !engine.IsValid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchEngine = engine
}

// BrowserAvailable returns whether the open-in-browser side effect is wired
func (c *RuntimeConfig) BrowserAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.browserAvailable
}

// SetBrowserAvailable updates the browser capability flag
func (c *RuntimeConfig) SetBrowserAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.browserAvailable = available
}

package driving

import (
	"context"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
)

// StateSnapshot is the full state republished to the GUI after every
// relevant mutation: the category list, the active category, the rendered
// query and its search URL, the discovered variables, and the profile names.
type StateSnapshot struct {
	Categories     []*domain.Category  `json:"categories"`
	ActiveCategory string              `json:"active_category,omitempty"`
	Query          string              `json:"query"`
	SearchURL      string              `json:"search_url"`
	Variables      map[string]string   `json:"variables"`
	ProfileNames   []string            `json:"profile_names"`
	SearchEngine   domain.SearchEngine `json:"search_engine"`
}

// Listener receives a snapshot after every state change
type Listener func(*StateSnapshot)

// WorkspaceService is the state API the GUI collaborator binds to. It owns
// the live category list, the per-category selection state, the variable
// map and the profile table, persists every mutation, and recomputes the
// active query after each one.
//
// Invalid input (out-of-range indices, unknown keys or names, blank text)
// is a silent no-op: the call returns nil and state is unchanged. A non-nil
// error means the persistence collaborator failed, never a domain rule.
type WorkspaceService interface {
	// Load pulls categories and profiles from the store and activates the
	// first category
	Load(ctx context.Context) error

	// Snapshot returns the current published state
	Snapshot() *StateSnapshot

	// Subscribe registers a listener for state changes
	Subscribe(l Listener)

	// Category CRUD
	SetActiveCategory(ctx context.Context, key string) error
	CreateCategory(ctx context.Context, label string) error
	RenameCategory(ctx context.Context, key, label string) error
	DeleteCategory(ctx context.Context, key string) error

	// Fragment CRUD
	AddDork(ctx context.Context, key, text, tooltip string) error
	EditDork(ctx context.Context, key string, index int, text string) error
	DeleteDorks(ctx context.Context, key string, indices []int) error
	MoveDorks(ctx context.Context, src, dst string, indices []int) error
	SetTooltip(ctx context.Context, key, text, hint string) error

	// Selection / negation / grouping
	ToggleChecked(ctx context.Context, key string, index int) error
	SetChecked(ctx context.Context, key string, indices []int) error
	ToggleNegated(ctx context.Context, key string, index int) error
	MakeOrGroup(ctx context.Context, key string, indices []int) error
	ClearGroups(ctx context.Context, key string) error

	// Variables and rendering
	SetVariable(ctx context.Context, name, value string) error
	SetSearchEngine(ctx context.Context, engine domain.SearchEngine) error

	// Profiles
	SaveProfile(ctx context.Context, name string) error
	ApplyProfile(ctx context.Context, name string) error
	DeleteProfile(ctx context.Context, name string) error

	// OpenInBrowser fires the launcher with the current search URL
	OpenInBrowser(ctx context.Context) error
}

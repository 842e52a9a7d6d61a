package driven

import (
	"context"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
)

// DorkStore persists categories and profiles.
//
// Load is fail-soft by contract: an absent, empty or malformed backing store
// yields the built-in defaults (persisted immediately), never an error the
// caller has to distinguish. Implementations must also read the legacy flat
// shape (key -> fragment list) but only ever write the structured shape.
type DorkStore interface {
	// Load retrieves all categories (in display order) and profiles,
	// seeding defaults when the store is absent or empty
	Load(ctx context.Context) ([]*domain.Category, map[string]*domain.Profile, error)

	// SaveCategories persists the full category list, preserving order
	SaveCategories(ctx context.Context, categories []*domain.Category) error

	// SaveProfile creates or replaces the named profile
	SaveProfile(ctx context.Context, profile *domain.Profile) error

	// DeleteProfile removes the named profile; unknown names are a no-op
	DeleteProfile(ctx context.Context, name string) error
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DorkStore = (*DorkStore)(nil)

// DorkStore implements driven.DorkStore using PostgreSQL. Category display
// order is carried by an explicit position column since fragment and
// category order are part of the state, not a presentation detail.
type DorkStore struct {
	db *DB
}

// NewDorkStore creates a new DorkStore
func NewDorkStore(db *DB) *DorkStore {
	return &DorkStore{db: db}
}

// Load retrieves all categories in display order plus all saved profiles.
// An empty categories table yields the built-in defaults, persisted
// immediately, mirroring the JSON file store.
func (s *DorkStore) Load(ctx context.Context) ([]*domain.Category, map[string]*domain.Profile, error) {
	cats, err := s.loadCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(cats) == 0 {
		cats = domain.DefaultCategories()
		if err := s.SaveCategories(ctx, cats); err != nil {
			return nil, nil, err
		}
	}

	profiles, err := s.loadProfiles(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cats, profiles, nil
}

func (s *DorkStore) loadCategories(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT key, label, items, tooltips
		FROM categories
		ORDER BY position
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var cats []*domain.Category
	for rows.Next() {
		var key, label string
		var itemsJSON, tooltipsJSON []byte
		if err := rows.Scan(&key, &label, &itemsJSON, &tooltipsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}

		c := domain.NewCategory(key, label)
		if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
			return nil, fmt.Errorf("failed to decode items for %q: %w", key, err)
		}
		if err := json.Unmarshal(tooltipsJSON, &c.Tooltips); err != nil {
			return nil, fmt.Errorf("failed to decode tooltips for %q: %w", key, err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *DorkStore) loadProfiles(ctx context.Context) (map[string]*domain.Profile, error) {
	query := `
		SELECT name, category, checked, not_indices, or_groups, vars
		FROM profiles
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := map[string]*domain.Profile{}
	for rows.Next() {
		var p domain.Profile
		var checkedJSON, notJSON, groupsJSON, varsJSON []byte
		if err := rows.Scan(&p.Name, &p.Category, &checkedJSON, &notJSON, &groupsJSON, &varsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		if err := json.Unmarshal(checkedJSON, &p.Checked); err != nil {
			return nil, fmt.Errorf("failed to decode profile %q: %w", p.Name, err)
		}
		if err := json.Unmarshal(notJSON, &p.NotIndices); err != nil {
			return nil, fmt.Errorf("failed to decode profile %q: %w", p.Name, err)
		}
		if err := json.Unmarshal(groupsJSON, &p.OrGroups); err != nil {
			return nil, fmt.Errorf("failed to decode profile %q: %w", p.Name, err)
		}
		if err := json.Unmarshal(varsJSON, &p.Vars); err != nil {
			return nil, fmt.Errorf("failed to decode profile %q: %w", p.Name, err)
		}
		profiles[p.Name] = &p
	}
	return profiles, rows.Err()
}

// SaveCategories replaces the full category set, positions taken from
// slice order. Profiles are untouched.
func (s *DorkStore) SaveCategories(ctx context.Context, categories []*domain.Category) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
			return fmt.Errorf("failed to clear categories: %w", err)
		}

		query := `
			INSERT INTO categories (key, label, position, items, tooltips, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
		`
		for pos, c := range categories {
			items := c.Items
			if items == nil {
				items = []string{}
			}
			tooltips := c.Tooltips
			if tooltips == nil {
				tooltips = map[string]string{}
			}
			itemsJSON, err := json.Marshal(items)
			if err != nil {
				return err
			}
			tooltipsJSON, err := json.Marshal(tooltips)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, c.Key, c.Label, pos, itemsJSON, tooltipsJSON); err != nil {
				return fmt.Errorf("failed to insert category %q: %w", c.Key, err)
			}
		}
		return nil
	})
}

// SaveProfile creates or replaces the named profile
func (s *DorkStore) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (name, category, checked, not_indices, or_groups, vars, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (name) DO UPDATE SET
			category = EXCLUDED.category,
			checked = EXCLUDED.checked,
			not_indices = EXCLUDED.not_indices,
			or_groups = EXCLUDED.or_groups,
			vars = EXCLUDED.vars,
			updated_at = EXCLUDED.updated_at
	`

	checked := profile.Checked
	if checked == nil {
		checked = []int{}
	}
	notIndices := profile.NotIndices
	if notIndices == nil {
		notIndices = []int{}
	}
	orGroups := profile.OrGroups
	if orGroups == nil {
		orGroups = [][]int{}
	}
	vars := profile.Vars
	if vars == nil {
		vars = map[string]string{}
	}

	checkedJSON, err := json.Marshal(checked)
	if err != nil {
		return err
	}
	notJSON, err := json.Marshal(notIndices)
	if err != nil {
		return err
	}
	groupsJSON, err := json.Marshal(orGroups)
	if err != nil {
		return err
	}
	varsJSON, err := json.Marshal(vars)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		profile.Name, profile.Category, checkedJSON, notJSON, groupsJSON, varsJSON)
	if err != nil {
		return fmt.Errorf("failed to save profile %q: %w", profile.Name, err)
	}
	return nil
}

// DeleteProfile removes the named profile; unknown names are a no-op
func (s *DorkStore) DeleteProfile(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete profile %q: %w", name, err)
	}
	return nil
}

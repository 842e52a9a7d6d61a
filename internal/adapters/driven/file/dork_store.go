package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DorkStore = (*DorkStore)(nil)

// DorkStore implements driven.DorkStore on a single JSON document.
//
// Two shapes are readable: the structured shape with explicit "categories"
// and "profiles" sections, and the legacy flat shape (key -> fragment list)
// kept for files produced by older builds. Writes always use the structured
// shape. Category order inside the document is significant and preserved.
type DorkStore struct {
	mu   sync.Mutex
	path string
}

// NewDorkStore creates a DorkStore backed by the JSON file at path
func NewDorkStore(path string) *DorkStore {
	return &DorkStore{path: path}
}

// categoryDoc is the on-disk category shape
type categoryDoc struct {
	Label    string            `json:"label"`
	Items    []string          `json:"items"`
	Tooltips map[string]string `json:"tooltips"`
}

// Load retrieves categories and profiles. An absent, empty or malformed
// file yields the built-in defaults, persisted immediately; it is never an
// error. A legacy flat file is migrated in memory but not written back.
func (s *DorkStore) Load(ctx context.Context) ([]*domain.Category, map[string]*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return s.seedDefaultsLocked()
	}

	keys, values, err := decodeOrderedObject(data)
	if err != nil {
		// unreadable backing data is treated as empty, no partial recovery
		return s.seedDefaultsLocked()
	}

	if raw, ok := values["categories"]; ok {
		cats, profiles, err := decodeStructured(raw, values["profiles"])
		if err != nil {
			return s.seedDefaultsLocked()
		}
		if len(cats) == 0 {
			return s.seedDefaultsLocked()
		}
		return cats, profiles, nil
	}

	cats := decodeLegacy(keys, values)
	if len(cats) == 0 {
		return s.seedDefaultsLocked()
	}
	return cats, map[string]*domain.Profile{}, nil
}

// SaveCategories persists the category list, keeping the profiles already
// on disk
func (s *DorkStore) SaveCategories(ctx context.Context, categories []*domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, profiles := s.readCurrentLocked()
	return s.writeLocked(categories, profiles)
}

// SaveProfile creates or replaces the named profile
func (s *DorkStore) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, profiles := s.readCurrentLocked()
	profiles[profile.Name] = profile
	return s.writeLocked(cats, profiles)
}

// DeleteProfile removes the named profile; unknown names are a no-op
func (s *DorkStore) DeleteProfile(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, profiles := s.readCurrentLocked()
	if _, ok := profiles[name]; !ok {
		return nil
	}
	delete(profiles, name)
	return s.writeLocked(cats, profiles)
}

// seedDefaultsLocked materializes the built-in categories and persists them
func (s *DorkStore) seedDefaultsLocked() ([]*domain.Category, map[string]*domain.Profile, error) {
	cats := domain.DefaultCategories()
	profiles := map[string]*domain.Profile{}
	if err := s.writeLocked(cats, profiles); err != nil {
		return nil, nil, err
	}
	return cats, profiles, nil
}

// readCurrentLocked best-effort reads what is on disk right now; a missing
// or broken file reads as empty
func (s *DorkStore) readCurrentLocked() ([]*domain.Category, map[string]*domain.Profile) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, map[string]*domain.Profile{}
	}
	_, values, err := decodeOrderedObject(data)
	if err != nil {
		return nil, map[string]*domain.Profile{}
	}
	raw, ok := values["categories"]
	if !ok {
		return nil, map[string]*domain.Profile{}
	}
	cats, profiles, err := decodeStructured(raw, values["profiles"])
	if err != nil {
		return nil, map[string]*domain.Profile{}
	}
	return cats, profiles
}

// writeLocked writes the structured shape, category order preserved
func (s *DorkStore) writeLocked(categories []*domain.Category, profiles map[string]*domain.Profile) error {
	data, err := encodeDocument(categories, profiles)
	if err != nil {
		return fmt.Errorf("failed to encode dork document: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write dork document: %w", err)
	}
	return nil
}

// decodeOrderedObject parses a JSON object keeping the key order of the
// document. Fragment-list order is positional identity, so category order
// has to survive the round trip.
func decodeOrderedObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var keys []string
	values := map[string]json.RawMessage{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

// decodeStructured parses the structured shape
func decodeStructured(rawCats, rawProfiles json.RawMessage) ([]*domain.Category, map[string]*domain.Profile, error) {
	keys, values, err := decodeOrderedObject(rawCats)
	if err != nil {
		return nil, nil, err
	}

	cats := make([]*domain.Category, 0, len(keys))
	for _, key := range keys {
		var doc categoryDoc
		if err := json.Unmarshal(values[key], &doc); err != nil {
			return nil, nil, err
		}
		c := domain.NewCategory(key, doc.Label)
		if c.Label == "" {
			c.Label = domain.LegacyLabel(key)
		}
		if doc.Items != nil {
			c.Items = doc.Items
		}
		if doc.Tooltips != nil {
			c.Tooltips = doc.Tooltips
		}
		cats = append(cats, c)
	}

	profiles := map[string]*domain.Profile{}
	if len(rawProfiles) > 0 {
		var raw map[string]*domain.Profile
		if err := json.Unmarshal(rawProfiles, &raw); err != nil {
			return nil, nil, err
		}
		for name, p := range raw {
			if p == nil {
				continue
			}
			p.Name = name
			profiles[name] = p
		}
	}
	return cats, profiles, nil
}

// decodeLegacy interprets the flat shape: every key whose value is a list
// of strings becomes a category with a capitalized label, no tooltips and
// no profiles. Anything else is skipped.
func decodeLegacy(keys []string, values map[string]json.RawMessage) []*domain.Category {
	cats := make([]*domain.Category, 0, len(keys))
	for _, key := range keys {
		var items []string
		if err := json.Unmarshal(values[key], &items); err != nil {
			continue
		}
		c := domain.NewCategory(key, domain.LegacyLabel(key))
		c.Items = items
		cats = append(cats, c)
	}
	return cats
}

// encodeDocument renders the structured shape with stable category order
func encodeDocument(categories []*domain.Category, profiles map[string]*domain.Profile) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"categories":{`)
	for i, c := range categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		doc := categoryDoc{
			Label:    c.Label,
			Items:    c.Items,
			Tooltips: c.Tooltips,
		}
		if doc.Items == nil {
			doc.Items = []string{}
		}
		if doc.Tooltips == nil {
			doc.Tooltips = map[string]string{}
		}
		val, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString(`},"profiles":`)

	profileDocs := make(map[string]*domain.Profile, len(profiles))
	for name, p := range profiles {
		clone := p.Clone()
		if clone.Checked == nil {
			clone.Checked = []int{}
		}
		if clone.NotIndices == nil {
			clone.NotIndices = []int{}
		}
		if clone.OrGroups == nil {
			clone.OrGroups = [][]int{}
		}
		if clone.Vars == nil {
			clone.Vars = map[string]string{}
		}
		profileDocs[name] = clone
	}
	profVal, err := json.Marshal(profileDocs)
	if err != nil {
		return nil, err
	}
	buf.Write(profVal)
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

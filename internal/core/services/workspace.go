package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driven"
	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driving"
	"github.com/custodia-labs/dorkdesk-core/internal/runtime"
)

// Ensure workspaceService implements WorkspaceService
var _ driving.WorkspaceService = (*workspaceService)(nil)

// workspaceService implements the WorkspaceService interface. All state
// access is serialized behind one mutex: every operation runs to completion
// before the next one observes anything, which keeps the positional
// selection state and the fragment lists consistent at all times.
//
// Listeners are notified synchronously and must not call back into the
// service.
type workspaceService struct {
	mu       sync.Mutex
	store    driven.DorkStore
	services *runtime.Services
	logger   *slog.Logger

	categories []*domain.Category
	activeIdx  int
	selections map[string]*domain.Selection
	vars       map[string]string
	profiles   map[string]*domain.Profile
	builder    *domain.QueryBuilder

	listeners []driving.Listener
	snapshot  *driving.StateSnapshot
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(store driven.DorkStore, services *runtime.Services, logger *slog.Logger) driving.WorkspaceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &workspaceService{
		store:      store,
		services:   services,
		logger:     logger,
		activeIdx:  -1,
		selections: map[string]*domain.Selection{},
		vars:       map[string]string{},
		profiles:   map[string]*domain.Profile{},
		builder:    domain.NewQueryBuilder(),
	}
}

// Load pulls categories and profiles from the store and activates the
// first category
func (s *workspaceService) Load(ctx context.Context) error {
	cats, profiles, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = cats
	s.profiles = profiles
	if s.profiles == nil {
		s.profiles = map[string]*domain.Profile{}
	}
	s.activeIdx = -1
	if len(cats) > 0 {
		s.activeIdx = 0
	}
	s.selections = map[string]*domain.Selection{}

	s.publishLocked()
	return nil
}

// Snapshot returns the current published state
func (s *workspaceService) Snapshot() *driving.StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return s.rebuildLocked()
	}
	return s.snapshot
}

// Subscribe registers a listener for state changes
func (s *workspaceService) Subscribe(l driving.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// SetActiveCategory switches the category the query is composed from.
// Unknown keys are a no-op.
func (s *workspaceService) SetActiveCategory(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, _ := s.categoryLocked(key)
	if idx < 0 {
		return nil
	}
	s.activeIdx = idx
	s.publishLocked()
	return nil
}

// CreateCategory creates an empty category from a display label. The key is
// slugified from the label and disambiguated with a numeric suffix on
// collision. Blank labels are a no-op.
func (s *workspaceService) CreateCategory(ctx context.Context, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.UniqueKey(domain.Slugify(label), s.keyTakenLocked(""))
	s.categories = append(s.categories, domain.NewCategory(key, label))
	s.selections[key] = domain.NewSelection()
	s.activeIdx = len(s.categories) - 1

	return s.commitLocked(ctx)
}

// RenameCategory updates a category's label, re-deriving its key when the
// slug changes. Selection state follows the category to its new key.
func (s *workspaceService) RenameCategory(ctx context.Context, key, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, cat := s.categoryLocked(key)
	if cat == nil {
		return nil
	}

	base := domain.Slugify(label)
	if base != cat.Key {
		newKey := domain.UniqueKey(base, s.keyTakenLocked(cat.Key))
		if sel, ok := s.selections[cat.Key]; ok {
			delete(s.selections, cat.Key)
			s.selections[newKey] = sel
		}
		cat.Key = newKey
	}
	cat.Label = label

	return s.commitLocked(ctx)
}

// DeleteCategory removes a category and discards all its selection state
func (s *workspaceService) DeleteCategory(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, cat := s.categoryLocked(key)
	if cat == nil {
		return nil
	}

	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
	delete(s.selections, key)

	if idx < s.activeIdx {
		s.activeIdx--
	}
	if s.activeIdx >= len(s.categories) {
		s.activeIdx = len(s.categories) - 1
	}

	return s.commitLocked(ctx)
}

// AddDork appends a fragment to the category. Blank text is a no-op.
func (s *workspaceService) AddDork(ctx context.Context, key, text, tooltip string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, cat := s.categoryLocked(key)
	if cat == nil {
		return nil
	}

	cat.Items = append(cat.Items, text)
	if tooltip != "" {
		if cat.Tooltips == nil {
			cat.Tooltips = map[string]string{}
		}
		cat.Tooltips[text] = tooltip
	}

	return s.commitLocked(ctx)
}

// EditDork replaces the fragment text at index. Out-of-range indices,
// blank text and unchanged text are no-ops.
func (s *workspaceService) EditDork(ctx context.Context, key string, index int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, cat := s.categoryLocked(key)
	if cat == nil || !cat.ValidIndex(index) || cat.Items[index] == text {
		return nil
	}

	cat.Items[index] = text
	return s.commitLocked(ctx)
}

// DeleteDorks removes the fragments at the given indices and remaps the
// category's selection state in the same operation
func (s *workspaceService) DeleteDorks(ctx context.Context, key string, indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, cat := s.categoryLocked(key)
	if cat == nil {
		return nil
	}

	removed := validSortedIndices(cat, indices)
	if len(removed) == 0 {
		return nil
	}

	for i := len(removed) - 1; i >= 0; i-- {
		idx := removed[i]
		cat.Items = append(cat.Items[:idx], cat.Items[idx+1:]...)
	}
	s.selectionLocked(key).ReindexAfterRemoval(removed)

	return s.commitLocked(ctx)
}

// MoveDorks moves fragments from src to the end of dst, preserving their
// relative order. The source selection state is remapped; the destination's
// is untouched (moved fragments arrive unselected).
func (s *workspaceService) MoveDorks(ctx context.Context, src, dst string, indices []int) error {
	if src == dst || len(indices) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, srcCat := s.categoryLocked(src)
	_, dstCat := s.categoryLocked(dst)
	if srcCat == nil || dstCat == nil {
		return nil
	}

	moved := validSortedIndices(srcCat, indices)
	if len(moved) == 0 {
		return nil
	}

	texts := make([]string, 0, len(moved))
	for _, i := range moved {
		texts = append(texts, srcCat.Items[i])
	}

	for i := len(moved) - 1; i >= 0; i-- {
		idx := moved[i]
		srcCat.Items = append(srcCat.Items[:idx], srcCat.Items[idx+1:]...)
	}
	s.selectionLocked(src).ReindexAfterRemoval(moved)

	dstCat.Items = append(dstCat.Items, texts...)

	// tooltips ride along with their fragment text
	for _, text := range texts {
		if hint, ok := srcCat.Tooltips[text]; ok {
			if dstCat.Tooltips == nil {
				dstCat.Tooltips = map[string]string{}
			}
			dstCat.Tooltips[text] = hint
			delete(srcCat.Tooltips, text)
		}
	}

	return s.commitLocked(ctx)
}

// SetTooltip attaches a hint to an existing fragment text; an empty hint
// removes the entry. Unknown texts are a no-op.
func (s *workspaceService) SetTooltip(ctx context.Context, key, text, hint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, cat := s.categoryLocked(key)
	if cat == nil {
		return nil
	}

	found := false
	for _, item := range cat.Items {
		if item == text {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	if hint == "" {
		delete(cat.Tooltips, text)
	} else {
		if cat.Tooltips == nil {
			cat.Tooltips = map[string]string{}
		}
		cat.Tooltips[text] = hint
	}

	return s.commitLocked(ctx)
}

// ToggleChecked flips whether the fragment at index is part of the query
func (s *workspaceService) ToggleChecked(ctx context.Context, key string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, cat := s.categoryLocked(key)
	if cat == nil || !cat.ValidIndex(index) {
		return nil
	}
	s.selectionLocked(key).ToggleChecked(index)

	return s.commitLocked(ctx)
}

// SetChecked replaces the checked set for the category
func (s *workspaceService) SetChecked(ctx context.Context, key string, indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, cat := s.categoryLocked(key)
	if cat == nil {
		return nil
	}
	s.selectionLocked(key).SetChecked(validSortedIndices(cat, indices))

	return s.commitLocked(ctx)
}

// ToggleNegated flips the NOT flag on the fragment at index
func (s *workspaceService) ToggleNegated(ctx context.Context, key string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, cat := s.categoryLocked(key)
	if cat == nil || !cat.ValidIndex(index) {
		return nil
	}
	s.selectionLocked(key).ToggleNegated(index)

	return s.commitLocked(ctx)
}

// MakeOrGroup combines the fragments at the given indices into an OR-group,
// checking them as a side effect. Fewer than two valid indices is a no-op.
func (s *workspaceService) MakeOrGroup(ctx context.Context, key string, indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, cat := s.categoryLocked(key)
	if cat == nil {
		return nil
	}
	valid := validSortedIndices(cat, indices)
	if len(valid) < 2 {
		return nil
	}
	s.selectionLocked(key).MakeOrGroup(valid)

	return s.commitLocked(ctx)
}

// ClearGroups discards all OR-groups for the category
func (s *workspaceService) ClearGroups(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, cat := s.categoryLocked(key)
	if cat == nil {
		return nil
	}
	s.selectionLocked(key).ClearGroups()

	return s.commitLocked(ctx)
}

// SetVariable updates one variable. The variable map is process-scoped
// session state and is only persisted inside profiles.
func (s *workspaceService) SetVariable(ctx context.Context, name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.vars[name] = value
	s.publishLocked()
	return nil
}

// SetSearchEngine switches the URL template used for build_search_url.
// Unknown engines are a no-op.
func (s *workspaceService) SetSearchEngine(ctx context.Context, engine domain.SearchEngine) error {
	if !engine.IsValid() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.services.Config().SetSearchEngine(engine)
	s.publishLocked()
	return nil
}

// SaveProfile snapshots the active category's selection state and the
// variable map under the given name
func (s *workspaceService) SaveProfile(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.activeLocked()
	if cat == nil {
		return nil
	}

	p := domain.SnapshotProfile(name, cat.Key, s.selectionLocked(cat.Key), s.vars)
	if err := s.store.SaveProfile(ctx, p); err != nil {
		s.logger.Error("failed to save profile", "name", name, "error", err)
		return err
	}
	s.profiles[name] = p

	s.publishLocked()
	return nil
}

// ApplyProfile overwrites the profile's category selection state and the
// variable map with the snapshot and activates that category. Unknown
// profile names, and profiles whose category no longer exists, are no-ops.
func (s *workspaceService) ApplyProfile(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[name]
	if !ok {
		return nil
	}
	idx, _ := s.categoryLocked(p.Category)
	if idx < 0 {
		return nil
	}

	s.activeIdx = idx
	s.selections[p.Category] = p.Selection()
	s.vars = map[string]string{}
	for k, v := range p.Vars {
		s.vars[k] = v
	}

	s.publishLocked()
	return nil
}

// DeleteProfile removes the named profile; unknown names are a no-op
func (s *workspaceService) DeleteProfile(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[name]; !ok {
		return nil
	}
	if err := s.store.DeleteProfile(ctx, name); err != nil {
		s.logger.Error("failed to delete profile", "name", name, "error", err)
		return err
	}
	delete(s.profiles, name)

	s.publishLocked()
	return nil
}

// OpenInBrowser fires the launcher with the current search URL. Without a
// wired launcher this is a no-op.
func (s *workspaceService) OpenInBrowser(ctx context.Context) error {
	launcher := s.services.Launcher()
	if launcher == nil {
		return nil
	}

	s.mu.Lock()
	snap := s.snapshot
	if snap == nil {
		snap = s.rebuildLocked()
	}
	url := snap.SearchURL
	s.mu.Unlock()

	if snap.Query != "" {
		launcher.Open(url)
	}
	return nil
}

// ===================== internals =====================

// categoryLocked finds a category by key; (-1, nil) when absent
func (s *workspaceService) categoryLocked(key string) (int, *domain.Category) {
	for i, c := range s.categories {
		if c.Key == key {
			return i, c
		}
	}
	return -1, nil
}

// activeLocked returns the active category, nil when none
func (s *workspaceService) activeLocked() *domain.Category {
	if s.activeIdx >= 0 && s.activeIdx < len(s.categories) {
		return s.categories[s.activeIdx]
	}
	return nil
}

// selectionLocked returns the category's selection state, creating it on
// first use
func (s *workspaceService) selectionLocked(key string) *domain.Selection {
	sel, ok := s.selections[key]
	if !ok {
		sel = domain.NewSelection()
		s.selections[key] = sel
	}
	return sel
}

// keyTakenLocked builds a collision predicate over live keys, excluding one
// key (the category being renamed)
func (s *workspaceService) keyTakenLocked(exclude string) func(string) bool {
	return func(key string) bool {
		for _, c := range s.categories {
			if c.Key != exclude && c.Key == key {
				return true
			}
		}
		return false
	}
}

// commitLocked persists the category list, then recomputes and publishes
// the snapshot. A failed write is reported but not retried; in-memory state
// stays mutated and the next successful write rewrites the whole document.
func (s *workspaceService) commitLocked(ctx context.Context) error {
	err := s.store.SaveCategories(ctx, s.categories)
	if err != nil {
		s.logger.Error("failed to persist categories", "error", err)
	}
	s.publishLocked()
	return err
}

// publishLocked recomputes the snapshot and notifies listeners
func (s *workspaceService) publishLocked() {
	snap := s.rebuildLocked()
	for _, l := range s.listeners {
		l(snap)
	}
}

// rebuildLocked recomputes the active query from the active category's
// selection state: OR-groups with at least two checked members render as
// one grouped part and consume their members; the remaining checked indices
// render individually, negated where flagged. Placeholders found in every
// emitted fragment are folded into the variable map.
func (s *workspaceService) rebuildLocked() *driving.StateSnapshot {
	s.builder.Clear()

	snap := &driving.StateSnapshot{
		Categories:   make([]*domain.Category, 0, len(s.categories)),
		Variables:    map[string]string{},
		ProfileNames: make([]string, 0, len(s.profiles)),
		SearchEngine: s.services.Config().SearchEngine(),
	}
	for _, c := range s.categories {
		snap.Categories = append(snap.Categories, c.Clone())
	}
	for name := range s.profiles {
		snap.ProfileNames = append(snap.ProfileNames, name)
	}
	sort.Strings(snap.ProfileNames)

	cat := s.activeLocked()
	if cat == nil {
		snap.SearchURL = s.builder.SearchURL(snap.SearchEngine.URLTemplate())
		s.snapshot = snap
		return snap
	}
	snap.ActiveCategory = cat.Key

	sel := s.selectionLocked(cat.Key)
	checked := sel.Checked
	used := domain.IndexSet{}
	emitted := make([]string, 0, len(checked))

	for _, g := range sel.Groups {
		included := make([]int, 0, len(g))
		for _, i := range g.Sorted() {
			if checked.Has(i) && cat.ValidIndex(i) {
				included = append(included, i)
			}
		}
		if len(included) < 2 {
			continue
		}
		texts := make([]string, 0, len(included))
		for _, i := range included {
			texts = append(texts, cat.Items[i])
			used[i] = struct{}{}
		}
		s.builder.AddOrGroup(texts)
		emitted = append(emitted, texts...)
	}

	for _, i := range checked.Sorted() {
		if used.Has(i) || !cat.ValidIndex(i) {
			continue
		}
		text := cat.Items[i]
		if sel.Negated.Has(i) {
			s.builder.AddNegated(text)
		} else {
			s.builder.Add(text)
		}
		emitted = append(emitted, text)
	}

	// every placeholder that will render gets a variable entry
	names := domain.PlaceholderNames(emitted)
	for _, name := range names {
		if _, ok := s.vars[name]; !ok {
			s.vars[name] = ""
		}
		snap.Variables[name] = s.vars[name]
	}

	s.builder.SetVariables(s.vars)
	snap.Query = s.builder.Build()
	snap.SearchURL = s.builder.SearchURL(snap.SearchEngine.URLTemplate())

	s.snapshot = snap
	return snap
}

// validSortedIndices filters to in-bounds indices, deduplicated and sorted
// ascending
func validSortedIndices(cat *domain.Category, indices []int) []int {
	seen := map[int]struct{}{}
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if !cat.ValidIndex(i) {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

package domain

import "sort"

// IndexSet is a set of fragment positions within one category
type IndexSet map[int]struct{}

// NewIndexSet builds a set from the given indices
func NewIndexSet(indices ...int) IndexSet {
	s := make(IndexSet, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

// Has reports membership
func (s IndexSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the members in ascending order
func (s IndexSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Clone returns a copy of the set
func (s IndexSet) Clone() IndexSet {
	out := make(IndexSet, len(s))
	for i := range s {
		out[i] = struct{}{}
	}
	return out
}

// Intersects reports whether the two sets share a member
func (s IndexSet) Intersects(other IndexSet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for i := range small {
		if large.Has(i) {
			return true
		}
	}
	return false
}

// Selection is the per-category selection state: which fragments are checked,
// which are flagged NOT, and which are combined into OR-groups. All three
// hold positional indices into the category's fragment list, so they must be
// remapped together with every fragment-list mutation.
type Selection struct {
	Checked IndexSet
	Negated IndexSet
	Groups  []IndexSet
}

// NewSelection creates an empty selection
func NewSelection() *Selection {
	return &Selection{
		Checked: IndexSet{},
		Negated: IndexSet{},
		Groups:  []IndexSet{},
	}
}

// Clone returns a deep copy of the selection
func (s *Selection) Clone() *Selection {
	out := &Selection{
		Checked: s.Checked.Clone(),
		Negated: s.Negated.Clone(),
		Groups:  make([]IndexSet, 0, len(s.Groups)),
	}
	for _, g := range s.Groups {
		out.Groups = append(out.Groups, g.Clone())
	}
	return out
}

// ToggleChecked flips whether the fragment at idx is included in the query
func (s *Selection) ToggleChecked(idx int) {
	if s.Checked.Has(idx) {
		delete(s.Checked, idx)
	} else {
		s.Checked[idx] = struct{}{}
	}
}

// SetChecked replaces the checked set wholesale
func (s *Selection) SetChecked(indices []int) {
	s.Checked = NewIndexSet(indices...)
}

// ToggleNegated flips the NOT flag on idx. Negation is independent of the
// checked state and only becomes observable when the index is also checked.
func (s *Selection) ToggleNegated(idx int) {
	if s.Negated.Has(idx) {
		delete(s.Negated, idx)
	} else {
		s.Negated[idx] = struct{}{}
	}
}

// MakeOrGroup combines the given fragments into an OR-group, checking them
// as a side effect. Fewer than two indices is a no-op. Overlapping groups
// are merged by normalization.
func (s *Selection) MakeOrGroup(indices []int) {
	if len(indices) < 2 {
		return
	}
	for _, i := range indices {
		s.Checked[i] = struct{}{}
	}
	s.Groups = append(s.Groups, NewIndexSet(indices...))
	s.Normalize()
}

// ClearGroups discards all OR-groups; checked and negated state is untouched
func (s *Selection) ClearGroups() {
	s.Groups = []IndexSet{}
}

// Normalize merges overlapping OR-groups until all groups are pairwise
// disjoint, then drops any group with fewer than two members. Group counts
// are small, so the quadratic merge passes are fine.
func (s *Selection) Normalize() {
	groups := make([]IndexSet, 0, len(s.Groups))
	for _, g := range s.Groups {
		if len(g) >= 2 {
			groups = append(groups, g.Clone())
		}
	}

	for changed := true; changed; {
		changed = false
		merged := make([]IndexSet, 0, len(groups))
		for _, g := range groups {
			placed := false
			for _, r := range merged {
				if r.Intersects(g) {
					for i := range g {
						r[i] = struct{}{}
					}
					placed = true
					changed = true
					break
				}
			}
			if !placed {
				merged = append(merged, g)
			}
		}
		groups = merged
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g) >= 2 {
			out = append(out, g)
		}
	}
	s.Groups = out
}

// ReindexAfterRemoval rewrites every index after the fragments at removed
// (ascending, already deleted from the item list) are gone: surviving index
// i becomes i minus the number of removed indices below it, removed indices
// are dropped, and groups shrinking below two members are discarded.
func (s *Selection) ReindexAfterRemoval(removed []int) {
	if len(removed) == 0 {
		return
	}
	removedSet := NewIndexSet(removed...)

	remap := func(set IndexSet) IndexSet {
		out := IndexSet{}
		for idx := range set {
			if removedSet.Has(idx) {
				continue
			}
			shift := 0
			for _, r := range removed {
				if r < idx {
					shift++
				}
			}
			out[idx-shift] = struct{}{}
		}
		return out
	}

	s.Checked = remap(s.Checked)
	s.Negated = remap(s.Negated)

	groups := make([]IndexSet, 0, len(s.Groups))
	for _, g := range s.Groups {
		g2 := remap(g)
		if len(g2) >= 2 {
			groups = append(groups, g2)
		}
	}
	s.Groups = groups
}

// Valid reports whether every held index addresses a fragment in a list of
// length n
func (s *Selection) Valid(n int) bool {
	inBounds := func(set IndexSet) bool {
		for i := range set {
			if i < 0 || i >= n {
				return false
			}
		}
		return true
	}
	if !inBounds(s.Checked) || !inBounds(s.Negated) {
		return false
	}
	for _, g := range s.Groups {
		if !inBounds(g) {
			return false
		}
	}
	return true
}

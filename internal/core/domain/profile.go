package domain

// Profile is a named, persisted snapshot of one category's selection,
// negation and grouping state plus the variable map at save time. Profiles
// reference their category by key and do not track later renames or
// deletions; applying a profile whose category no longer exists is a no-op.
type Profile struct {
	Name       string            `json:"-"`
	Category   string            `json:"category"`
	Checked    []int             `json:"checked"`
	Vars       map[string]string `json:"vars"`
	NotIndices []int             `json:"not_indices"`
	OrGroups   [][]int           `json:"or_groups"`
}

// SnapshotProfile captures the given selection and variable map as a
// profile for the named category. Index lists are stored sorted.
func SnapshotProfile(name, categoryKey string, sel *Selection, vars map[string]string) *Profile {
	p := &Profile{
		Name:       name,
		Category:   categoryKey,
		Checked:    sel.Checked.Sorted(),
		NotIndices: sel.Negated.Sorted(),
		OrGroups:   make([][]int, 0, len(sel.Groups)),
		Vars:       make(map[string]string, len(vars)),
	}
	for _, g := range sel.Groups {
		p.OrGroups = append(p.OrGroups, g.Sorted())
	}
	for k, v := range vars {
		p.Vars[k] = v
	}
	return p
}

// Selection reconstructs the selection state held by the profile
func (p *Profile) Selection() *Selection {
	sel := &Selection{
		Checked: NewIndexSet(p.Checked...),
		Negated: NewIndexSet(p.NotIndices...),
		Groups:  make([]IndexSet, 0, len(p.OrGroups)),
	}
	for _, g := range p.OrGroups {
		sel.Groups = append(sel.Groups, NewIndexSet(g...))
	}
	return sel
}

// Clone returns a deep copy of the profile
func (p *Profile) Clone() *Profile {
	out := &Profile{
		Name:       p.Name,
		Category:   p.Category,
		Checked:    append([]int{}, p.Checked...),
		NotIndices: append([]int{}, p.NotIndices...),
		OrGroups:   make([][]int, 0, len(p.OrGroups)),
		Vars:       make(map[string]string, len(p.Vars)),
	}
	for _, g := range p.OrGroups {
		out.OrGroups = append(out.OrGroups, append([]int{}, g...))
	}
	for k, v := range p.Vars {
		out.Vars[k] = v
	}
	return out
}

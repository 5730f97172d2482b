package export

// RenameMap records the path renames performed by the structure collapser, in
// discovery order (deepest subtree first). After collapsing completes it is
// immutable; the rewriter and manifest writer consume it read-only.
type RenameMap struct {
	order []string
	m     map[string]string
}

// NewRenameMap creates an empty rename map.
func NewRenameMap() *RenameMap {
	return &RenameMap{m: make(map[string]string)}
}

// Add records oldPath -> newPath. A path is only ever renamed once per pass,
// so duplicate keys overwrite without changing order.
func (r *RenameMap) Add(oldPath, newPath string) {
	if _, seen := r.m[oldPath]; !seen {
		r.order = append(r.order, oldPath)
	}
	r.m[oldPath] = newPath
}

// Get returns the new path for oldPath, if renamed.
func (r *RenameMap) Get(oldPath string) (string, bool) {
	newPath, ok := r.m[oldPath]
	return newPath, ok
}

// Resolve returns the post-rename path for p, or p itself when unrenamed.
func (r *RenameMap) Resolve(p string) string {
	if newPath, ok := r.m[p]; ok {
		return newPath
	}
	return p
}

// Len returns the number of recorded renames.
func (r *RenameMap) Len() int { return len(r.order) }

// Pairs returns (old, new) pairs in discovery order.
func (r *RenameMap) Pairs() [][2]string {
	pairs := make([][2]string, 0, len(r.order))
	for _, oldPath := range r.order {
		pairs = append(pairs, [2]string{oldPath, r.m[oldPath]})
	}
	return pairs
}

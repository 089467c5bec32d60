package reconcile

// CanonicalMap maps each source id to its canonical pointer. The map is
// initialized to identity and mutated only by auto-merge decisions.
//
// Merge repoints without path compression: the intermediate pointer
// state is visible to the audit log and must match the pair-iteration
// order that produced it. Flatten resolves the chains once, at the end.
type CanonicalMap map[string]string

// NewCanonicalMap builds an identity mapping over the given ids.
func NewCanonicalMap(ids []string) CanonicalMap {
	m := make(CanonicalMap, len(ids))
	for _, id := range ids {
		m[id] = id
	}
	return m
}

// Merge repoints right's canonical pointer to left's current pointer.
// Ids unseen at initialization are added as themselves first.
func (m CanonicalMap) Merge(left, right string) {
	if _, ok := m[left]; !ok {
		m[left] = left
	}
	if _, ok := m[right]; !ok {
		m[right] = right
	}
	m[right] = m[left]
}

// Root follows the pointer chain from id to its terminal canonical id.
func (m CanonicalMap) Root(id string) string {
	seen := make(map[string]bool)
	current := id
	for {
		next, ok := m[current]
		if !ok || next == current || seen[current] {
			return current
		}
		seen[current] = true
		current = next
	}
}

// Flatten returns a new map in which every pointer is fully resolved to
// its root. The receiver is not modified.
func (m CanonicalMap) Flatten() CanonicalMap {
	flat := make(CanonicalMap, len(m))
	for id := range m {
		flat[id] = m.Root(id)
	}
	return flat
}

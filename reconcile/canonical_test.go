package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCanonicalMapIdentity(t *testing.T) {
	m := NewCanonicalMap([]string{"a", "b", "c"})

	assert.Len(t, m, 3)
	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, id, m[id])
	}
}

func TestMergeRepointsWithoutCompression(t *testing.T) {
	m := NewCanonicalMap([]string{"a", "b", "c"})

	// Merging in reverse-dependency order leaves a pointer chain.
	m.Merge("b", "c")
	m.Merge("a", "b")

	assert.Equal(t, "b", m["c"])
	assert.Equal(t, "a", m["b"])
	assert.Equal(t, "a", m.Root("c"))
}

func TestMergeAddsUnseenIDs(t *testing.T) {
	m := make(CanonicalMap)

	m.Merge("x", "y")

	assert.Equal(t, "x", m["x"])
	assert.Equal(t, "x", m["y"])
}

func TestFlattenResolvesChainsAndPreservesReceiver(t *testing.T) {
	m := NewCanonicalMap([]string{"a", "b", "c", "d"})
	m.Merge("b", "c")
	m.Merge("a", "b")

	flat := m.Flatten()

	assert.Equal(t, "a", flat["a"])
	assert.Equal(t, "a", flat["b"])
	assert.Equal(t, "a", flat["c"])
	assert.Equal(t, "d", flat["d"])

	// The receiver keeps its intermediate pointers.
	assert.Equal(t, "b", m["c"])
}

func TestRootTerminatesOnUnknownID(t *testing.T) {
	m := NewCanonicalMap([]string{"a"})

	assert.Equal(t, "z", m.Root("z"))
}

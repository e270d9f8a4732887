package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryFirstWriteWins(t *testing.T) {
	reg := NewRegistry()
	first := &Grouping{Name: "Color", Members: []Member{{Name: "RED", Value: 0}, {Name: "GREEN", Value: 1}}}
	second := &Grouping{Name: "Color", Members: []Member{{Name: "CYAN", Value: 5}}}

	require.True(t, reg.Insert(first))
	assert.False(t, reg.Insert(second))

	got, ok := reg.Get("Color")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, []Member{{Name: "RED", Value: 0}, {Name: "GREEN", Value: 1}}, got.Members)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryRejectsEmptyAndUnnamed(t *testing.T) {
	reg := NewRegistry()

	assert.False(t, reg.Insert(nil))
	assert.False(t, reg.Insert(&Grouping{Name: "Empty"}))
	assert.False(t, reg.Insert(&Grouping{Members: []Member{{Name: "A"}}}))
	assert.False(t, reg.Has("Empty"))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryKeepsInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		reg.Insert(&Grouping{Name: name, Members: []Member{{Name: "X"}}})
	}

	var order []string
	for _, g := range reg.Groupings() {
		order = append(order, g.Name)
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, order)
}

func TestRegistryGroupingsIsACopy(t *testing.T) {
	reg := NewRegistry()
	reg.Insert(&Grouping{Name: "A", Members: []Member{{Name: "X"}}})

	gs := reg.Groupings()
	gs[0] = nil

	assert.NotNil(t, reg.Groupings()[0])
}

package gene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Intersect(t *testing.T) {
	a := NewSet("TP53", "BRCA1", "KRAS")
	b := NewSet("KRAS", "EGFR", "TP53")

	ab := a.Intersect(b)
	ba := b.Intersect(a)

	assert.Equal(t, 2, ab.Len())
	assert.Equal(t, ab.Sorted(), ba.Sorted(), "intersection must be commutative")
	assert.True(t, ab.Contains("TP53"))
	assert.True(t, ab.Contains("KRAS"))
	assert.False(t, ab.Contains("BRCA1"))
}

func TestSet_IntersectDisjoint(t *testing.T) {
	a := NewSet("TP53")
	b := NewSet("EGFR")

	assert.Equal(t, 0, a.Intersect(b).Len())
}

func TestSet_Join(t *testing.T) {
	s := NewSet("KRAS", "BRCA1", "TP53")
	assert.Equal(t, "BRCA1,KRAS,TP53", s.Join(","))
}

func TestNewCollection_SortsByDescendingSize(t *testing.T) {
	c, err := NewCollection("OV", []Module{
		{Number: 0, Genes: NewSet("A", "B")},
		{Number: 1, Genes: NewSet("C", "D", "E", "F")},
		{Number: 2, Genes: NewSet("G", "H", "I")},
	})
	require.NoError(t, err)

	assert.Equal(t, "OV", c.Cohort)
	assert.Equal(t, []int{1, 2, 0}, c.Numbers())
}

func TestNewCollection_TiesByModuleNumber(t *testing.T) {
	c, err := NewCollection("OV", []Module{
		{Number: 5, Genes: NewSet("A", "B")},
		{Number: 1, Genes: NewSet("C", "D")},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 5}, c.Numbers())
}

func TestNewCollection_DropsEmptyModules(t *testing.T) {
	c, err := NewCollection("OV", []Module{
		{Number: 0, Genes: NewSet("A")},
		{Number: 1, Genes: NewSet()},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []int{0}, c.Numbers())
}

func TestNewCollection_RejectsDuplicateNumbers(t *testing.T) {
	_, err := NewCollection("OV", []Module{
		{Number: 0, Genes: NewSet("A")},
		{Number: 0, Genes: NewSet("B")},
	})
	assert.ErrorContains(t, err, "duplicate module number")
}

func TestCollection_Limit(t *testing.T) {
	c, err := NewCollection("OV", []Module{
		{Number: 0, Genes: NewSet("A", "B", "C")},
		{Number: 1, Genes: NewSet("D", "E")},
		{Number: 2, Genes: NewSet("F")},
	})
	require.NoError(t, err)

	limited := c.Limit(2)
	assert.Equal(t, []int{0, 1}, limited.Numbers(), "Limit keeps the largest modules")
	assert.Equal(t, 3, c.Len(), "Limit must not modify the source collection")

	assert.Equal(t, 3, c.Limit(10).Len())
}

func TestCollection_FilterMinSize(t *testing.T) {
	c, err := NewCollection("OV", []Module{
		{Number: 0, Genes: NewSet("A", "B", "C")},
		{Number: 1, Genes: NewSet("D", "E")},
		{Number: 2, Genes: NewSet("F")},
	})
	require.NoError(t, err)

	filtered := c.FilterMinSize(2)
	assert.Equal(t, []int{0, 1}, filtered.Numbers())
}

func TestCollection_Module(t *testing.T) {
	c, err := NewCollection("OV", []Module{
		{Number: 3, Genes: NewSet("A")},
	})
	require.NoError(t, err)

	m, ok := c.Module(3)
	require.True(t, ok)
	assert.True(t, m.Genes.Contains("A"))

	_, ok = c.Module(4)
	assert.False(t, ok)
}

package ingest

import (
	"testing"

	"github.com/paragraf-app/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedPairsByPosition(t *testing.T) {
	units := Seed("p1", []string{"A", "B", "C"}, []string{"a", "b"})
	require.Len(t, units, 3)

	assert.Equal(t, 0, units[0].Seq)
	assert.Equal(t, "A", units[0].Original)
	assert.Equal(t, "a", units[0].Translation)
	assert.Equal(t, models.UnitApproved, units[0].Status)

	assert.Equal(t, "b", units[1].Translation)
	assert.Equal(t, models.UnitApproved, units[1].Status)

	assert.Equal(t, 2, units[2].Seq)
	assert.Empty(t, units[2].Translation)
	assert.Equal(t, models.UnitPending, units[2].Status)
}

func TestSeedWithoutPartials(t *testing.T) {
	units := Seed("p1", []string{"A", "B"}, nil)
	for _, u := range units {
		assert.Equal(t, models.UnitPending, u.Status)
		assert.Empty(t, u.Translation)
	}
}

func TestSeedBlankPartialStaysPending(t *testing.T) {
	units := Seed("p1", []string{"A", "B"}, []string{"   ", "b"})
	assert.Equal(t, models.UnitPending, units[0].Status)
	assert.Empty(t, units[0].Translation)
	assert.Equal(t, models.UnitApproved, units[1].Status)
}

func TestSeedDiscardsSurplusPartials(t *testing.T) {
	units := Seed("p1", []string{"A"}, []string{"a", "b", "c"})
	require.Len(t, units, 1)
	assert.Equal(t, "a", units[0].Translation)
}

func TestSeedSeqContiguousFromZero(t *testing.T) {
	units := Seed("p1", []string{"A", "B", "C", "D"}, nil)
	for i, u := range units {
		assert.Equal(t, i, u.Seq)
		assert.Equal(t, "p1", u.ProjectID)
	}
}

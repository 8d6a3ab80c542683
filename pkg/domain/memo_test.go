package domain_test

import (
	"testing"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestDeadEndMemo_AddContains(t *testing.T) {
	memo := domain.NewDeadEndMemo()
	p := domain.Path{"Food", "Drinks"}

	assert.False(t, memo.Contains(p))
	assert.True(t, memo.Add(p))
	assert.False(t, memo.Add(p), "second add of the same key is not new")
	assert.True(t, memo.Contains(domain.Path{"Food", "Drinks"}))
	assert.Equal(t, 1, memo.Len())
}

func TestDeadEndMemo_Candidates(t *testing.T) {
	memo := domain.NewDeadEndMemo()
	memo.Add(domain.Path{"Food", "Drinks"})
	// Same child name under another root must not be filtered.
	memo.Add(domain.Path{"Toys", "Snacks"})

	children := []domain.ChildRef{{Name: "Snacks", Ordinal: 0}, {Name: "Drinks", Ordinal: 1}}
	got := memo.Candidates(domain.Path{"Food"}, children)

	assert.Equal(t, []domain.ChildRef{{Name: "Snacks", Ordinal: 0}}, got)
}

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntakeState_PendingNeverNegative(t *testing.T) {
	s := NewIntakeState()
	s.Decrement()
	assert.Equal(t, 0, s.PendingCount())

	s.Recount(2)
	s.Decrement()
	s.Decrement()
	s.Decrement()
	assert.Equal(t, 0, s.PendingCount())

	s.Recount(-5)
	assert.Equal(t, 0, s.PendingCount())
}

func TestIntakeState_RefreshSeqIsMonotonic(t *testing.T) {
	s := NewIntakeState()
	assert.Equal(t, uint64(0), s.RefreshSeq())
	s.BumpRefresh()
	s.BumpRefresh()
	assert.Equal(t, uint64(2), s.RefreshSeq())

	s.Reset()
	assert.Equal(t, uint64(0), s.RefreshSeq())
	assert.Equal(t, 0, s.PendingCount())
}

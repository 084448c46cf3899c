package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	cases := []struct {
		in   string
		want Priority
		ok   bool
	}{
		{"P0", PriorityCritical, true},
		{"p0", PriorityCritical, true},
		{"critical", PriorityCritical, true},
		{"P1", PriorityNormal, true},
		{"normal", PriorityNormal, true},
		{"", PriorityNormal, true},
		{"  P2 ", PriorityLow, true},
		{"low", PriorityLow, true},
		{"urgent", "", false},
		{"P3", "", false},
	}
	for _, tc := range cases {
		got, ok := ParsePriority(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityCritical.Rank(), PriorityNormal.Rank())
	assert.Less(t, PriorityNormal.Rank(), PriorityLow.Rank())
	assert.Greater(t, Priority("bogus").Rank(), PriorityLow.Rank())
}

func TestBoardClone(t *testing.T) {
	now := time.Now().UTC()
	board := &Board{
		Columns: []Column{{Name: "Todo", SortBy: SortByCreated, SortOrder: SortAscending}},
		Tasks: []*Task{
			{ID: "t1", Title: "a", Column: "Todo", Priority: PriorityNormal, CreatedAt: now, UpdatedAt: now},
		},
	}

	clone := board.Clone()
	clone.Columns[0].Name = "Changed"
	clone.Tasks[0].Title = "mutated"

	assert.Equal(t, "Todo", board.Columns[0].Name)
	assert.Equal(t, "a", board.Tasks[0].Title)
}

func TestTaskUpdateEmpty(t *testing.T) {
	assert.True(t, TaskUpdate{}.Empty())

	title := "x"
	require.False(t, TaskUpdate{Title: &title}.Empty())
}

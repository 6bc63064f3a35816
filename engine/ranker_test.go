package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankTieBreakByPlayerID(t *testing.T) {
	entries := []Entry{
		{PlayerID: "bob", Username: "bob", XPTotal: 500},
		{PlayerID: "alice", Username: "alice", XPTotal: 500},
		{PlayerID: "carol", Username: "carol", XPTotal: 900},
	}

	for i := 0; i < 5; i++ {
		lb, err := Rank(entries, Filter{}, 1, "")
		require.NoError(t, err)
		require.Len(t, lb.Entries, 3)
		assert.Equal(t, "carol", lb.Entries[0].PlayerID)
		assert.Equal(t, "alice", lb.Entries[1].PlayerID)
		assert.Equal(t, "bob", lb.Entries[2].PlayerID)
		assert.Equal(t, []int{1, 2, 3}, []int{lb.Entries[0].Rank, lb.Entries[1].Rank, lb.Entries[2].Rank})
	}
}

func regionalEntries() []Entry {
	entries := make([]Entry, 0, 20)
	for i := 0; i < 20; i++ {
		region := "na"
		if i%4 == 0 {
			region = "eu"
		}
		entries = append(entries, Entry{
			PlayerID: fmt.Sprintf("p%02d", i),
			Username: fmt.Sprintf("player%02d", i),
			XPTotal:  10000 - i*100,
			Level:    20 - i/2,
			Region:   region,
		})
	}
	return entries
}

func TestRankAfterFilterRenumbers(t *testing.T) {
	entries := regionalEntries()

	global, err := Rank(entries, Filter{}, 1, "p16")
	require.NoError(t, err)
	assert.Equal(t, 17, global.CallerRank)

	lb, err := Rank(entries, Filter{Region: "eu"}, 1, "p16")
	require.NoError(t, err)
	require.Len(t, lb.Entries, 5)
	assert.Equal(t, 5, lb.TotalEntries)
	assert.Equal(t, 1, lb.TotalPages)
	for i, e := range lb.Entries {
		assert.Equal(t, i+1, e.Rank)
		assert.Equal(t, "eu", e.Region)
	}
	assert.Equal(t, "p00", lb.Entries[0].PlayerID)
	assert.Equal(t, "p16", lb.Entries[4].PlayerID)
	assert.Equal(t, 5, lb.CallerRank)
}

func TestRankSearchIsCaseInsensitiveAndComposes(t *testing.T) {
	entries := []Entry{
		{PlayerID: "1", Username: "Alice", Region: "eu", XPTotal: 10},
		{PlayerID: "2", Username: "MALICE", Region: "na", XPTotal: 20},
		{PlayerID: "3", Username: "bob", Region: "eu", XPTotal: 30},
		{PlayerID: "4", Username: "alicia", Region: "eu", XPTotal: 40},
	}

	lb, err := Rank(entries, Filter{Search: "ALI"}, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 3, lb.TotalEntries)

	lb, err = Rank(entries, Filter{Search: "ali", Region: "eu"}, 1, "")
	require.NoError(t, err)
	require.Len(t, lb.Entries, 2)
	assert.Equal(t, "4", lb.Entries[0].PlayerID)
	assert.Equal(t, "1", lb.Entries[1].PlayerID)
}

func TestRankPagination(t *testing.T) {
	entries := make([]Entry, 25)
	for i := range entries {
		entries[i] = Entry{PlayerID: fmt.Sprintf("id-%02d", i), XPTotal: 1000 - i}
	}

	lb, err := Rank(entries, Filter{}, 3, "id-03")
	require.NoError(t, err)
	assert.Equal(t, 3, lb.TotalPages)
	require.Len(t, lb.Entries, 5)
	assert.Equal(t, 21, lb.Entries[0].Rank)
	assert.Equal(t, 25, lb.Entries[4].Rank)
	// caller is on page 1 but still located
	assert.Equal(t, 4, lb.CallerRank)
	require.NotNil(t, lb.CallerEntry)
	assert.Equal(t, "id-03", lb.CallerEntry.PlayerID)

	lb, err = Rank(entries, Filter{}, 4, "")
	require.NoError(t, err)
	assert.Empty(t, lb.Entries)
	assert.NotNil(t, lb.Entries)
}

func TestRankRejectsPageBelowOne(t *testing.T) {
	_, err := Rank(nil, Filter{}, 0, "")
	assert.True(t, IsInvalidArgument(err))
}

func TestRankCallerAbsent(t *testing.T) {
	lb, err := Rank(regionalEntries(), Filter{Region: "eu"}, 1, "p01")
	require.NoError(t, err)
	assert.Zero(t, lb.CallerRank)
	assert.Nil(t, lb.CallerEntry)
	assert.Equal(t, 0, LocatePlayer(regionalEntries(), Filter{Region: "eu"}, "p01"))
	assert.Equal(t, 2, LocatePlayer(regionalEntries(), Filter{}, "p01"))
}

func TestRankDoesNotMutateInput(t *testing.T) {
	entries := []Entry{
		{PlayerID: "z", XPTotal: 1},
		{PlayerID: "a", XPTotal: 2, Badges: []string{"FIRST_CLEAR"}},
	}
	lb, err := Rank(entries, Filter{}, 1, "")
	require.NoError(t, err)
	lb.Entries[0].Badges[0] = "changed"

	assert.Equal(t, "z", entries[0].PlayerID)
	assert.Zero(t, entries[0].Rank)
	assert.Equal(t, "FIRST_CLEAR", entries[1].Badges[0])
}

func TestRankFillsTitle(t *testing.T) {
	lb, err := Rank([]Entry{{PlayerID: "x", Level: 12}}, Filter{}, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "Senior DBA", lb.Entries[0].Title)
}

package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay_GroupsByKey(t *testing.T) {
	agg := storeOf(AggregateName,
		Record{Time: 1, Value: 10, Group: "X"},
		Record{Time: 2, Value: 20, Group: "Y"},
		Record{Time: 3, Value: 30, Group: "X"},
	)

	idx := Replay(agg)

	require.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"X", "Y"}, idx.Names())

	x, ok := idx.Store("X")
	require.True(t, ok)
	assert.Equal(t, "X", x.Name())
	assert.Equal(t, []Record{{Time: 1, Value: 10, Group: "X"}, {Time: 3, Value: 30, Group: "X"}}, x.Records())

	y, ok := idx.Store("Y")
	require.True(t, ok)
	assert.Equal(t, []Record{{Time: 2, Value: 20, Group: "Y"}}, y.Records())

	_, ok = idx.Store("Z")
	assert.False(t, ok)
}

func TestReplay_KeepsRecordsMergedAway(t *testing.T) {
	agg := storeOf(AggregateName,
		Record{Time: 1, Value: 1, Group: "A"},
		Record{Time: 1, Value: 2, Group: "B"},
		Record{Time: 2, Value: 3, Group: "A"},
	)

	idx := Replay(agg)
	_, err := agg.MergeSameTimestamp()
	require.NoError(t, err)

	assert.Equal(t, 2, agg.Len())
	b, _ := idx.Store("B")
	assert.Equal(t, 1, b.Len())
	a, _ := idx.Store("A")
	assert.Equal(t, 2, a.Len())
}

func TestIndex_SortAll(t *testing.T) {
	agg := storeOf(AggregateName,
		Record{Time: 9, Value: 1, Group: "X"},
		Record{Time: 2, Value: 2, Group: "Y"},
		Record{Time: 3, Value: 3, Group: "X"},
	)
	idx := Replay(agg)
	x, _ := idx.Store("X")
	require.False(t, x.Sorted())

	idx.SortAll()

	for _, s := range idx.Stores() {
		assert.True(t, s.Sorted(), s.Name())
	}
	assert.Equal(t, int64(3), x.Records()[0].Time)
}

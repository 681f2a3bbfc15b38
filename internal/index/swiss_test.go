package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSwissSetGetDel(t *testing.T) {
	var idx Index = NewSwiss(4)

	_, ok := idx.Get(24)
	require.False(t, ok)

	idx.Set(24, Entry{Block: 0, Size: 400})
	idx.Set(448, Entry{Block: 424, Size: 4})
	require.Equal(t, 2, idx.Len())

	e, ok := idx.Get(448)
	require.True(t, ok)
	require.Equal(t, Entry{Block: 424, Size: 4}, e)

	idx.Del(24)
	_, ok = idx.Get(24)
	require.False(t, ok)
	require.Equal(t, 1, idx.Len())
}

func TestSwissGrowsPastHint(t *testing.T) {
	idx := NewSwiss(1)
	for i := uint64(1); i <= 1000; i++ {
		idx.Set(i*32, Entry{Block: i*32 - 24, Size: 8})
	}
	require.Equal(t, 1000, idx.Len())
	e, ok := idx.Get(500 * 32)
	require.True(t, ok)
	require.Equal(t, uint64(500*32-24), e.Block)
}

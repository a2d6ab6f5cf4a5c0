package expreplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// episode returns a finalized episode of length n whose state and
// action features all equal id
func episode(t *testing.T, id float64, n int) *Episode {
	t.Helper()
	e := NewEpisode(2, 1)
	for i := 0; i < n; i++ {
		require.NoError(t, e.Add(transition([]float64{id, id}, []float64{id},
			1)))
	}
	require.NoError(t, e.Finalize(0.85))
	return e
}

func TestMemoryAligned(t *testing.T) {
	m, err := NewMemory(2, 1, 100)
	require.NoError(t, err)

	require.NoError(t, m.Flush(episode(t, 1, 3)))
	require.NoError(t, m.Flush(episode(t, 2, 4)))

	sa, s, a, r, err := m.Data()
	require.NoError(t, err)

	for _, rows := range []int{sa.RawMatrix().Rows, s.RawMatrix().Rows,
		a.RawMatrix().Rows, r.RawMatrix().Rows} {
		assert.Equal(t, 7, rows)
	}
	_, c := sa.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, []float64{1, 1, 1}, sa.RawRowView(0))
	assert.Equal(t, []float64{2, 2}, s.RawRowView(3))
	assert.Equal(t, []float64{2}, a.RawRowView(6))
	assert.InDelta(t, 2.5725, r.At(0, 0), 1e-12)
	assert.Equal(t, 1.0, r.At(6, 0))

	assert.Equal(t, 2, m.Episodes())
	assert.Equal(t, []int{3, 4}, m.EpisodeLens())
}

func TestMemoryEvictsOldestEpisode(t *testing.T) {
	m, err := NewMemory(2, 1, 6)
	require.NoError(t, err)

	require.NoError(t, m.Flush(episode(t, 1, 2)))
	require.NoError(t, m.Flush(episode(t, 2, 3)))
	assert.Equal(t, 5, m.Len())

	// 5 + 2 >= 6, the oldest episode is evicted whole
	require.NoError(t, m.Flush(episode(t, 3, 2)))
	assert.Equal(t, 5, m.Len())
	assert.Equal(t, []int{3, 2}, m.EpisodeLens())

	sa, s, a, r, err := m.Data()
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, sa.RawRowView(0))
	assert.Equal(t, []float64{3, 3}, s.RawRowView(3))
	assert.Equal(t, []float64{2}, a.RawRowView(2))
	rows, _ := r.Dims()
	assert.Equal(t, 5, rows)
}

func TestMemoryEvictsAtExactBound(t *testing.T) {
	m, err := NewMemory(2, 1, 4)
	require.NoError(t, err)

	require.NoError(t, m.Flush(episode(t, 1, 2)))
	require.NoError(t, m.Flush(episode(t, 2, 2)))
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []int{2}, m.EpisodeLens())
}

func TestMemoryRejectsUnfinalized(t *testing.T) {
	m, err := NewMemory(2, 1, 10)
	require.NoError(t, err)

	e := NewEpisode(2, 1)
	require.NoError(t, e.Add(transition([]float64{0, 0}, []float64{0}, 1)))

	err = m.Flush(e)
	assert.True(t, IsNotFinalized(err))
	assert.Equal(t, 0, m.Len())
}

func TestMemoryRejectsShape(t *testing.T) {
	m, err := NewMemory(3, 1, 10)
	require.NoError(t, err)

	err = m.Flush(episode(t, 1, 2))
	assert.True(t, IsShape(err))
}

func TestMemoryEmpty(t *testing.T) {
	m, err := NewMemory(2, 1, 10)
	require.NoError(t, err)

	_, _, _, _, err = m.Data()
	assert.True(t, IsEmptyMemory(err))

	_, err = NewMemory(2, 1, 0)
	assert.Error(t, err)
}

func TestMemoryStaysBounded(t *testing.T) {
	m, err := NewMemory(2, 1, 10)
	require.NoError(t, err)

	for i := 0; i < 9; i++ {
		require.NoError(t, m.Flush(episode(t, float64(i), 1)))
	}
	assert.Equal(t, 9, m.Len())

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Flush(episode(t, 10+float64(i), 8)))
		assert.Less(t, m.Len(), m.MaxLen())
		assert.Equal(t, []int{8}, m.EpisodeLens())
	}

	sa, _, _, _, err := m.Data()
	require.NoError(t, err)
	assert.Equal(t, []float64{14, 14, 14}, sa.RawRowView(0))
}

func TestMemoryUnevenEpisodes(t *testing.T) {
	m, err := NewMemory(2, 1, 12)
	require.NoError(t, err)

	lens := []int{1, 2, 1, 5, 3, 7, 1, 4, 6, 2}
	for i, n := range lens {
		require.NoError(t, m.Flush(episode(t, float64(i), n)))
		assert.Less(t, m.Len(), m.MaxLen(), "after flush %v", i)

		sum := 0
		for _, l := range m.EpisodeLens() {
			sum += l
		}
		assert.Equal(t, m.Len(), sum)
	}
}

func TestMemoryKeepsOversizedEpisode(t *testing.T) {
	m, err := NewMemory(2, 1, 4)
	require.NoError(t, err)

	require.NoError(t, m.Flush(episode(t, 1, 2)))
	require.NoError(t, m.Flush(episode(t, 2, 6)))
	assert.Equal(t, 6, m.Len())
	assert.Equal(t, []int{6}, m.EpisodeLens())

	require.NoError(t, m.Flush(episode(t, 3, 1)))
	assert.Equal(t, []int{1}, m.EpisodeLens())
}

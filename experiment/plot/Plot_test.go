package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	mean, std := Summary(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)

	mean, std = Summary([]float64{4})
	assert.Equal(t, 4.0, mean)
	assert.Zero(t, std)

	mean, std = Summary([]float64{2, 4, 6})
	assert.InDelta(t, 4.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"": None, "PNG": PNG, "html": HTML} {
		k, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, k)
	}

	_, err := ParseKind("svg")
	assert.Error(t, err)
}

func TestEpisodeLengths(t *testing.T) {
	dir := t.TempDir()
	lengths := []float64{10, 8, 12, 5, 3}

	for _, kind := range []Kind{PNG, HTML} {
		path := filepath.Join(dir, "lengths."+string(kind))
		require.NoError(t, EpisodeLengths(kind, path, lengths))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	path := filepath.Join(dir, "none")
	require.NoError(t, EpisodeLengths(None, path, lengths))
	assert.NoFileExists(t, path)

	assert.Error(t, EpisodeLengths(Kind("svg"), path, lengths))
}

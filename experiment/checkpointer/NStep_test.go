package checkpointer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNStep(t *testing.T) {
	var saved []int
	episode := 0
	c, err := NewNStep(20, 50, Func(func() error {
		saved = append(saved, episode)
		return nil
	}))
	require.NoError(t, err)

	for episode = 0; episode <= 120; episode++ {
		require.NoError(t, c.Checkpoint(episode))
	}
	assert.Equal(t, []int{60, 80, 100, 120}, saved)
}

func TestNStepError(t *testing.T) {
	want := errors.New("disk full")
	c, err := NewNStep(5, 0, Func(func() error { return want }))
	require.NoError(t, err)

	assert.NoError(t, c.Checkpoint(3))
	assert.ErrorIs(t, c.Checkpoint(5), want)

	_, err = NewNStep(0, 0, Func(func() error { return nil }))
	assert.Error(t, err)
}

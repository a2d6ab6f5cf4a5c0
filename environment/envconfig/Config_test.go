package envconfig

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/robotac/environment/obstacle"
)

func TestDefaultCreates(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	e, first, err := c.Create(1)
	require.NoError(t, err)
	assert.True(t, first.First())
	assert.Equal(t, obstacle.ObservationDims, e.ObservationSpec().Len())
	assert.Equal(t, obstacle.ActionDims, e.RandomAction().Len())
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(Default())
	require.NoError(t, err)

	var c Config
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, Default(), c)
}

func TestStartJitter(t *testing.T) {
	c := Default()
	c.StartJitter = 0.5

	e, first, err := c.Create(3)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		tip := first.Observation.RawVector().Data[14:17]
		for j, p := range c.Initial.Position {
			assert.InDelta(t, p, tip[j], 0.5+1e-3)
		}
		first = e.Reset()
	}
}

func TestIndependentStreams(t *testing.T) {
	c := Default()
	c.StartJitter = 0.5

	e, first, err := c.Create(7)
	require.NoError(t, err)

	tip := first.Observation.RawVector().Data[14:17]
	action := e.RandomAction().RawVector().Data

	// With a shared seed both draws would come from the same uniform
	// variates
	diff := 0.0
	for i, p := range c.Initial.Position {
		start := (tip[i] - (p - c.StartJitter)) / (2 * c.StartJitter)
		step := (action[i] + c.MaxJointStep) / (2 * c.MaxJointStep)
		diff = math.Max(diff, math.Abs(start-step))
	}
	assert.Greater(t, diff, 1e-3)
}

func TestInvalid(t *testing.T) {
	c := Default()
	c.Obstacles[0].Size = [3]float64{0, 1, 1}
	assert.Error(t, c.Validate())

	c = Default()
	c.CutOff = 0
	_, _, err := c.Create(1)
	assert.Error(t, err)

	c = Default()
	c.StartJitter = -1
	assert.Error(t, c.Validate())
}

package solver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	adam, err := NewDefaultAdam(0.01, 1)
	require.NoError(t, err)

	data, err := json.Marshal(adam)
	require.NoError(t, err)

	var decoded Solver
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Adam, decoded.Type)
	assert.Equal(t, adam.Config, decoded.Config)
	assert.NotNil(t, decoded.Solver)
	assert.NotNil(t, decoded.Fresh())
}

func TestUnmarshalEachType(t *testing.T) {
	cases := map[string]Config{
		`{"Type": "Vanilla", "Config": {"StepSize": 0.1, "Batch": 1}}`: VanillaConfig{StepSize: 0.1, Batch: 1},
		`{"Type": "RMSProp", "Config": {"StepSize": 0.1, "Epsilon": 1e-8, "Rho": 0.9, "Batch": 1}}`: RMSPropConfig{StepSize: 0.1, Epsilon: 1e-8, Rho: 0.9, Batch: 1},
	}

	for data, want := range cases {
		var s Solver
		require.NoError(t, json.Unmarshal([]byte(data), &s))
		assert.Equal(t, want, s.Config)
	}

	var s Solver
	assert.Error(t, json.Unmarshal([]byte(`{"Type": "SGD"}`), &s))
	assert.Error(t, json.Unmarshal(
		[]byte(`{"Type": "Vanilla", "Config": {"StepSize": 0.1}}`), &s))
}

func TestInvalid(t *testing.T) {
	_, err := newSolver(Adam, VanillaConfig{})
	assert.Error(t, err)

	_, err = NewRMSProp(0.1, 1e-8, 1.5, 1, 0)
	assert.Error(t, err)

	_, err = NewAdam(0.01, 1e-8, 0.9, 1.0, 1)
	assert.Error(t, err)

	_, err = NewDefaultAdam(0, 1)
	assert.Error(t, err)

	_, err = NewVanilla(0.1, 0, 0)
	assert.Error(t, err)

	_, err = NewVanilla(0.1, 1, 5)
	assert.NoError(t, err)
}

// Package solver implements functionality to wrap Gorgonia Solvers
// so that they can be JSON serialized into configuration files.
package solver

import (
	"encoding/json"
	"fmt"
	"reflect"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
	RMSProp Type = "RMSProp"
)

var configTypes = map[string]reflect.Type{
	string(Vanilla): reflect.TypeOf(VanillaConfig{}),
	string(Adam):    reflect.TypeOf(AdamConfig{}),
	string(RMSProp): reflect.TypeOf(RMSPropConfig{}),
}

// Solver wraps Gorgonia Solvers so that they can be JSON marshalled and
// unmarshalled.
type Solver struct {
	G.Solver `json:"-"`
	Type
	Config
}

// newSolver returns a new solver with the given type and configuration.
func newSolver(t Type, c Config) (*Solver, error) {
	if !c.ValidType(t) {
		return nil, fmt.Errorf("newSolver: invalid solver type %v for "+
			"configuration %T", t, c)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newSolver: %w", err)
	}
	solver := Solver{Type: t, Config: c}
	solver.Solver = solver.Config.Create()

	return &solver, nil
}

// Fresh returns a new Gorgonia Solver described by the configuration,
// with no accumulated state. Each model trained should use its own
// Solver, since Gorgonia Solvers cache per-parameter statistics.
func (s *Solver) Fresh() G.Solver {
	return s.Config.Create()
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(data, "Type", "Config",
		configTypes)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("unmarshalJSON: %v: %w", typeName, err)
	}

	s.Type = typeName
	s.Config = config
	s.Solver = s.Config.Create()

	return nil
}

// unmarshalConfig uses reflection to unmarshall a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJsonField, valueJsonField string,
	customTypes map[string]reflect.Type) (Config, Type, error) {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	var typeName string
	if err := json.Unmarshal(m[typeJsonField], &typeName); err != nil {
		return nil, "", fmt.Errorf("could not read solver type: %w", err)
	}

	ty, found := customTypes[typeName]
	if !found {
		return nil, "", fmt.Errorf("unknown solver type %q", typeName)
	}

	value := reflect.New(ty)
	if err := json.Unmarshal(m[valueJsonField], value.Interface()); err != nil {
		return nil, "", err
	}

	return value.Elem().Interface().(Config), Type(typeName), nil
}

// Config implements a Gorgonia Solver configuration and can be used to
// create Gorgonia Solvers they describe.
type Config interface {
	Create() G.Solver
	Validate() error

	// ValidType returns whether a specific Solver type can be created
	// with the Config
	ValidType(Type) bool
}

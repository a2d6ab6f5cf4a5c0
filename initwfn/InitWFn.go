// Package initwfn implements seeded weight initializers for Gorgonia
// nodes. Each initializer is described by a JSON serializable Config so
// that it can be stored in configuration files.
package initwfn

import (
	"encoding/json"
	"fmt"
	"reflect"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Type describes different types of InitWFn that are available.
// Type is used to implement a basic type system of InitWFn's.
type Type string

// Available InitWFn types
const (
	GlorotU  Type = "GlorotU"
	GlorotN  Type = "GlorotN"
	HeU      Type = "HeU"
	HeN      Type = "HeN"
	Zeroes   Type = "Zeroes"
	Ones     Type = "Ones"
	Constant Type = "Constant"
	Uniform  Type = "Uniform"
	Gaussian Type = "Gaussian"
)

var configTypes = map[string]reflect.Type{
	string(GlorotU):  reflect.TypeOf(GlorotUConfig{}),
	string(GlorotN):  reflect.TypeOf(GlorotNConfig{}),
	string(HeU):      reflect.TypeOf(HeUConfig{}),
	string(HeN):      reflect.TypeOf(HeNConfig{}),
	string(Zeroes):   reflect.TypeOf(ZeroesConfig{}),
	string(Ones):     reflect.TypeOf(OnesConfig{}),
	string(Constant): reflect.TypeOf(ConstantConfig{}),
	string(Uniform):  reflect.TypeOf(UniformConfig{}),
	string(Gaussian): reflect.TypeOf(GaussianConfig{}),
}

// Config implements a weight initializer configuration and can be used
// to create the Gorgonia InitWFn it describes.
type Config interface {
	// Create returns the Gorgonia InitWFn that the Config describes,
	// drawing any random weights from src
	Create(src rand.Source) G.InitWFn

	// Type returns the type of Gorgonia InitWFn that is returned
	Type() Type
}

// InitWFn wraps weight initializer configurations so that they can be
// JSON marshalled and unmarshalled.
type InitWFn struct {
	Type
	Config
}

// newInitWFn returns a new InitWFn
func newInitWFn(c Config) (*InitWFn, error) {
	return &InitWFn{Type: c.Type(), Config: c}, nil
}

// InitWFn returns the Gorgonia InitWFn described by the configuration,
// seeded with seed
func (i *InitWFn) InitWFn(seed uint64) G.InitWFn {
	return i.Config.Create(rand.NewSource(seed))
}

// String implements the fmt.Stringer interface
func (i *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", i.Type, i.Config)
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (i *InitWFn) UnmarshalJSON(data []byte) error {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	var typeName string
	if err := json.Unmarshal(m["Type"], &typeName); err != nil {
		return fmt.Errorf("unmarshalJSON: could not read type: %w", err)
	}

	ty, found := configTypes[typeName]
	if !found {
		return fmt.Errorf("unmarshalJSON: unknown initializer type %q",
			typeName)
	}

	value := reflect.New(ty)
	if raw, ok := m["Config"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, value.Interface()); err != nil {
			return fmt.Errorf("unmarshalJSON: %w", err)
		}
	}

	i.Type = Type(typeName)
	i.Config = value.Elem().Interface().(Config)
	return nil
}

// fans returns the fan in and fan out of a node of the given shape.
// For matrices these are the number of rows and columns.
func fans(shape ...int) (float64, float64) {
	if len(shape) == 2 {
		return float64(shape[0]), float64(shape[1])
	}
	n := 1
	for _, s := range shape {
		n *= s
	}
	return float64(n), float64(n)
}

// fill returns the backing data of a node of the given dtype and shape
// with each value drawn from sample
func fill(dt tensor.Dtype, shape []int, sample func() float64) interface{} {
	n := 1
	for _, s := range shape {
		n *= s
	}

	switch dt {
	case tensor.Float64:
		data := make([]float64, n)
		for i := range data {
			data[i] = sample()
		}
		return data

	case tensor.Float32:
		data := make([]float32, n)
		for i := range data {
			data[i] = float32(sample())
		}
		return data
	}

	panic(fmt.Sprintf("fill: unsupported dtype %v", dt))
}

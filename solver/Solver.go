// Package solver implements functionality to wrap Gorgonia Solvers
// so that they can be JSON serialized into configuration files. Solvers
// update the learnables of encoders that were added to an external
// graph with Fwd.
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
	RMSProp Type = "RMSProp"
	Vanilla Type = "Vanilla"
)

// defaultConfigs returns the default configuration of each solver
// Type. Configs are unmarshalled on top of these defaults.
var defaultConfigs = map[Type]func() Config{
	Adam:    func() Config { return DefaultAdamConfig() },
	RMSProp: func() Config { return DefaultRMSPropConfig() },
	Vanilla: func() Config { return VanillaConfig{StepSize: 0.01, Batch: 1} },
}

// Config implements a Gorgonia Solver configuration and can be used to
// create the Gorgonia Solvers it describes.
type Config interface {
	// Create returns the Gorgonia Solver described by the Config
	Create() G.Solver

	// Type returns the type of Solver described by the Config
	Type() Type

	// Validate returns an error if the Config is invalid
	Validate() error
}

// Solver wraps Gorgonia Solvers so that they can be JSON marshalled and
// unmarshalled.
type Solver struct {
	G.Solver `json:"-"`
	Type
	Config
}

// New returns a new Solver described by c
func New(c Config) (*Solver, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	return &Solver{Solver: c.Create(), Type: c.Type(), Config: c}, nil
}

// Update takes a single step of the solver for each learnable node,
// using the gradients stored in the nodes' dual values
func (s *Solver) Update(learnables G.Nodes) error {
	if len(learnables) == 0 {
		return nil
	}
	if err := s.Solver.Step(G.NodesToValueGrads(learnables)); err != nil {
		return fmt.Errorf("update: %v", err)
	}
	return nil
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(data, "Type", "Config")
	if err != nil {
		return fmt.Errorf("unmarshaljson: %v", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("unmarshaljson: %v", err)
	}

	s.Type = typeName
	s.Config = config
	s.Solver = s.Config.Create()

	return nil
}

// unmarshalConfig uses reflection to unmarshall a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJsonField,
	valueJsonField string) (Config, Type, error) {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	var typeName Type
	if err := json.Unmarshal(m[typeJsonField], &typeName); err != nil {
		return nil, "", fmt.Errorf("could not decode type: %v", err)
	}

	defaults, found := defaultConfigs[typeName]
	if !found {
		return nil, "", fmt.Errorf("unknown solver type %q", typeName)
	}
	def := defaults()
	value := reflect.New(reflect.TypeOf(def))
	value.Elem().Set(reflect.ValueOf(def))

	if raw, ok := m[valueJsonField]; ok {
		if err := json.Unmarshal(raw, value.Interface()); err != nil {
			return nil, "", err
		}
	}

	return value.Elem().Interface().(Config), typeName, nil
}

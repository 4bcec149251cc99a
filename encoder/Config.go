package encoder

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mariuslindegaard/curiosity-baselines/network"
)

// Type describes a type of encoder. Type is used to implement a basic
// type system of encoder Configs.
type Type string

// Available encoder types
const (
	Universe Type = "Universe"
	ART      Type = "ART"
	Maze     Type = "Maze"
	Burda    Type = "Burda"
)

// Config describes an encoder and can be used to create it
type Config interface {
	// Create returns the encoder that the Config describes
	Create() (Encoder, error)

	// Type returns the type of encoder described by the Config
	Type() Type

	// Validate returns an error describing whether or not the
	// configuration is valid
	Validate() error
}

// defaultConfigs returns the default configuration of each encoder
// Type. Configs are unmarshalled on top of these defaults, so fields
// missing from the JSON keep their default values.
var defaultConfigs = map[Type]func() Config{
	Universe: func() Config { return UniverseConfig{} },
	ART:      func() Config { return NewARTConfig(network.ImageShape{}, 0) },
	Maze:     func() Config { return NewMazeConfig(network.ImageShape{}) },
	Burda:    func() Config { return NewBurdaConfig(network.ImageShape{}) },
}

// TypedConfig wraps a Config so that it can be JSON marshalled and
// unmarshalled into its underlying concrete type
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig returns a new TypedConfig wrapping c
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(data, "Type", "Config")
	if err != nil {
		return fmt.Errorf("unmarshaljson: %w", err)
	}

	t.Type = typeName
	t.Config = config

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
		return nil, "", fmt.Errorf("unknown encoder type %q", typeName)
	}
	def := defaults()
	value := reflect.New(reflect.TypeOf(def))
	value.Elem().Set(reflect.ValueOf(def))

	if raw, ok := m[valueJsonField]; ok {
		if err := json.Unmarshal(raw, value.Interface()); err != nil {
			return nil, "", err
		}
	}
	concreteValue := value.Elem().Interface().(Config)

	return concreteValue, typeName, nil
}

// Create creates the encoder described by the wrapped Config
func (t TypedConfig) Create() (Encoder, error) {
	if t.Config == nil {
		return nil, fmt.Errorf("create: no config for encoder type %q",
			t.Type)
	}
	return t.Config.Create()
}

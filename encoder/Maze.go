package encoder

import (
	"fmt"

	"github.com/mariuslindegaard/curiosity-baselines/initwfn"
	"github.com/mariuslindegaard/curiosity-baselines/network"
)

// DefaultMazeOutputSize is the default number of features output by a
// MazeHead
const DefaultMazeOutputSize = 256

const mazeChannels = 16

// MazeConfig describes a MazeHead
type MazeConfig struct {
	ImageShape network.ImageShape
	OutputSize int

	// ConvOutputSize is the number of features after flattening the
	// convolutions. If 0, it is computed from ImageShape. Otherwise it
	// must equal the computed size.
	ConvOutputSize int

	// Init initializes the convolution filters and linear weights.
	// If nil, filters are He uniform and linear weights Glorot uniform.
	Init *initwfn.InitWFn
}

// NewMazeConfig returns a config of a MazeHead with default
// hyperparameters
func NewMazeConfig(shape network.ImageShape) MazeConfig {
	return MazeConfig{ImageShape: shape, OutputSize: DefaultMazeOutputSize}
}

// Type returns the type of encoder described by the config
func (m MazeConfig) Type() Type { return Maze }

// Validate checks the config for errors
func (m MazeConfig) Validate() error {
	if err := m.ImageShape.Validate(); err != nil {
		return err
	}
	if m.OutputSize <= 0 {
		return fmt.Errorf("%w: output size must be positive, got %v",
			network.ErrInvalidConfig, m.OutputSize)
	}
	if m.ConvOutputSize < 0 {
		return fmt.Errorf("%w: convolution output size cannot be "+
			"negative, got %v", network.ErrInvalidConfig, m.ConvOutputSize)
	}
	return nil
}

// Create returns the MazeHead described by the config
func (m MazeConfig) Create() (Encoder, error) {
	return NewMazeHead(m)
}

// MazeHead is the feature encoder used for small maze observations:
//
//	Conv2D(16, k3, s1, p1) -> ReLU -> Conv2D(16, k3, s2, p2) -> ReLU ->
//	Flatten -> Linear -> ReLU
type MazeHead struct {
	*head
	convOutputSize int
}

// NewMazeHead returns a new MazeHead
func NewMazeHead(c MazeConfig) (*MazeHead, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newmazehead: %w", err)
	}

	conv := c.Init.Or(initwfn.DefaultConv())
	b := network.NewBuilder(c.ImageShape).
		Conv2D(mazeChannels, network.Square(3), network.Square(1),
			network.Square(1), conv).
		Activation(network.ReLU()).
		Conv2D(mazeChannels, network.Square(3), network.Square(2),
			network.Square(2), conv).
		Activation(network.ReLU()).
		Flatten()

	convOutputSize, err := checkConvOutputSize(b, c.ConvOutputSize)
	if err != nil {
		return nil, fmt.Errorf("newmazehead: %w", err)
	}

	b.Linear(c.OutputSize, c.Init.Or(initwfn.DefaultLinear())).
		Activation(network.ReLU())

	h, err := newHead("mazehead", b)
	if err != nil {
		return nil, fmt.Errorf("newmazehead: %w", err)
	}

	return &MazeHead{head: h, convOutputSize: convOutputSize}, nil
}

// ConvOutputSize returns the number of features output by the
// convolutional layers
func (m *MazeHead) ConvOutputSize() int {
	return m.convOutputSize
}

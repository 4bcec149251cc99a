package encoder

import (
	"fmt"

	"github.com/mariuslindegaard/curiosity-baselines/initwfn"
	"github.com/mariuslindegaard/curiosity-baselines/network"
)

// DefaultBurdaOutputSize is the default number of features output by a
// BurdaHead
const DefaultBurdaOutputSize = 512

// BurdaConfig describes a BurdaHead
type BurdaConfig struct {
	ImageShape network.ImageShape
	OutputSize int

	// ConvOutputSize is the number of features after flattening the
	// convolutions. If 0, it is computed from ImageShape. Otherwise it
	// must equal the computed size, e.g. 3136 for 84x84 images.
	ConvOutputSize int
	BatchNorm      bool

	// Init initializes the convolution filters and linear weights.
	// If nil, filters are He uniform and linear weights Glorot uniform.
	Init *initwfn.InitWFn
}

// NewBurdaConfig returns a config of a BurdaHead with default
// hyperparameters
func NewBurdaConfig(shape network.ImageShape) BurdaConfig {
	return BurdaConfig{ImageShape: shape, OutputSize: DefaultBurdaOutputSize}
}

// Type returns the type of encoder described by the config
func (b BurdaConfig) Type() Type { return Burda }

// Validate checks the config for errors
func (b BurdaConfig) Validate() error {
	if err := b.ImageShape.Validate(); err != nil {
		return err
	}
	if b.OutputSize <= 0 {
		return fmt.Errorf("%w: output size must be positive, got %v",
			network.ErrInvalidConfig, b.OutputSize)
	}
	if b.ConvOutputSize < 0 {
		return fmt.Errorf("%w: convolution output size cannot be "+
			"negative, got %v", network.ErrInvalidConfig, b.ConvOutputSize)
	}
	return nil
}

// Create returns the BurdaHead described by the config
func (b BurdaConfig) Create() (Encoder, error) {
	return NewBurdaHead(b)
}

// BurdaHead is the feature encoder of large-scale curiosity agents,
// following the Atari DQN torso with leaky rectifiers:
//
//	Conv2D(32, k8, s4) -> LeakyReLU -> [BatchNorm] ->
//	Conv2D(64, k4, s2) -> LeakyReLU -> [BatchNorm] ->
//	Conv2D(64, k3, s1) -> LeakyReLU -> Flatten -> Linear
//
// Only the first two blocks are batch normalized.
type BurdaHead struct {
	*head
	convOutputSize int
	batchNorm      bool
}

// NewBurdaHead returns a new BurdaHead
func NewBurdaHead(c BurdaConfig) (*BurdaHead, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newburdahead: %w", err)
	}

	conv := c.Init.Or(initwfn.DefaultConv())
	zero := network.Square(0)
	b := network.NewBuilder(c.ImageShape)

	b.Conv2D(32, network.Square(8), network.Square(4), zero, conv).
		Activation(network.LeakyReLU(network.DefaultLeakyReLUSlope))
	if c.BatchNorm {
		b.BatchNorm()
	}

	b.Conv2D(64, network.Square(4), network.Square(2), zero, conv).
		Activation(network.LeakyReLU(network.DefaultLeakyReLUSlope))
	if c.BatchNorm {
		b.BatchNorm()
	}

	b.Conv2D(64, network.Square(3), network.Square(1), zero, conv).
		Activation(network.LeakyReLU(network.DefaultLeakyReLUSlope)).
		Flatten()

	convOutputSize, err := checkConvOutputSize(b, c.ConvOutputSize)
	if err != nil {
		return nil, fmt.Errorf("newburdahead: %w", err)
	}

	b.Linear(c.OutputSize, c.Init.Or(initwfn.DefaultLinear()))

	h, err := newHead("burdahead", b)
	if err != nil {
		return nil, fmt.Errorf("newburdahead: %w", err)
	}

	return &BurdaHead{
		head:           h,
		convOutputSize: convOutputSize,
		batchNorm:      c.BatchNorm,
	}, nil
}

// ConvOutputSize returns the number of features output by the
// convolutional layers
func (b *BurdaHead) ConvOutputSize() int {
	return b.convOutputSize
}

// BatchNorm returns whether the first two blocks are normalized
func (b *BurdaHead) BatchNorm() bool {
	return b.batchNorm
}

package encoder

import (
	"fmt"

	"github.com/mariuslindegaard/curiosity-baselines/initwfn"
	"github.com/mariuslindegaard/curiosity-baselines/network"
)

// Architecture of the Universe head
const (
	universeBlocks   = 5
	universeChannels = 32
)

// UniverseConfig describes a UniverseHead
type UniverseConfig struct {
	ImageShape network.ImageShape
	BatchNorm  bool

	// Init initializes convolution filters, He uniform if nil
	Init *initwfn.InitWFn
}

// Type returns the type of encoder described by the config
func (u UniverseConfig) Type() Type { return Universe }

// Validate checks the config for errors
func (u UniverseConfig) Validate() error {
	return u.ImageShape.Validate()
}

// Create returns the UniverseHead described by the config
func (u UniverseConfig) Create() (Encoder, error) {
	return NewUniverseHead(u)
}

// UniverseHead is the feature encoder of the Universe starter agent:
// five blocks of stride 2 convolutions with 32 filters, each followed
// by an ELU and, optionally, batch normalization. The output is
// flattened.
type UniverseHead struct {
	*head
	batchNorm bool
}

// NewUniverseHead returns a new UniverseHead
func NewUniverseHead(c UniverseConfig) (*UniverseHead, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newuniversehead: %w", err)
	}

	conv := c.Init.Or(initwfn.DefaultConv())
	b := network.NewBuilder(c.ImageShape)
	for i := 0; i < universeBlocks; i++ {
		b.Conv2D(universeChannels, network.Square(3), network.Square(2),
			network.Square(1), conv).
			Activation(network.ELU())

		if c.BatchNorm {
			b.BatchNorm()
		}
	}
	b.Flatten()

	h, err := newHead("universehead", b)
	if err != nil {
		return nil, fmt.Errorf("newuniversehead: %w", err)
	}

	return &UniverseHead{head: h, batchNorm: c.BatchNorm}, nil
}

// BatchNorm returns whether the head normalizes after each block
func (u *UniverseHead) BatchNorm() bool {
	return u.batchNorm
}

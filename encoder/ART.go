package encoder

import (
	"fmt"
	"math"

	"github.com/mariuslindegaard/curiosity-baselines/initwfn"
	"github.com/mariuslindegaard/curiosity-baselines/network"
)

// Default hyperparameters of the ART head
const (
	DefaultARTSigmoidScaling = 1.0
	DefaultARTKernelSize     = 3
	DefaultARTStride         = 2
	DefaultARTPadding        = 1
	DefaultARTOutChannels    = 4
)

// ARTConfig describes an ARTHead
type ARTConfig struct {
	ImageShape     network.ImageShape
	OutputSize     int
	SigmoidScaling float64
	KernelSize     int
	Stride         int
	Padding        int
	OutChannels    int

	// Init initializes the convolution filters and linear weights.
	// If nil, filters are He uniform and linear weights Glorot uniform.
	Init *initwfn.InitWFn
}

// NewARTConfig returns a config of an ARTHead with default
// hyperparameters
func NewARTConfig(shape network.ImageShape, outputSize int) ARTConfig {
	return ARTConfig{
		ImageShape:     shape,
		OutputSize:     outputSize,
		SigmoidScaling: DefaultARTSigmoidScaling,
		KernelSize:     DefaultARTKernelSize,
		Stride:         DefaultARTStride,
		Padding:        DefaultARTPadding,
		OutChannels:    DefaultARTOutChannels,
	}
}

// Type returns the type of encoder described by the config
func (a ARTConfig) Type() Type { return ART }

// Validate checks the config for errors
func (a ARTConfig) Validate() error {
	if err := a.ImageShape.Validate(); err != nil {
		return err
	}
	if a.OutputSize <= 0 {
		return fmt.Errorf("%w: output size must be positive, got %v",
			network.ErrInvalidConfig, a.OutputSize)
	}
	if a.SigmoidScaling <= 0 || math.IsInf(a.SigmoidScaling, 0) ||
		math.IsNaN(a.SigmoidScaling) {
		return fmt.Errorf("%w: sigmoid scaling must be positive and "+
			"finite, got %v", network.ErrInvalidConfig, a.SigmoidScaling)
	}
	if a.OutChannels <= 0 {
		return fmt.Errorf("%w: output channels must be positive, got %v",
			network.ErrInvalidConfig, a.OutChannels)
	}

	// Kernel, stride, and padding are checked while building
	return nil
}

// Create returns the ARTHead described by the config
func (a ARTConfig) Create() (Encoder, error) {
	return NewARTHead(a)
}

// ARTHead is a fixed random projection of images into (0, 1)^n, used
// as the input of an online Fuzzy ART clusterer. It consists of a
// single convolution followed by a linear layer, one-dimensional batch
// normalization, and a scaled sigmoid:
//
//	Conv2D -> ReLU -> Flatten -> ReLU -> Linear -> BatchNorm1d ->
//	sigmoid(scaling * x)
//
// The head is never trained: its parameters are not reported as
// learnables. Its batch normalization still tracks running statistics
// in training mode, so that outputs in evaluation mode are normalized.
type ARTHead struct {
	*head
	scaling float64
}

// NewARTHead returns a new ARTHead
func NewARTHead(c ARTConfig) (*ARTHead, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newarthead: %w", err)
	}

	b := network.NewBuilder(c.ImageShape).
		Conv2D(c.OutChannels, network.Square(c.KernelSize),
			network.Square(c.Stride), network.Square(c.Padding),
			c.Init.Or(initwfn.DefaultConv())).
		Activation(network.ReLU()).
		Flatten().
		Activation(network.ReLU()).
		Linear(c.OutputSize, c.Init.Or(initwfn.DefaultLinear())).
		BatchNorm().
		Activation(network.ScaledSigmoid(c.SigmoidScaling)).
		WithoutGrad()

	h, err := newHead("arthead", b)
	if err != nil {
		return nil, fmt.Errorf("newarthead: %w", err)
	}

	return &ARTHead{head: h, scaling: c.SigmoidScaling}, nil
}

// SigmoidScaling returns the factor that pre-activations are scaled by
// before the sigmoid
func (a *ARTHead) SigmoidScaling() float64 {
	return a.scaling
}

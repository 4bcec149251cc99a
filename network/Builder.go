package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Builder assembles an ordered list of layers into a Sequential
// network. Layers are only described while building; no parameters
// are allocated until Build is called, and Build validates that the
// per-sample shape can be propagated through every layer before
// allocating anything.
//
// Methods may be chained:
//
//	net, err := NewBuilder(NewImageShape(3, 84, 84)).
//		Conv2D(32, Square(8), Square(4), Square(0), G.HeU(1.0)).
//		Activation(ReLU()).
//		Flatten().
//		Linear(512, G.GlorotU(1.0)).
//		Build()
type Builder struct {
	input  ImageShape
	specs  []layerSpec
	frozen bool
}

// NewBuilder returns a new Builder of networks that take images of
// shape input.
func NewBuilder(input ImageShape) *Builder {
	return &Builder{input: input}
}

// Conv2D adds a 2D convolution with a bias to the network. Weights are
// initialized with init.
func (b *Builder) Conv2D(outChannels int, kernel, stride, padding Dims,
	init G.InitWFn) *Builder {
	b.specs = append(b.specs, conv2DSpec{
		outChannels: outChannels,
		kernel:      kernel,
		stride:      stride,
		padding:     padding,
		dilation:    Square(1),
		init:        init,
	})
	return b
}

// Linear adds a fully connected layer with a bias to the network.
// Inputs to the layer must be flat.
func (b *Builder) Linear(outputs int, init G.InitWFn) *Builder {
	b.specs = append(b.specs, fcSpec{outputs: outputs, init: init})
	return b
}

// BatchNorm adds batch normalization with default momentum and epsilon
// to the network. If the layer's inputs are images, normalization is
// performed per channel, otherwise per feature.
func (b *Builder) BatchNorm() *Builder {
	return b.BatchNormWith(DefaultBatchNormMomentum, DefaultBatchNormEpsilon)
}

// BatchNormWith adds batch normalization to the network with the given
// momentum and epsilon.
func (b *Builder) BatchNormWith(momentum, epsilon float64) *Builder {
	b.specs = append(b.specs, batchNormSpec{
		momentum: momentum,
		epsilon:  epsilon,
	})
	return b
}

// Flatten adds a layer that flattens all non-batch dimensions
func (b *Builder) Flatten() *Builder {
	b.specs = append(b.specs, flattenSpec{})
	return b
}

// Activation adds an element-wise activation to the network
func (b *Builder) Activation(a *Activation) *Builder {
	b.specs = append(b.specs, a)
	return b
}

// WithoutGrad causes the network to be built as a fixed projection.
// Its parameters are never reported as learnables and so gradients are
// never computed with respect to them.
func (b *Builder) WithoutGrad() *Builder {
	b.frozen = true
	return b
}

// Len returns the number of layers added to the Builder
func (b *Builder) Len() int {
	return len(b.specs)
}

// OutputShape returns the per-sample output shape of the network that
// the Builder describes, without allocating any parameters.
func (b *Builder) OutputShape() ([]int, error) {
	shapes, err := b.shapes()
	if err != nil {
		return nil, err
	}
	return shapes[len(shapes)-1], nil
}

// shapes returns the per-sample input shape of each layer followed by
// the output shape of the network.
func (b *Builder) shapes() ([][]int, error) {
	if err := b.input.Validate(); err != nil {
		return nil, newError("build", err)
	}

	shapes := make([][]int, 0, len(b.specs)+1)
	shape := b.input.Shape()
	shapes = append(shapes, shape)

	for i, spec := range b.specs {
		var err error
		shape, err = spec.outShape(shape)
		if err != nil {
			return nil, newError("build", fmt.Errorf("layer %d: %w", i, err))
		}
		shapes = append(shapes, shape)
	}
	return shapes, nil
}

// Build allocates all layers and returns the Sequential network
func (b *Builder) Build() (*Sequential, error) {
	if len(b.specs) == 0 {
		return nil, newError("build", fmt.Errorf("%w: network has no "+
			"layers", ErrInvalidConfig))
	}

	shapes, err := b.shapes()
	if err != nil {
		return nil, err
	}

	layers := make([]Layer, len(b.specs))
	for i, spec := range b.specs {
		layers[i], err = spec.create(shapes[i])
		if err != nil {
			return nil, newError("build", fmt.Errorf("layer %d: %w", i, err))
		}
	}

	return newSequential(b.input, shapes[len(shapes)-1], layers, b.frozen), nil
}

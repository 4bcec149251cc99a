package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// conv2D implements a 2D convolution with a bias over inputs of shape
// [batch, channels, height, width].
type conv2D struct {
	inChannels, outChannels int
	kernel, stride, padding Dims
	dilation                Dims

	weights *tensor.Dense // [out, in, kernel.H, kernel.W]
	bias    *tensor.Dense // [1, out, 1, 1]
}

// fwd adds the forward pass of the conv2D to the computational graph
func (c *conv2D) fwd(x *G.Node, p *pass) (*G.Node, error) {
	filter := p.param(c.weights, "filter")
	bias := p.param(c.bias, "bias")

	out, err := G.Conv2d(
		x,
		filter,
		tensor.Shape{c.kernel.H, c.kernel.W},
		[]int{c.padding.H, c.padding.W},
		[]int{c.stride.H, c.stride.W},
		[]int{c.dilation.H, c.dilation.W},
	)
	if err != nil {
		return nil, err
	}

	// One bias per output channel, broadcast over the batch and both
	// spatial dimensions
	return G.BroadcastAdd(out, bias, nil, []byte{0, 2, 3})
}

// Params returns the filter and bias of the conv2D
func (c *conv2D) Params() []*tensor.Dense {
	return []*tensor.Dense{c.weights, c.bias}
}

// String implements the Stringer interface
func (c *conv2D) String() string {
	return fmt.Sprintf("conv2d(%d -> %d, kernel=%v, stride=%v, "+
		"padding=%v)", c.inChannels, c.outChannels, c.kernel, c.stride,
		c.padding)
}

// conv2DSpec describes a conv2D before allocation
type conv2DSpec struct {
	outChannels             int
	kernel, stride, padding Dims
	dilation                Dims
	init                    G.InitWFn
}

func (c conv2DSpec) outShape(in []int) ([]int, error) {
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: convolution expects (channels, "+
			"height, width) inputs, have per-sample shape %v",
			ErrInvalidConfig, in)
	}
	if c.outChannels <= 0 {
		return nil, fmt.Errorf("%w: convolution must have positive "+
			"output channels, have %d", ErrInvalidConfig, c.outChannels)
	}

	out, err := Conv2DOutputShape(Dims{in[1], in[2]}, c.kernel, c.stride,
		c.padding, c.dilation)
	if err != nil {
		return nil, err
	}

	return []int{c.outChannels, out.H, out.W}, nil
}

func (c conv2DSpec) create(in []int) (Layer, error) {
	if _, err := c.outShape(in); err != nil {
		return nil, err
	}

	return &conv2D{
		inChannels:  in[0],
		outChannels: c.outChannels,
		kernel:      c.kernel,
		stride:      c.stride,
		padding:     c.padding,
		dilation:    c.dilation,
		weights: newParam(c.init, c.outChannels, in[0], c.kernel.H,
			c.kernel.W),
		bias: newParam(G.Zeroes(), 1, c.outChannels, 1, 1),
	}, nil
}

package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// fcLayer implements a fully connected (affine) layer of a feed
// forward neural network operating on [batch, features] inputs.
type fcLayer struct {
	weights *tensor.Dense // [in, out]
	bias    *tensor.Dense // [1, out]
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node, p *pass) (*G.Node, error) {
	weights := p.param(f.weights, "weights")
	bias := p.param(f.bias, "bias")

	x, err := G.Mul(x, weights)
	if err != nil {
		return nil, err
	}

	// Broadcast the bias weights to all samples along the batch
	// dimension
	return G.BroadcastAdd(x, bias, nil, []byte{0})
}

// Params returns the weights and bias of the fcLayer
func (f *fcLayer) Params() []*tensor.Dense {
	return []*tensor.Dense{f.weights, f.bias}
}

// String implements the Stringer interface
func (f *fcLayer) String() string {
	shape := f.weights.Shape()
	return fmt.Sprintf("linear(%d -> %d)", shape[0], shape[1])
}

// fcSpec describes an fcLayer before allocation
type fcSpec struct {
	outputs int
	init    G.InitWFn
}

func (f fcSpec) outShape(in []int) ([]int, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("%w: linear layer expects flat inputs, "+
			"have per-sample shape %v", ErrInvalidConfig, in)
	}
	if f.outputs <= 0 {
		return nil, fmt.Errorf("%w: linear layer must have positive "+
			"outputs, have %d", ErrInvalidConfig, f.outputs)
	}
	return []int{f.outputs}, nil
}

func (f fcSpec) create(in []int) (Layer, error) {
	if _, err := f.outShape(in); err != nil {
		return nil, err
	}

	return &fcLayer{
		weights: newParam(f.init, in[0], f.outputs),
		bias:    newParam(G.Zeroes(), 1, f.outputs),
	}, nil
}

// flatten reshapes [batch, d1, d2, ...] inputs to [batch, d1*d2*...]
type flatten struct {
	features int
}

func (f *flatten) fwd(x *G.Node, _ *pass) (*G.Node, error) {
	return G.Reshape(x, tensor.Shape{x.Shape()[0], f.features})
}

// Params returns the learnable parameters of flatten, of which there
// are none.
func (f *flatten) Params() []*tensor.Dense {
	return nil
}

func (f *flatten) String() string {
	return "flatten"
}

type flattenSpec struct{}

func (flattenSpec) outShape(in []int) ([]int, error) {
	return []int{prod(in)}, nil
}

func (flattenSpec) create(in []int) (Layer, error) {
	return &flatten{features: prod(in)}, nil
}

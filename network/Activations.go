package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

type activationType string

const (
	relu          activationType = "relu"
	leakyReLU     activationType = "leakyrelu"
	elu           activationType = "elu"
	sigmoid       activationType = "sigmoid"
	scaledSigmoid activationType = "scaledsigmoid"
	tanh          activationType = "tanh"
	identity      activationType = "identity"
)

// DefaultLeakyReLUSlope is the negative slope used by LeakyReLU
const DefaultLeakyReLUSlope float64 = 0.01

// Activation represents an element-wise activation function. An
// Activation is itself a Layer and can be added to a Builder.
type Activation struct {
	activationType
	param float64
	f     func(x *G.Node, param float64) (*G.Node, error)
}

// fwd performs the forward pass of an Activation
func (a *Activation) fwd(x *G.Node, _ *pass) (*G.Node, error) {
	return a.f(x, a.param)
}

// outShape returns the input shape, activations are element-wise
func (a *Activation) outShape(in []int) ([]int, error) {
	return in, nil
}

// create returns the Activation, it has no parameters to allocate
func (a *Activation) create(in []int) (Layer, error) {
	return a, nil
}

// Params returns the learnable parameters of the Activation, of which
// there are none.
func (a *Activation) Params() []*tensor.Dense {
	return nil
}

// String implements the Stringer interface
func (a *Activation) String() string {
	switch a.activationType {
	case leakyReLU:
		return fmt.Sprintf("%v(slope=%v)", a.activationType, a.param)
	case scaledSigmoid:
		return fmt.Sprintf("%v(scaling=%v)", a.activationType, a.param)
	}
	return string(a.activationType)
}

// IsIdentity returns whether or not the Activation is the identity
// function.
func (a *Activation) IsIdentity() bool {
	return a.activationType == identity
}

// Identity returns an identity *Activation
func Identity() *Activation {
	return &Activation{
		activationType: identity,
		f: func(x *G.Node, _ float64) (*G.Node, error) {
			return x, nil
		},
	}
}

// ReLU returns a ReLU *Activation
func ReLU() *Activation {
	return &Activation{
		activationType: relu,
		f: func(x *G.Node, _ float64) (*G.Node, error) {
			return G.Rectify(x)
		},
	}
}

// LeakyReLU returns a leaky ReLU *Activation with the given negative
// slope.
func LeakyReLU(slope float64) *Activation {
	return &Activation{
		activationType: leakyReLU,
		param:          slope,
		f:              G.LeakyRelu,
	}
}

// ELU returns an exponential linear unit *Activation with α = 1:
//
//	elu(x) = x            if x > 0
//	elu(x) = exp(x) - 1   otherwise
func ELU() *Activation {
	return &Activation{
		activationType: elu,
		f:              eluFwd,
	}
}

// eluFwd computes elu(x) = relu(x) + exp(-relu(-x)) - 1, which only
// exponentiates non-positive values.
func eluFwd(x *G.Node, _ float64) (*G.Node, error) {
	pos, err := G.Rectify(x)
	if err != nil {
		return nil, err
	}

	neg, err := G.Neg(x)
	if err != nil {
		return nil, err
	}
	neg, err = G.Rectify(neg)
	if err != nil {
		return nil, err
	}
	neg, err = G.Neg(neg)
	if err != nil {
		return nil, err
	}
	neg, err = G.Exp(neg)
	if err != nil {
		return nil, err
	}
	neg, err = G.Sub(neg, G.NewConstant(1.0))
	if err != nil {
		return nil, err
	}

	return G.Add(pos, neg)
}

// Sigmoid returns a logistic sigmoid *Activation
func Sigmoid() *Activation {
	return &Activation{
		activationType: sigmoid,
		f: func(x *G.Node, _ float64) (*G.Node, error) {
			return G.Sigmoid(x)
		},
	}
}

// ScaledSigmoid returns a *Activation computing sigmoid(x * scaling),
// which squashes its input into (0, 1) with a tunable steepness. The
// output never reaches 0 or 1: scaled inputs saturate at
// sigmoid(-700) and sigmoid(18).
func ScaledSigmoid(scaling float64) *Activation {
	return &Activation{
		activationType: scaledSigmoid,
		param:          scaling,
		f: func(x *G.Node, scaling float64) (*G.Node, error) {
			scaled, err := G.HadamardProd(x, G.NewConstant(scaling))
			if err != nil {
				return nil, err
			}
			scaled, err = clamp(scaled, minSigmoidInput, maxSigmoidInput)
			if err != nil {
				return nil, err
			}
			return G.Sigmoid(scaled)
		},
	}
}

// Gorgonia's sigmoid returns exactly 1 above 19 and exactly 0 below
// -709. Inputs of ScaledSigmoid are kept inside these bounds, with some
// slack for rounding in clamp, so that outputs stay in the open
// interval (0, 1).
const (
	minSigmoidInput = -700.0
	maxSigmoidInput = 18.0
)

// clamp adds a node to the graph of x that bounds the elements of x to
// [low, high]:
//
//	clamp(x) = x - relu(x - high) + relu(low - x)
func clamp(x *G.Node, low, high float64) (*G.Node, error) {
	above, err := G.Sub(x, G.NewConstant(high))
	if err != nil {
		return nil, err
	}
	above, err = G.Rectify(above)
	if err != nil {
		return nil, err
	}

	below, err := G.Sub(x, G.NewConstant(low))
	if err != nil {
		return nil, err
	}
	below, err = G.Neg(below)
	if err != nil {
		return nil, err
	}
	below, err = G.Rectify(below)
	if err != nil {
		return nil, err
	}

	out, err := G.Sub(x, above)
	if err != nil {
		return nil, err
	}
	return G.Add(out, below)
}

// TanH returns a tanh *Activation
func TanH() *Activation {
	return &Activation{
		activationType: tanh,
		f: func(x *G.Node, _ float64) (*G.Node, error) {
			return G.Tanh(x)
		},
	}
}

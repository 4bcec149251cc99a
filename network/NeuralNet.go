// Package network implements neural networks built from layers of
// Gorgonia operations.
//
// Networks are described with a Builder and frozen into a Sequential
// network. A Sequential network owns its parameters independently of
// any computational graph: it can be run directly on tensors with
// Forward, or added to a larger graph with Fwd so that downstream
// models can be trained through it.
package network

import (
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NeuralNet is a neural network function approximator
type NeuralNet interface {
	// InputShape returns the per-sample shape of inputs to the network
	InputShape() []int

	// OutputShape returns the per-sample shape of network outputs
	OutputShape() []int

	// Forward runs the network on a batch of inputs and returns the
	// batch of outputs. No gradients are computed.
	Forward(tensor.Tensor) (tensor.Tensor, error)

	// Fwd adds the forward pass of the network on some input node to
	// the input node's graph and returns the output node.
	Fwd(*G.Node) (*G.Node, error)

	// Learnables returns the learnable nodes the network added to a
	// graph with Fwd
	Learnables(*G.ExprGraph) G.Nodes

	// Params returns all learnable parameters of the network
	Params() []*tensor.Dense

	Train()       // Set network to training mode
	Eval()        // Set network to evaluation mode
	IsEval() bool // Indicates if in evaluation mode
}

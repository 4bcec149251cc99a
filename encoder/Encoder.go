// Package encoder implements convolutional feature encoders that map
// batches of images to flat feature vectors. The encoders are the
// feature heads of curiosity models: Universe, Burda, Maze, and ART
// heads.
//
// Each encoder is described by a JSON-serializable Config and is
// backed by a network.Sequential, so that an encoder can either be run
// directly on image tensors with Forward, or be added to an external
// computational graph with Fwd so that downstream models can be
// trained through it.
package encoder

import (
	"fmt"

	"github.com/mariuslindegaard/curiosity-baselines/network"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Encoder maps images of shape [batch, channels, height, width] to
// features of shape [batch, Features()].
type Encoder interface {
	// ImageShape returns the per-sample shape of images accepted by
	// the encoder
	ImageShape() network.ImageShape

	// Features returns the number of features output for each image
	Features() int

	// Forward encodes a batch of images. Any batch size is accepted.
	Forward(tensor.Tensor) (tensor.Tensor, error)

	// Fwd adds the encoder to the graph of the argument node and
	// returns the node holding the encoded features
	Fwd(*G.Node) (*G.Node, error)

	// Learnables returns the trainable parameters of the encoder that
	// were added to graph g with Fwd
	Learnables(g *G.ExprGraph) G.Nodes

	// Train and Eval switch between batch and running statistics in
	// batch-norm layers
	Train()
	Eval()
	IsEval() bool

	// Network returns the underlying network
	Network() *network.Sequential
}

// head implements the functionality shared by all encoders
type head struct {
	name     string
	shape    network.ImageShape
	features int
	net      *network.Sequential
}

// newHead builds the network described by b and checks that it
// outputs flat features.
func newHead(name string, b *network.Builder) (*head, error) {
	net, err := b.Build()
	if err != nil {
		return nil, err
	}

	out := net.OutputShape()
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: %v output has shape %v, expected flat "+
			"features", network.ErrInvalidConfig, name, out)
	}
	in := net.InputShape()

	return &head{
		name:     name,
		shape:    network.NewImageShape(in[0], in[1], in[2]),
		features: out[0],
		net:      net,
	}, nil
}

// ImageShape returns the per-sample input shape of the encoder
func (h *head) ImageShape() network.ImageShape {
	return h.shape
}

// Features returns the number of features output per image
func (h *head) Features() int {
	return h.features
}

// Forward encodes a batch of images
func (h *head) Forward(x tensor.Tensor) (tensor.Tensor, error) {
	out, err := h.net.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", h.name, err)
	}
	return out, nil
}

// Fwd adds the encoder to the graph of x
func (h *head) Fwd(x *G.Node) (*G.Node, error) {
	out, err := h.net.Fwd(x)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", h.name, err)
	}
	return out, nil
}

// Learnables returns the learnable nodes of the encoder in graph g
func (h *head) Learnables(g *G.ExprGraph) G.Nodes {
	return h.net.Learnables(g)
}

// Train sets the encoder to training mode
func (h *head) Train() {
	h.net.Train()
}

// Eval sets the encoder to evaluation mode
func (h *head) Eval() {
	h.net.Eval()
}

// IsEval returns whether the encoder is in evaluation mode
func (h *head) IsEval() bool {
	return h.net.IsEval()
}

// Network returns the network that implements the encoder
func (h *head) Network() *network.Sequential {
	return h.net
}

// String implements the fmt.Stringer interface
func (h *head) String() string {
	return fmt.Sprintf("%v(%v -> %v): %v", h.name, h.shape, h.features,
		h.net)
}

// checkConvOutputSize returns an error if an explicitly configured
// convolution output size disagrees with the size computed from the
// network described by b. A configured size of 0 is always accepted.
func checkConvOutputSize(b *network.Builder, configured int) (int, error) {
	out, err := b.OutputShape()
	if err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("%w: convolution output has shape %v, "+
			"expected flat features", network.ErrInvalidConfig, out)
	}

	if configured != 0 && configured != out[0] {
		return 0, fmt.Errorf("%w: configured convolution output size %v "+
			"but computed %v", network.ErrInvalidConfig, configured, out[0])
	}
	return out[0], nil
}

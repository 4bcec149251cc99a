package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Layer implements a single operation of a Sequential network. A Layer
// owns its parameters as tensors which are independent of any
// computational graph, so that the same Layer can be added to many
// graphs while sharing its weights.
type Layer interface {
	// fwd adds the forward pass of the Layer on x to x's graph
	fwd(x *G.Node, p *pass) (*G.Node, error)

	// Params returns the learnable parameters of the Layer
	Params() []*tensor.Dense

	String() string
}

// buffered is a Layer which holds non-learnable state that must be
// kept in sync with its parameters, such as running statistics.
type buffered interface {
	Layer
	Buffers() []*tensor.Dense
}

// layerSpec describes a Layer before its parameters are allocated
type layerSpec interface {
	// outShape returns the per-sample output shape of the Layer given
	// its per-sample input shape.
	outShape(in []int) ([]int, error)

	// create allocates the Layer for a per-sample input shape
	create(in []int) (Layer, error)
}

// pass holds the graph-local state of adding a Sequential network to
// a single computational graph.
type pass struct {
	g        *G.ExprGraph
	training bool
	frozen   bool

	// track causes batch statistics to be read out of the graph so
	// that running statistics can be updated after each run
	track bool

	layer      int // Index of the Layer currently being added
	learnables G.Nodes
	stats      []*batchStats
}

func newPass(g *G.ExprGraph, training, frozen, track bool) *pass {
	return &pass{
		g:        g,
		training: training,
		frozen:   frozen,
		track:    track,
	}
}

// param adds a learnable parameter to the graph. The returned node is
// bound to t itself so that updates to the node's value are seen by
// every graph the parameter was added to.
func (p *pass) param(t *tensor.Dense, name string) *G.Node {
	n := p.constant(t, name)
	if !p.frozen {
		p.learnables = append(p.learnables, n)
	}
	return n
}

// constant adds a non-learnable tensor to the graph
func (p *pass) constant(t *tensor.Dense, name string) *G.Node {
	return G.NewTensor(
		p.g,
		t.Dtype(),
		t.Dims(),
		G.WithShape(t.Shape().Clone()...),
		G.WithValue(t),
		G.WithName(fmt.Sprintf("layer%d_%s", p.layer, name)),
	)
}

// newParam allocates a new parameter tensor of the given shape,
// initialized by init.
func newParam(init G.InitWFn, shape ...int) *tensor.Dense {
	return tensor.New(
		tensor.WithShape(shape...),
		tensor.WithBacking(init(tensor.Float64, shape...)),
	)
}

// prod returns the product of all elements of shape
func prod(shape []int) int {
	p := 1
	for _, s := range shape {
		p *= s
	}
	return p
}

package network

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// programKey identifies a compiled program of a Sequential network
type programKey struct {
	batch    int
	training bool
}

// program is a Sequential network compiled for a single batch size and
// mode, together with the machine that runs it.
type program struct {
	g      *G.ExprGraph
	input  *G.Node
	output *G.Node
	vm     G.VM
	pass   *pass

	outVal G.Value
}

// Sequential implements a neural network that applies a fixed, ordered
// list of layers to its input. Sequential networks are created with a
// Builder.
//
// Sequential networks start in training mode.
type Sequential struct {
	input    ImageShape
	outShape []int
	layers   []Layer
	frozen   bool
	eval     bool

	// Programs are compiled lazily, once per batch size and mode, and
	// at most MaxPrograms are cached
	mu       sync.Mutex
	programs map[programKey]*program

	// Graph-local state of each external graph the network was added
	// to with Fwd
	passes map[*G.ExprGraph]*pass
}

var _ NeuralNet = &Sequential{}

func newSequential(input ImageShape, outShape []int, layers []Layer,
	frozen bool) *Sequential {
	return &Sequential{
		input:    input,
		outShape: outShape,
		layers:   layers,
		frozen:   frozen,
		programs: make(map[programKey]*program),
		passes:   make(map[*G.ExprGraph]*pass),
	}
}

// InputShape returns the per-sample input shape (channels, height,
// width) of the network.
func (s *Sequential) InputShape() []int {
	return s.input.Shape()
}

// OutputShape returns the per-sample output shape of the network
func (s *Sequential) OutputShape() []int {
	out := make([]int, len(s.outShape))
	copy(out, s.outShape)
	return out
}

// Layers returns the number of layers in the network
func (s *Sequential) Layers() int {
	return len(s.layers)
}

// Frozen returns whether the network is a fixed projection whose
// parameters are never learnable.
func (s *Sequential) Frozen() bool {
	return s.frozen
}

// Train sets the network to training mode
func (s *Sequential) Train() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eval = false
}

// Eval sets the network to evaluation mode
func (s *Sequential) Eval() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eval = true
}

// IsEval returns whether the network is in evaluation mode
func (s *Sequential) IsEval() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eval
}

// checkInput returns an error if a batch of inputs of shape shape
// cannot be given to the network.
func (s *Sequential) checkInput(op string, shape tensor.Shape) error {
	want := s.input.Shape()
	if len(shape) != len(want)+1 {
		return newError(op, fmt.Errorf("%w: want [batch %v], have %v",
			ErrShapeMismatch, s.input, shape))
	}
	if shape[0] <= 0 {
		return newError(op, fmt.Errorf("%w: batch size must be positive, "+
			"have %v", ErrShapeMismatch, shape[0]))
	}
	for i := range want {
		if shape[i+1] != want[i] {
			return newError(op, fmt.Errorf("%w: want [batch %v], have %v",
				ErrShapeMismatch, s.input, shape))
		}
	}
	return nil
}

// fwd adds all layers of the network to the graph of input
func (s *Sequential) fwd(input *G.Node, p *pass) (*G.Node, error) {
	pred := input
	var err error
	for i, l := range s.layers {
		p.layer = i
		if pred, err = l.fwd(pred, p); err != nil {
			msg := "could not compute forward pass of layer %v (%v): %w"
			return nil, fmt.Errorf(msg, i, l, err)
		}
	}
	return pred, nil
}

// Fwd adds the forward pass of the network on input to the graph of
// input and returns the output node. The mode of the network at the
// time of calling Fwd determines how batch norm layers behave in the
// graph. Running statistics are only updated by Forward.
func (s *Sequential) Fwd(input *G.Node) (*G.Node, error) {
	if err := s.checkInput("fwd", input.Shape()); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := input.Graph()
	p := newPass(g, !s.eval, s.frozen, false)
	out, err := s.fwd(input, p)
	if err != nil {
		return nil, newError("fwd", err)
	}

	prev, ok := s.passes[g]
	if !ok {
		s.passes[g] = p
		return out, nil
	}

	// Parameters are named by layer, so adding the network to the same
	// graph twice reuses the same learnable nodes
	for _, n := range p.learnables {
		if !prev.learnables.Contains(n) {
			prev.learnables = append(prev.learnables, n)
		}
	}
	return out, nil
}

// Learnables returns the learnable nodes that the network added to
// graph g through calls to Fwd. A network built WithoutGrad has no
// learnables.
func (s *Sequential) Learnables(g *G.ExprGraph) G.Nodes {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.passes[g]
	if !ok {
		return nil
	}
	return p.learnables
}

// MaxPrograms is the maximum number of compiled programs a Sequential
// network caches. Once the cache is full, all cached programs are
// closed before a new one is compiled.
const MaxPrograms = 16

// compile compiles the network for some batch size in the current mode
func (s *Sequential) compile(batch int) (*program, error) {
	key := programKey{batch: batch, training: !s.eval}
	if prog, ok := s.programs[key]; ok {
		return prog, nil
	}
	if len(s.programs) >= MaxPrograms {
		s.clearPrograms()
	}

	g := G.NewGraph()
	inputShape := append([]int{batch}, s.input.Shape()...)
	input := G.NewTensor(
		g,
		tensor.Float64,
		len(inputShape),
		G.WithShape(inputShape...),
		G.WithName("input"),
	)

	p := newPass(g, key.training, s.frozen, true)
	output, err := s.fwd(input, p)
	if err != nil {
		return nil, err
	}

	prog := &program{
		g:      g,
		input:  input,
		output: output,
		pass:   p,
	}
	G.Read(output, &prog.outVal)
	prog.vm = G.NewTapeMachine(g)

	s.programs[key] = prog
	return prog, nil
}

// clearPrograms closes and removes all cached programs
func (s *Sequential) clearPrograms() {
	for key, prog := range s.programs {
		prog.vm.Close()
		delete(s.programs, key)
	}
}

// Programs returns the number of compiled programs currently cached
func (s *Sequential) Programs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.programs)
}

// Forward runs the network on a batch of inputs of shape
// [batch, channels, height, width] and returns a copy of the batch of
// outputs. Inputs must be *tensor.Dense of float64. In training mode,
// running statistics of batch norm layers are updated.
//
// Forward may be called concurrently.
func (s *Sequential) Forward(x tensor.Tensor) (tensor.Tensor, error) {
	if err := s.checkInput("forward", x.Shape()); err != nil {
		return nil, err
	}

	dense, ok := x.(*tensor.Dense)
	if !ok || x.Dtype() != tensor.Float64 {
		return nil, newError("forward", fmt.Errorf("%w: want *tensor.Dense "+
			"of %v, have %T of %v", ErrDtype, tensor.Float64, x, x.Dtype()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prog, err := s.compile(x.Shape()[0])
	if err != nil {
		return nil, newError("forward", err)
	}

	if err := G.Let(prog.input, dense); err != nil {
		return nil, newError("forward", err)
	}
	defer prog.vm.Reset()
	if err := prog.vm.RunAll(); err != nil {
		return nil, newError("forward", err)
	}

	for _, stats := range prog.pass.stats {
		if err := stats.update(); err != nil {
			return nil, newError("forward", err)
		}
	}

	out, ok := prog.outVal.(tensor.Tensor)
	if !ok {
		return nil, newError("forward", fmt.Errorf("output is not a "+
			"tensor: %T", prog.outVal))
	}
	return out.Clone().(tensor.Tensor), nil
}

// Params returns the learnable parameters of all layers, in layer
// order.
func (s *Sequential) Params() []*tensor.Dense {
	var params []*tensor.Dense
	for _, l := range s.layers {
		params = append(params, l.Params()...)
	}
	return params
}

// NumParams returns the total number of learnable parameters
func (s *Sequential) NumParams() int {
	n := 0
	for _, p := range s.Params() {
		n += p.Shape().TotalSize()
	}
	return n
}

// buffers returns the non-learnable state of all layers
func (s *Sequential) buffers() []*tensor.Dense {
	var buffers []*tensor.Dense
	for _, l := range s.layers {
		if b, ok := l.(buffered); ok {
			buffers = append(buffers, b.Buffers()...)
		}
	}
	return buffers
}

// state returns all parameters followed by all buffers
func (s *Sequential) state() []*tensor.Dense {
	return append(s.Params(), s.buffers()...)
}

// String implements the Stringer interface
func (s *Sequential) String() string {
	layers := make([]string, len(s.layers))
	for i, l := range s.layers {
		layers[i] = l.String()
	}
	return fmt.Sprintf("Sequential%v[%v]", s.input,
		strings.Join(layers, ", "))
}

// compatible returns an error if two networks do not share the same
// architecture
func (s *Sequential) compatible(op string, other *Sequential) error {
	if s.String() != other.String() {
		return newError(op, fmt.Errorf("%w: architectures differ"+
			"\n\twant(%v)\n\thave(%v)", ErrInvalidConfig, s, other))
	}
	return nil
}

// Set sets the parameters and running statistics of a Sequential
// network to be equal to those of another Sequential network with the
// same architecture.
func (dest *Sequential) Set(source *Sequential) error {
	if err := dest.compatible("set", source); err != nil {
		return err
	}

	sourceState := source.snapshot(source.state)

	dest.mu.Lock()
	defer dest.mu.Unlock()

	for i, d := range dest.state() {
		copy(d.Data().([]float64), sourceState[i])
	}
	return nil
}

// Polyak sets the parameters of a Sequential network to be a polyak
// average between its existing parameters and the parameters of
// another Sequential network:
//
//	dest ← (1 - τ) * dest + τ * source
//
// Running statistics are copied from source.
func (dest *Sequential) Polyak(source *Sequential, tau float64) error {
	if err := dest.compatible("polyak", source); err != nil {
		return err
	}
	if tau < 0 || tau > 1 {
		return newError("polyak", fmt.Errorf("%w: τ must be in [0, 1], "+
			"have %v", ErrInvalidConfig, tau))
	}

	sourceParams := source.snapshot(source.Params)
	sourceBuffers := source.snapshot(source.buffers)

	dest.mu.Lock()
	defer dest.mu.Unlock()

	for i, d := range dest.Params() {
		weights := d.Data().([]float64)
		floats.Scale(1-tau, weights)
		floats.AddScaled(weights, tau, sourceParams[i])
	}

	for i, d := range dest.buffers() {
		copy(d.Data().([]float64), sourceBuffers[i])
	}
	return nil
}

// snapshot returns copies of the data of the tensors returned by
// tensors, taken while no Forward call can modify them. Only one
// network is locked at a time.
func (s *Sequential) snapshot(tensors func() []*tensor.Dense) [][]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := tensors()
	data := make([][]float64, len(ts))
	for i, t := range ts {
		data[i] = append([]float64(nil), t.Data().([]float64)...)
	}
	return data
}

// GobEncode implements the gob.GobEncoder interface. The architecture
// of the network and all of its parameters and running statistics are
// encoded.
func (s *Sequential) GobEncode() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(s.String()); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode "+
			"architecture: %v", err)
	}

	for i, t := range s.state() {
		if err := enc.Encode(t.Data().([]float64)); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode "+
				"tensor %v: %v", i, err)
		}
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. Networks are
// decoded into an existing network of the same architecture, which
// can be built with the same Builder calls as the encoded network.
func (s *Sequential) GobDecode(in []byte) error {
	if s.layers == nil {
		return fmt.Errorf("gobdecode: %w: decode into a built network",
			ErrInvalidConfig)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dec := gob.NewDecoder(bytes.NewReader(in))

	var arch string
	if err := dec.Decode(&arch); err != nil {
		return fmt.Errorf("gobdecode: could not decode architecture: %v",
			err)
	}
	if arch != s.String() {
		return fmt.Errorf("gobdecode: %w: architectures differ"+
			"\n\twant(%v)\n\thave(%v)", ErrInvalidConfig, s, arch)
	}

	// The network is only modified once every tensor has been decoded
	state := s.state()
	decoded := make([][]float64, len(state))
	for i, t := range state {
		var data []float64
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("gobdecode: could not decode tensor %v: %v",
				i, err)
		}

		if want := t.Shape().TotalSize(); len(data) != want {
			return fmt.Errorf("gobdecode: %w: tensor %v has %v values, "+
				"want %v", ErrInvalidConfig, i, len(data), want)
		}
		decoded[i] = data
	}

	for i, t := range state {
		copy(t.Data().([]float64), decoded[i])
	}
	return nil
}

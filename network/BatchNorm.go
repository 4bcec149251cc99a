package network

import (
	"fmt"
	"log"
	"math"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Batch norm defaults
const (
	DefaultBatchNormMomentum float64 = 0.1
	DefaultBatchNormEpsilon  float64 = 1e-5
)

// batchNorm implements batch normalization over the channel dimension
// of [batch, channels, height, width] inputs, or over the feature
// dimension of [batch, features] inputs.
//
// In training mode, inputs are normalized with the statistics of the
// current batch and the running statistics are updated with momentum.
// In evaluation mode, inputs are normalized with the running
// statistics.
type batchNorm struct {
	channels int
	spatial  bool // Whether inputs are [batch, C, H, W] or [batch, F]

	momentum float64
	epsilon  float64

	scale *tensor.Dense // [1, C, 1, 1]
	shift *tensor.Dense // [1, C, 1, 1]

	runningMean *tensor.Dense // [1, C, 1, 1]
	runningVar  *tensor.Dense // [1, C, 1, 1]
}

// batchStats holds the values of batch statistics read out of a graph
type batchStats struct {
	layer    *batchNorm
	n        int // Number of values per channel in the batch
	mean     G.Value
	variance G.Value
}

// update updates the running statistics of the batchNorm layer with
// the batch statistics of the last run.
func (b *batchStats) update() error {
	if b.mean == nil || b.variance == nil {
		return fmt.Errorf("update: batch statistics were not computed")
	}

	mean, ok := b.mean.Data().([]float64)
	if !ok {
		return fmt.Errorf("update: %w: batch mean is %v", ErrDtype,
			b.mean.Dtype())
	}
	variance, ok := b.variance.Data().([]float64)
	if !ok {
		return fmt.Errorf("update: %w: batch variance is %v", ErrDtype,
			b.variance.Dtype())
	}

	m := b.layer.momentum
	runningMean := b.layer.runningMean.Data().([]float64)
	runningVar := b.layer.runningVar.Data().([]float64)

	// The running variance tracks the unbiased batch variance
	correction := float64(b.n) / float64(b.n-1)
	for i := range runningMean {
		runningMean[i] = (1-m)*runningMean[i] + m*mean[i]
		runningVar[i] = (1-m)*runningVar[i] + m*variance[i]*correction

		if math.IsNaN(runningMean[i]) || math.IsNaN(runningVar[i]) {
			log.Printf("batchnorm: running statistics of channel %d are NaN", i)
		}
	}
	return nil
}

// fwd adds the forward pass of the batchNorm to the computational graph
func (b *batchNorm) fwd(x *G.Node, p *pass) (*G.Node, error) {
	inShape := x.Shape().Clone()
	batch := inShape[0]

	// Work with [batch, C, H, W] inputs only
	var err error
	if !b.spatial {
		x, err = G.Reshape(x, tensor.Shape{batch, b.channels, 1, 1})
		if err != nil {
			return nil, err
		}
	}
	perChannel := x.Shape().TotalSize() / b.channels

	if p.training && perChannel <= 1 {
		return nil, fmt.Errorf("%w: have %d value per channel",
			ErrBatchTooSmall, perChannel)
	}

	axes := []byte{0, 2, 3}
	statShape := tensor.Shape{1, b.channels, 1, 1}

	var mean, variance, centered *G.Node
	if p.training {
		if mean, err = G.Mean(x, 0, 2, 3); err != nil {
			return nil, err
		}
		if mean, err = G.Reshape(mean, statShape); err != nil {
			return nil, err
		}
		if centered, err = G.BroadcastSub(x, mean, nil, axes); err != nil {
			return nil, err
		}

		sq, err := G.Square(centered)
		if err != nil {
			return nil, err
		}
		if variance, err = G.Mean(sq, 0, 2, 3); err != nil {
			return nil, err
		}
		if variance, err = G.Reshape(variance, statShape); err != nil {
			return nil, err
		}

		if p.track {
			stats := &batchStats{layer: b, n: perChannel}
			G.Read(mean, &stats.mean)
			G.Read(variance, &stats.variance)
			p.stats = append(p.stats, stats)
		}
	} else {
		mean = p.constant(b.runningMean, "running_mean")
		variance = p.constant(b.runningVar, "running_var")
		if centered, err = G.BroadcastSub(x, mean, nil, axes); err != nil {
			return nil, err
		}
	}

	std, err := G.Add(variance, G.NewConstant(b.epsilon))
	if err != nil {
		return nil, err
	}
	if std, err = G.Sqrt(std); err != nil {
		return nil, err
	}

	out, err := G.BroadcastHadamardDiv(centered, std, nil, axes)
	if err != nil {
		return nil, err
	}

	scale := p.param(b.scale, "scale")
	shift := p.param(b.shift, "shift")
	if out, err = G.BroadcastHadamardProd(out, scale, nil, axes); err != nil {
		return nil, err
	}
	if out, err = G.BroadcastAdd(out, shift, nil, axes); err != nil {
		return nil, err
	}

	if !b.spatial {
		return G.Reshape(out, inShape)
	}
	return out, nil
}

// Params returns the learnable scale and shift of the batchNorm
func (b *batchNorm) Params() []*tensor.Dense {
	return []*tensor.Dense{b.scale, b.shift}
}

// Buffers returns the running mean and variance of the batchNorm
func (b *batchNorm) Buffers() []*tensor.Dense {
	return []*tensor.Dense{b.runningMean, b.runningVar}
}

// String implements the Stringer interface
func (b *batchNorm) String() string {
	if b.spatial {
		return fmt.Sprintf("batchnorm2d(%d)", b.channels)
	}
	return fmt.Sprintf("batchnorm1d(%d)", b.channels)
}

// batchNormSpec describes a batchNorm before allocation. Whether the
// normalization is 1D or 2D is decided by the per-sample input shape.
type batchNormSpec struct {
	momentum, epsilon float64
}

func (b batchNormSpec) outShape(in []int) ([]int, error) {
	if len(in) != 1 && len(in) != 3 {
		return nil, fmt.Errorf("%w: batch norm expects (features) or "+
			"(channels, height, width) inputs, have per-sample shape %v",
			ErrInvalidConfig, in)
	}
	if b.momentum < 0 || b.momentum > 1 || b.epsilon <= 0 {
		return nil, fmt.Errorf("%w: batch norm momentum must be in [0, 1] "+
			"and epsilon positive, have %v and %v", ErrInvalidConfig,
			b.momentum, b.epsilon)
	}
	return in, nil
}

func (b batchNormSpec) create(in []int) (Layer, error) {
	if _, err := b.outShape(in); err != nil {
		return nil, err
	}

	c := in[0]
	return &batchNorm{
		channels:    c,
		spatial:     len(in) == 3,
		momentum:    b.momentum,
		epsilon:     b.epsilon,
		scale:       newParam(G.Ones(), 1, c, 1, 1),
		shift:       newParam(G.Zeroes(), 1, c, 1, 1),
		runningMean: newParam(G.Zeroes(), 1, c, 1, 1),
		runningVar:  newParam(G.Ones(), 1, c, 1, 1),
	}, nil
}

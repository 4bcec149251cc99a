// Package art implements online Fuzzy Adaptive Resonance Theory (ART)
// clustering of feature vectors in [0, 1]^n, such as those output by
// an encoder.ARTHead.
//
// Fuzzy ART keeps one weight vector per category. Inputs are
// complement coded, I = [x, 1-x], so that |I| = n for every input.
// For each input, categories are searched in descending order of the
// choice function
//
//	T_j = |I ∧ w_j| / (alpha + |w_j|)
//
// where ∧ is the element-wise minimum and |.| the L1 norm. The first
// category that passes the vigilance test |I ∧ w_j| / |I| >= rho
// learns the input:
//
//	w_j <- beta (I ∧ w_j) + (1 - beta) w_j
//
// If no category passes, a new category with weights I is committed.
package art

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// NoCategory is returned by Predict for inputs that do not resonate
// with any category
const NoCategory = -1

// Errors returned by OnlineFuzzyART
var (
	ErrInvalidParam = errors.New("invalid fuzzy art parameter")
	ErrDimension    = errors.New("wrong number of features")
	ErrInputRange   = errors.New("features must lie in [0, 1]")
)

// OnlineFuzzyART implements online Fuzzy ART clustering
type OnlineFuzzyART struct {
	rho         float64
	alpha       float64
	beta        float64
	numFeatures int

	// Complement coded weights, one row per category
	w [][]float64

	iterations int
	rng        *rand.Rand
}

// NewOnlineFuzzyART returns a new OnlineFuzzyART with vigilance rho
// in [0, 1], choice parameter alpha > 0, and learning rate beta in
// (0, 1]. Inputs must have numFeatures features.
func NewOnlineFuzzyART(rho, alpha, beta float64,
	numFeatures int) (*OnlineFuzzyART, error) {
	if rho < 0 || rho > 1 {
		return nil, fmt.Errorf("newonlinefuzzyart: %w: vigilance must be "+
			"in [0, 1], have %v", ErrInvalidParam, rho)
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("newonlinefuzzyart: %w: choice parameter "+
			"must be positive, have %v", ErrInvalidParam, alpha)
	}
	if beta <= 0 || beta > 1 {
		return nil, fmt.Errorf("newonlinefuzzyart: %w: learning rate must "+
			"be in (0, 1], have %v", ErrInvalidParam, beta)
	}
	if numFeatures <= 0 {
		return nil, fmt.Errorf("newonlinefuzzyart: %w: number of features "+
			"must be positive, have %v", ErrInvalidParam, numFeatures)
	}

	return &OnlineFuzzyART{
		rho:         rho,
		alpha:       alpha,
		beta:        beta,
		numFeatures: numFeatures,
	}, nil
}

// Shuffle causes each training epoch to present the inputs in a random
// order drawn from a source seeded with seed. By default, inputs are
// presented in order.
func (a *OnlineFuzzyART) Shuffle(seed uint64) {
	a.rng = rand.New(rand.NewSource(seed))
}

// NumClusters returns the number of committed categories
func (a *OnlineFuzzyART) NumClusters() int {
	return len(a.w)
}

// NumFeatures returns the number of features of each input
func (a *OnlineFuzzyART) NumFeatures() int {
	return a.numFeatures
}

// Iterations returns the number of inputs trained on so far
func (a *OnlineFuzzyART) Iterations() int {
	return a.iterations
}

// Weights returns a copy of the complement coded category weights, one
// row of 2 * NumFeatures() columns per category. If no category has
// been committed, nil is returned.
func (a *OnlineFuzzyART) Weights() *mat.Dense {
	if len(a.w) == 0 {
		return nil
	}

	w := mat.NewDense(len(a.w), 2*a.numFeatures, nil)
	for i, row := range a.w {
		w.SetRow(i, row)
	}
	return w
}

// RunOnline trains on each row of features for at most maxEpochs
// epochs, stopping early after an epoch in which no input changed
// category. The category of each row after the last epoch is
// returned.
func (a *OnlineFuzzyART) RunOnline(features mat.Matrix,
	maxEpochs int) ([]int, error) {
	if maxEpochs < 1 {
		return nil, fmt.Errorf("runonline: %w: need at least one epoch, "+
			"have %v", ErrInvalidParam, maxEpochs)
	}

	inputs, err := a.complementCode("runonline", features)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(inputs))
	for i := range order {
		order[i] = i
	}

	labels := make([]int, len(inputs))
	for i := range labels {
		labels[i] = NoCategory
	}

	for epoch := 0; epoch < maxEpochs; epoch++ {
		if a.rng != nil {
			a.rng.Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}

		changed := false
		for _, i := range order {
			label := a.train(inputs[i])
			if label != labels[i] {
				labels[i] = label
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	return labels, nil
}

// Predict returns the category of each row of features without
// learning. Rows that resonate with no category are labelled
// NoCategory.
func (a *OnlineFuzzyART) Predict(features mat.Matrix) ([]int, error) {
	inputs, err := a.complementCode("predict", features)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(inputs))
	for i, in := range inputs {
		labels[i] = a.eval(in)
	}
	return labels, nil
}

// train presents a single complement coded input and returns the
// category that learned it
func (a *OnlineFuzzyART) train(in []float64) int {
	a.iterations++

	j, match := a.resonate(in)
	if j == NoCategory {
		w := make([]float64, len(in))
		copy(w, in)
		a.w = append(a.w, w)
		return len(a.w) - 1
	}

	floats.Scale(1-a.beta, a.w[j])
	floats.AddScaled(a.w[j], a.beta, match)
	return j
}

// eval returns the category that resonates with a complement coded
// input
func (a *OnlineFuzzyART) eval(in []float64) int {
	j, _ := a.resonate(in)
	return j
}

// resonate searches categories in descending order of activation and
// returns the first that passes the vigilance test together with
// I ∧ w for that category. If none passes, NoCategory is returned.
func (a *OnlineFuzzyART) resonate(in []float64) (int, []float64) {
	if len(a.w) == 0 {
		return NoCategory, nil
	}

	matches := make([][]float64, len(a.w))
	choice := make([]float64, len(a.w))
	for j, w := range a.w {
		matches[j] = fuzzyAnd(in, w)
		choice[j] = floats.Sum(matches[j]) / (a.alpha + floats.Sum(w))
	}

	// Ties go to the earlier category
	order := make([]int, len(a.w))
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(i, j int) bool {
		return choice[order[i]] > choice[order[j]]
	})

	norm := floats.Sum(in)
	for _, j := range order {
		if floats.Sum(matches[j])/norm >= a.rho {
			return j, matches[j]
		}
	}
	return NoCategory, nil
}

// complementCode validates features and returns the complement coding
// of each row
func (a *OnlineFuzzyART) complementCode(op string,
	features mat.Matrix) ([][]float64, error) {
	r, c := features.Dims()
	if c != a.numFeatures {
		return nil, fmt.Errorf("%v: %w: want %v, have %v", op, ErrDimension,
			a.numFeatures, c)
	}

	inputs := make([][]float64, r)
	for i := range inputs {
		in := make([]float64, 2*c)
		for j := 0; j < c; j++ {
			x := features.At(i, j)
			if !(x >= 0 && x <= 1) {
				return nil, fmt.Errorf("%v: %w: row %v column %v is %v", op,
					ErrInputRange, i, j, x)
			}
			in[j] = x
			in[j+c] = 1 - x
		}
		inputs[i] = in
	}
	return inputs, nil
}

// fuzzyAnd returns the element-wise minimum of x and y
func fuzzyAnd(x, y []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		if x[i] < y[i] {
			out[i] = x[i]
		} else {
			out[i] = y[i]
		}
	}
	return out
}

// FromTensor returns a matrix holding the rows of a 2-D float64 tensor,
// such as the [batch, features] output of an encoder
func FromTensor(t tensor.Tensor) (*mat.Dense, error) {
	shape := t.Shape()
	if len(shape) != 2 || shape[0] <= 0 || shape[1] <= 0 {
		return nil, fmt.Errorf("fromtensor: %w: want non-empty 2-D tensor, have "+
			"shape %v", ErrDimension, shape)
	}
	if t.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("fromtensor: want dtype %v, have %v",
			tensor.Float64, t.Dtype())
	}

	var data []float64
	if v, ok := t.(tensor.View); ok {
		data = v.Materialize().Data().([]float64)
	} else {
		data = t.Data().([]float64)
	}

	backing := make([]float64, len(data))
	copy(backing, data)
	return mat.NewDense(shape[0], shape[1], backing), nil
}

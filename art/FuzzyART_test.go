package art

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/mariuslindegaard/curiosity-baselines/encoder"
	"github.com/mariuslindegaard/curiosity-baselines/network"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

func TestRunOnline(t *testing.T) {
	features := mat.NewDense(3, 2, []float64{
		0.2, 0.8,
		0.2, 0.8,
		0.9, 0.1,
	})

	tests := []struct {
		name     string
		rho      float64
		labels   []int
		clusters int
	}{
		{"high vigilance", 0.9, []int{0, 0, 1}, 2},
		{"zero vigilance", 0.0, []int{0, 0, 0}, 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			art, err := NewOnlineFuzzyART(test.rho, 0.001, 1.0, 2)
			if err != nil {
				t.Fatal(err)
			}

			labels, err := art.RunOnline(features, 10)
			if err != nil {
				t.Fatal(err)
			}
			if !equalInts(labels, test.labels) {
				t.Errorf("labels: want(%v) have(%v)", test.labels, labels)
			}
			if art.NumClusters() != test.clusters {
				t.Errorf("clusters: want(%v) have(%v)", test.clusters,
					art.NumClusters())
			}

			// Stable after the second epoch
			if art.Iterations() != 2*3 {
				t.Errorf("iterations: want(6) have(%v)", art.Iterations())
			}
		})
	}
}

func TestLearning(t *testing.T) {
	art, err := NewOnlineFuzzyART(0.5, 0.001, 0.5, 2)
	if err != nil {
		t.Fatal(err)
	}
	if art.Weights() != nil {
		t.Error("weights should be nil before any category is committed")
	}

	features := mat.NewDense(2, 2, []float64{0.2, 0.8, 0.4, 0.6})
	labels, err := art.RunOnline(features, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !equalInts(labels, []int{0, 0}) {
		t.Fatalf("labels: want([0 0]) have(%v)", labels)
	}

	// w <- 0.5 (I ∧ w) + 0.5 w
	want := []float64{0.2, 0.7, 0.7, 0.2}
	w := art.Weights()
	if r, c := w.Dims(); r != 1 || c != 4 {
		t.Fatalf("weights: want (1, 4) have (%v, %v)", r, c)
	}
	if got := mat.Row(nil, 0, w); !floats.EqualApprox(got, want, 1e-12) {
		t.Errorf("weights: want(%v) have(%v)", want, got)
	}

	// Weights are copies
	w.Set(0, 0, 1.0)
	if art.Weights().At(0, 0) != 0.2 {
		t.Error("weights were modified through a returned matrix")
	}
}

func TestPredict(t *testing.T) {
	art, err := NewOnlineFuzzyART(0.9, 0.001, 1.0, 2)
	if err != nil {
		t.Fatal(err)
	}

	labels, err := art.Predict(mat.NewDense(1, 2, []float64{0.5, 0.5}))
	if err != nil {
		t.Fatal(err)
	}
	if labels[0] != NoCategory {
		t.Errorf("want no category before training, have %v", labels[0])
	}

	_, err = art.RunOnline(mat.NewDense(2, 2, []float64{
		0.2, 0.8,
		0.9, 0.1,
	}), 10)
	if err != nil {
		t.Fatal(err)
	}

	labels, err = art.Predict(mat.NewDense(3, 2, []float64{
		0.9, 0.1,
		0.2, 0.8,
		0.55, 0.45,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{1, 0, NoCategory}; !equalInts(labels, want) {
		t.Errorf("labels: want(%v) have(%v)", want, labels)
	}

	// Prediction does not commit categories
	if art.NumClusters() != 2 {
		t.Errorf("clusters: want(2) have(%v)", art.NumClusters())
	}
}

func TestInvalidParams(t *testing.T) {
	tests := []struct {
		name             string
		rho, alpha, beta float64
		numFeatures      int
	}{
		{"negative vigilance", -0.1, 0.1, 1, 2},
		{"vigilance above one", 1.1, 0.1, 1, 2},
		{"zero alpha", 0.5, 0, 1, 2},
		{"zero beta", 0.5, 0.1, 0, 2},
		{"beta above one", 0.5, 0.1, 1.5, 2},
		{"no features", 0.5, 0.1, 1, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewOnlineFuzzyART(test.rho, test.alpha, test.beta,
				test.numFeatures)
			if !errors.Is(err, ErrInvalidParam) {
				t.Errorf("want error %v, have %v", ErrInvalidParam, err)
			}
		})
	}
}

func TestInvalidInputs(t *testing.T) {
	art, err := NewOnlineFuzzyART(0.5, 0.1, 1, 2)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		features mat.Matrix
		want     error
	}{
		{"columns", mat.NewDense(1, 3, []float64{0, 0, 0}), ErrDimension},
		{"above one", mat.NewDense(1, 2, []float64{0, 1.2}), ErrInputRange},
		{"negative", mat.NewDense(1, 2, []float64{-0.1, 0}), ErrInputRange},
		{"nan", mat.NewDense(1, 2, []float64{math.NaN(), 0}), ErrInputRange},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := art.RunOnline(test.features, 1); !errors.Is(err,
				test.want) {
				t.Errorf("runonline: want error %v, have %v", test.want, err)
			}
			if _, err := art.Predict(test.features); !errors.Is(err,
				test.want) {
				t.Errorf("predict: want error %v, have %v", test.want, err)
			}
		})
	}

	_, err = art.RunOnline(mat.NewDense(1, 2, []float64{0, 0}), 0)
	if !errors.Is(err, ErrInvalidParam) {
		t.Errorf("want error %v, have %v", ErrInvalidParam, err)
	}
	if art.NumClusters() != 0 {
		t.Error("invalid inputs should not commit categories")
	}
}

func TestShuffle(t *testing.T) {
	rng := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(1)}
	data := make([]float64, 50*4)
	for i := range data {
		data[i] = rng.Rand()
	}
	features := mat.NewDense(50, 4, data)

	run := func(seed uint64) ([]int, int) {
		art, err := NewOnlineFuzzyART(0.75, 0.01, 0.8, 4)
		if err != nil {
			t.Fatal(err)
		}
		art.Shuffle(seed)
		labels, err := art.RunOnline(features, 20)
		if err != nil {
			t.Fatal(err)
		}
		return labels, art.NumClusters()
	}

	labels, clusters := run(7)
	again, againClusters := run(7)
	if !equalInts(labels, again) || clusters != againClusters {
		t.Error("runs with the same seed differ")
	}

	for i, l := range labels {
		if l < 0 || l >= clusters {
			t.Errorf("row %v: label %v out of range [0, %v)", i, l, clusters)
		}
	}
}

func TestFromTensor(t *testing.T) {
	x := tensor.New(tensor.WithShape(2, 3),
		tensor.WithBacking([]float64{1, 2, 3, 4, 5, 6}))
	m, err := FromTensor(x)
	if err != nil {
		t.Fatal(err)
	}
	if m.At(1, 2) != 6 {
		t.Errorf("want(6) have(%v)", m.At(1, 2))
	}

	// The matrix does not share memory with the tensor
	m.Set(0, 0, -1)
	if x.Data().([]float64)[0] != 1 {
		t.Error("matrix shares memory with tensor")
	}

	_, err = FromTensor(tensor.New(tensor.WithShape(6),
		tensor.WithBacking([]float64{1, 2, 3, 4, 5, 6})))
	if !errors.Is(err, ErrDimension) {
		t.Errorf("want error %v, have %v", ErrDimension, err)
	}
}

// Features of an ART head cluster identical images together
func TestARTHeadFeatures(t *testing.T) {
	shape := network.NewImageShape(1, 16, 16)
	head, err := encoder.NewARTHead(encoder.NewARTConfig(shape, 8))
	if err != nil {
		t.Fatal(err)
	}

	rng := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(3)}
	img := make([]float64, 3*shape.Size())
	for i := range img {
		img[i] = rng.Rand()
	}

	// Images 0 and 2 are identical
	size := shape.Size()
	data := make([]float64, 0, 4*size)
	data = append(data, img[:size]...)
	data = append(data, img[size:2*size]...)
	data = append(data, img[:size]...)
	data = append(data, img[2*size:]...)
	images := tensor.New(tensor.WithShape(4, 1, 16, 16),
		tensor.WithBacking(data))

	out, err := head.Forward(images)
	if err != nil {
		t.Fatal(err)
	}
	features, err := FromTensor(out)
	if err != nil {
		t.Fatal(err)
	}

	art, err := NewOnlineFuzzyART(0.95, 0.001, 1.0, head.Features())
	if err != nil {
		t.Fatal(err)
	}
	labels, err := art.RunOnline(features, 10)
	if err != nil {
		t.Fatal(err)
	}
	if labels[0] != labels[2] {
		t.Errorf("identical images in different clusters: %v", labels)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

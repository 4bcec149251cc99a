package solver

import (
	"encoding/json"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/mariuslindegaard/curiosity-baselines/encoder"
	"github.com/mariuslindegaard/curiosity-baselines/network"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		data string
		want Config
	}{
		{
			`{"Type": "Adam", "Config": {"StepSize": 0.01}}`,
			AdamConfig{StepSize: 0.01, Epsilon: 1e-8, Beta1: 0.9,
				Beta2: 0.999, Batch: 1},
		},
		{
			`{"Type": "RMSProp", "Config": {"Rho": 0.9, "Batch": 32}}`,
			RMSPropConfig{StepSize: 1e-3, Epsilon: 1e-8, Rho: 0.9,
				Batch: 32},
		},
		{
			`{"Type": "Vanilla", "Config": {"StepSize": 0.5, "Clip": 1}}`,
			VanillaConfig{StepSize: 0.5, Batch: 1, Clip: 1},
		},
	}

	for _, test := range tests {
		var s Solver
		if err := json.Unmarshal([]byte(test.data), &s); err != nil {
			t.Fatalf("%v: %v", test.data, err)
		}
		if s.Type != test.want.Type() {
			t.Errorf("want type %v, have %v", test.want.Type(), s.Type)
		}
		if s.Config != test.want {
			t.Errorf("want config %+v, have %+v", test.want, s.Config)
		}
		if s.Solver == nil {
			t.Errorf("%v: solver was not created", s.Type)
		}

		// Round trip
		data, err := json.Marshal(&s)
		if err != nil {
			t.Fatal(err)
		}
		var decoded Solver
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("%s: %v", data, err)
		}
		if decoded.Config != s.Config {
			t.Errorf("round trip: want %+v, have %+v", s.Config,
				decoded.Config)
		}
	}
}

func TestInvalid(t *testing.T) {
	configs := []Config{
		AdamConfig{StepSize: 0, Batch: 1},
		AdamConfig{StepSize: 0.1, Batch: 1, Beta1: 1},
		RMSPropConfig{StepSize: 0.1, Batch: 0},
		VanillaConfig{StepSize: -1, Batch: 1},
	}
	for _, c := range configs {
		if _, err := New(c); err == nil {
			t.Errorf("expected error for config %+v", c)
		}
	}

	var s Solver
	err := json.Unmarshal([]byte(`{"Type": "Adagrad", "Config": {}}`), &s)
	if err == nil {
		t.Error("expected error for unknown solver type")
	}
	err = json.Unmarshal([]byte(`{"Type": "Adam", "Config": {"Batch": -1}}`),
		&s)
	if err == nil {
		t.Error("expected error for invalid batch size")
	}
}

// An encoder added to an external graph is trained by the solver
func TestTrainEncoder(t *testing.T) {
	shape := network.NewImageShape(1, 8, 8)
	enc, err := encoder.NewUniverseHead(encoder.UniverseConfig{
		ImageShape: shape,
	})
	if err != nil {
		t.Fatal(err)
	}

	rng := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(11)}
	data := make([]float64, 4*shape.Size())
	for i := range data {
		data[i] = rng.Rand()
	}
	images := tensor.New(tensor.WithShape(4, 1, 8, 8),
		tensor.WithBacking(data))

	g := G.NewGraph()
	x := G.NewTensor(g, tensor.Float64, 4, G.WithShape(4, 1, 8, 8),
		G.WithValue(images), G.WithName("images"))
	features, err := enc.Fwd(x)
	if err != nil {
		t.Fatal(err)
	}
	loss := G.Must(G.Mean(G.Must(G.Square(features))))

	var lossVal G.Value
	G.Read(loss, &lossVal)

	learnables := enc.Learnables(g)
	if _, err := G.Grad(loss, learnables...); err != nil {
		t.Fatal(err)
	}
	vm := G.NewTapeMachine(g, G.BindDualValues(learnables...))
	defer vm.Close()

	s, err := NewVanilla(0.05, 1, -1)
	if err != nil {
		t.Fatal(err)
	}

	var losses []float64
	for i := 0; i < 5; i++ {
		if err := vm.RunAll(); err != nil {
			t.Fatal(err)
		}
		losses = append(losses, lossVal.Data().(float64))

		if err := s.Update(learnables); err != nil {
			t.Fatal(err)
		}
		vm.Reset()
	}

	if losses[len(losses)-1] >= losses[0] {
		t.Errorf("loss did not decrease: %v", losses)
	}
}
